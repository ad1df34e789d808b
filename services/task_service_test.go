package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempo/database"
)

func TestTaskService_WritesQueueSync(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)
	outbox := database.NewOutboxRepository()

	drainBatch := func(t *testing.T) *database.OutboxBatch {
		t.Helper()
		batch, err := outbox.NextBatch(db)
		require.NoError(t, err)
		require.NotNil(t, batch)
		require.NoError(t, outbox.Complete(db, batch.ID))
		return batch
	}

	task, err := service.Create(database.CreateTask{
		ProjectID: "project-1",
		UserID:    "user-1",
		Title:     "Plan sprint",
	})
	require.NoError(t, err)

	t.Run("Create queues an upsert with the row payload", func(t *testing.T) {
		batch := drainBatch(t)
		require.Len(t, batch.Ops, 1)
		assert.Equal(t, database.OpCreate, batch.Ops[0].Op)
		assert.Equal(t, "tasks", batch.Ops[0].Table)
		assert.Equal(t, task.ID, batch.Ops[0].RowID)
		assert.Equal(t, "Plan sprint", batch.Ops[0].Payload["title"])
		assert.Equal(t, "BACKLOG", batch.Ops[0].Payload["status"])
	})

	t.Run("Update queues a patch", func(t *testing.T) {
		title := "Plan next sprint"
		_, err := service.Update(task.ID, database.UpdateTask{Title: &title})
		require.NoError(t, err)

		batch := drainBatch(t)
		require.Len(t, batch.Ops, 1)
		assert.Equal(t, database.OpUpdate, batch.Ops[0].Op)
		assert.Equal(t, "Plan next sprint", batch.Ops[0].Payload["title"])
	})

	t.Run("Delete queues a remote delete without payload", func(t *testing.T) {
		err := service.Delete(task.ID)
		require.NoError(t, err)

		batch := drainBatch(t)
		require.Len(t, batch.Ops, 1)
		assert.Equal(t, database.OpDelete, batch.Ops[0].Op)
		assert.Equal(t, task.ID, batch.Ops[0].RowID)
		assert.Nil(t, batch.Ops[0].Payload)
	})

	t.Run("Failed write queues nothing", func(t *testing.T) {
		title := "x"
		_, err := service.Update("no-such-task", database.UpdateTask{Title: &title})
		assert.ErrorIs(t, err, database.ErrNotFound)

		pending, err := outbox.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 0, pending)
	})
}
