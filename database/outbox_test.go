package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOutboxRepository()

	t.Run("Empty queue returns nil batch", func(t *testing.T) {
		batch, err := repo.NextBatch(db)
		require.NoError(t, err)
		assert.Nil(t, batch)
	})

	t.Run("Batches drain oldest first in insertion order", func(t *testing.T) {
		err := repo.Enqueue(db, "batch-1", OpCreate, "tasks", "task-1", map[string]any{"title": "a"})
		require.NoError(t, err)
		err = repo.Enqueue(db, "batch-1", OpUpdate, "tasks", "task-1", map[string]any{"title": "b"})
		require.NoError(t, err)
		err = repo.Enqueue(db, "batch-2", OpDelete, "tasks", "task-2", nil)
		require.NoError(t, err)

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 3, pending)

		batch, err := repo.NextBatch(db)
		require.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, "batch-1", batch.ID)
		require.Len(t, batch.Ops, 2)
		assert.Equal(t, OpCreate, batch.Ops[0].Op)
		assert.Equal(t, OpUpdate, batch.Ops[1].Op)
		assert.Equal(t, "b", batch.Ops[1].Payload["title"])

		err = repo.Complete(db, batch.ID)
		require.NoError(t, err)

		batch, err = repo.NextBatch(db)
		require.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, "batch-2", batch.ID)
		require.Len(t, batch.Ops, 1)
		assert.Equal(t, OpDelete, batch.Ops[0].Op)
		assert.Nil(t, batch.Ops[0].Payload)

		err = repo.Complete(db, batch.ID)
		require.NoError(t, err)

		pending, err = repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 0, pending)
	})

	t.Run("Uncompleted batch is returned again", func(t *testing.T) {
		err := repo.Enqueue(db, "batch-3", OpCreate, "projects", "project-1", map[string]any{"name": "p"})
		require.NoError(t, err)

		first, err := repo.NextBatch(db)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := repo.NextBatch(db)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestOutboxQueue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOutboxRepository()
	queue := NewOutboxQueue(db)

	err := repo.Enqueue(db, "batch-1", OpCreate, "tasks", "task-1", map[string]any{"title": "queued"})
	require.NoError(t, err)

	batch, err := queue.NextBatch()
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "batch-1", batch.ID)

	err = queue.Complete(batch.ID)
	require.NoError(t, err)

	batch, err = queue.NextBatch()
	require.NoError(t, err)
	assert.Nil(t, batch)
}
