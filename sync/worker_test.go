package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tempo/database"
	"tempo/models"
)

func TestWorker_UploadCycle(t *testing.T) {
	authenticated := &fakeSessions{session: &models.Session{
		UserID:      "user-1",
		AccessToken: "token-abc",
		TokenExpiry: time.Now().Add(time.Hour),
	}}

	t.Run("Pauses while unauthenticated and touches nothing", func(t *testing.T) {
		db, repo, queue := setupTestQueue(t)
		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpCreate, "tasks", "task-1", map[string]any{"title": "a"}))

		store := &MockStore{}
		worker := NewWorker(NewConnector(&fakeSessions{}, store, ""), queue, time.Minute)

		assert.False(t, worker.uploadCycle())
		store.AssertNotCalled(t, "Upsert")

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)
	})

	t.Run("Idle cycle with an empty queue reports no work", func(t *testing.T) {
		_, _, queue := setupTestQueue(t)

		store := &MockStore{}
		worker := NewWorker(NewConnector(authenticated, store, ""), queue, time.Minute)

		assert.False(t, worker.uploadCycle())
		store.AssertNotCalled(t, "Upsert")
	})

	t.Run("Failed batch stays queued and a later cycle retries it", func(t *testing.T) {
		db, repo, queue := setupTestQueue(t)
		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpCreate, "tasks", "task-1", map[string]any{"title": "a"}))

		store := &MockStore{}
		store.On("Upsert", mock.Anything, "tasks", "task-1", mock.Anything).Return(errors.New("503 unavailable")).Once()

		worker := NewWorker(NewConnector(authenticated, store, ""), queue, time.Minute)

		// The attempt counts as work even though it failed
		assert.True(t, worker.uploadCycle())
		store.AssertExpectations(t)

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)

		store.On("Upsert", mock.Anything, "tasks", "task-1", mock.Anything).Return(nil).Once()

		assert.True(t, worker.uploadCycle())
		store.AssertExpectations(t)

		pending, err = repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 0, pending)
	})
}
