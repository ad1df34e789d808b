package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tempo/database"
	"tempo/models"
	"tempo/remote"
)

// ==================== MOCKS ====================

// MockStore is a mock implementation of the remote.Store interface
type MockStore struct {
	mock.Mock
}

var _ remote.Store = (*MockStore)(nil)

func (m *MockStore) Upsert(ctx context.Context, table, id string, payload map[string]any) error {
	args := m.Called(ctx, table, id, payload)
	return args.Error(0)
}

func (m *MockStore) Patch(ctx context.Context, table, id string, payload map[string]any) error {
	args := m.Called(ctx, table, id, payload)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, table, id string) error {
	args := m.Called(ctx, table, id)
	return args.Error(0)
}

// fakeSessions is a static SessionSource
type fakeSessions struct {
	session *models.Session
	err     error
}

func (f *fakeSessions) CurrentSession(ctx context.Context) (*models.Session, error) {
	return f.session, f.err
}

// ==================== HELPERS ====================

func setupTestQueue(t *testing.T) (*database.DB, *database.OutboxRepository, *database.OutboxQueue) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "connector-test-*")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(tmpDir)
	})

	return db, database.NewOutboxRepository(), database.NewOutboxQueue(db)
}

// ==================== TESTS ====================

func TestConnector_FetchCredentials(t *testing.T) {
	t.Run("Returns credential from the active session", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		sessions := &fakeSessions{session: &models.Session{
			UserID:      "user-1",
			AccessToken: "token-abc",
			TokenExpiry: expiry,
		}}

		connector := NewConnector(sessions, &MockStore{}, "https://backend.example.com")

		cred, err := connector.FetchCredentials(context.Background())
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "https://backend.example.com", cred.Endpoint)
		assert.Equal(t, "token-abc", cred.Token)
		assert.Equal(t, expiry, cred.ExpiresAt)
	})

	t.Run("Returns nil without error when signed out", func(t *testing.T) {
		connector := NewConnector(&fakeSessions{}, &MockStore{}, "https://backend.example.com")

		cred, err := connector.FetchCredentials(context.Background())
		require.NoError(t, err)
		assert.Nil(t, cred)
	})

	t.Run("Propagates session lookup failures", func(t *testing.T) {
		sessions := &fakeSessions{err: errors.New("backend unreachable")}
		connector := NewConnector(sessions, &MockStore{}, "https://backend.example.com")

		cred, err := connector.FetchCredentials(context.Background())
		assert.Error(t, err)
		assert.Nil(t, cred)
	})
}

func TestConnector_UploadData(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty queue is a no-op", func(t *testing.T) {
		_, _, queue := setupTestQueue(t)
		store := &MockStore{}
		connector := NewConnector(&fakeSessions{}, store, "")

		err := connector.UploadData(ctx, queue)
		require.NoError(t, err)
		store.AssertNotCalled(t, "Upsert")
	})

	t.Run("Replays one batch in order and completes it", func(t *testing.T) {
		db, repo, queue := setupTestQueue(t)

		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpCreate, "tasks", "task-1", map[string]any{"title": "a"}))
		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpUpdate, "tasks", "task-1", map[string]any{"title": "b"}))
		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpDelete, "tasks", "task-1", nil))

		store := &MockStore{}
		store.On("Upsert", ctx, "tasks", "task-1", map[string]any{"title": "a"}).Return(nil).Once()
		store.On("Patch", ctx, "tasks", "task-1", map[string]any{"title": "b"}).Return(nil).Once()
		store.On("Delete", ctx, "tasks", "task-1").Return(nil).Once()

		connector := NewConnector(&fakeSessions{}, store, "")

		err := connector.UploadData(ctx, queue)
		require.NoError(t, err)
		store.AssertExpectations(t)

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 0, pending)
	})

	t.Run("Failed batch stays queued and is resent whole", func(t *testing.T) {
		db, repo, queue := setupTestQueue(t)

		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpCreate, "tasks", "task-1", map[string]any{"title": "a"}))
		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpDelete, "tasks", "task-2", nil))

		store := &MockStore{}
		store.On("Upsert", ctx, "tasks", "task-1", map[string]any{"title": "a"}).Return(nil).Once()
		store.On("Delete", ctx, "tasks", "task-2").Return(errors.New("503 unavailable")).Once()

		connector := NewConnector(&fakeSessions{}, store, "")

		err := connector.UploadData(ctx, queue)
		require.Error(t, err)
		store.AssertExpectations(t)

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 2, pending)

		// Retry resends every operation of the batch, including the one
		// that already succeeded
		store.On("Upsert", ctx, "tasks", "task-1", map[string]any{"title": "a"}).Return(nil).Once()
		store.On("Delete", ctx, "tasks", "task-2").Return(nil).Once()

		err = connector.UploadData(ctx, queue)
		require.NoError(t, err)
		store.AssertExpectations(t)

		pending, err = repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 0, pending)
	})

	t.Run("Later batches wait until the first completes", func(t *testing.T) {
		db, repo, queue := setupTestQueue(t)

		require.NoError(t, repo.Enqueue(db, "batch-1", database.OpCreate, "tasks", "task-1", map[string]any{"title": "a"}))
		require.NoError(t, repo.Enqueue(db, "batch-2", database.OpCreate, "tasks", "task-2", map[string]any{"title": "b"}))

		store := &MockStore{}
		store.On("Upsert", ctx, "tasks", "task-1", map[string]any{"title": "a"}).Return(nil).Once()

		connector := NewConnector(&fakeSessions{}, store, "")

		err := connector.UploadData(ctx, queue)
		require.NoError(t, err)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "Upsert", ctx, "tasks", "task-2", mock.Anything)

		pending, err := repo.Pending(db)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)
	})
}
