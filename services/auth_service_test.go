package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tempo/database"
	"tempo/models"
)

// ==================== MOCKS ====================

// MockProvider is a mock implementation of the SessionProvider interface
type MockProvider struct {
	mock.Mock
}

var _ SessionProvider = (*MockProvider)(nil)

func (m *MockProvider) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) CurrentSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

// ==================== TESTS ====================

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	creds := models.Credentials{Email: "alice@example.com", Password: "secret123"}
	session := &models.Session{
		UserID: "user-1",
		Email:  "alice@example.com",
		Name:   "Alice",
	}

	t.Run("Mirrors identity and seeds preferences", func(t *testing.T) {
		db := setupTestDB(t)
		provider := &MockProvider{}
		provider.On("SignIn", ctx, creds).Return(session, nil)

		service := NewAuthService(provider, db)

		got, err := service.Login(ctx, creds)
		require.NoError(t, err)
		require.NotNil(t, got)
		// Timezone is filled from the freshly seeded preferences
		assert.Equal(t, "UTC", got.Timezone)

		users := database.NewUserRepository()
		user, err := users.FindByID(db, "user-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice@example.com", user.Email)

		prefs := database.NewUserPreferencesRepository()
		p, err := prefs.FindByUserID(db, "user-1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.NotificationsEnabled)

		provider.AssertExpectations(t)
	})

	t.Run("Existing preferences win over defaults", func(t *testing.T) {
		db := setupTestDB(t)
		prefs := database.NewUserPreferencesRepository()
		_, err := prefs.Create(db, database.CreateUserPreferences{
			UserID:   "user-1",
			Timezone: "Europe/Berlin",
		})
		require.NoError(t, err)

		provider := &MockProvider{}
		provider.On("SignIn", ctx, creds).Return(session, nil)

		service := NewAuthService(provider, db)

		got, err := service.Login(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", got.Timezone)
	})

	t.Run("Provider failure is propagated untouched", func(t *testing.T) {
		db := setupTestDB(t)
		provider := &MockProvider{}
		provider.On("SignIn", ctx, creds).Return(nil, errors.New("invalid credentials"))

		service := NewAuthService(provider, db)

		_, err := service.Login(ctx, creds)
		assert.Error(t, err)

		users := database.NewUserRepository()
		user, err := users.FindByID(db, "user-1")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestAuthService_Session(t *testing.T) {
	ctx := context.Background()

	t.Run("Signed out yields nil without error", func(t *testing.T) {
		db := setupTestDB(t)
		provider := &MockProvider{}
		provider.On("CurrentSession", ctx).Return(nil, nil)

		service := NewAuthService(provider, db)

		session, err := service.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("Active session gets the stored timezone", func(t *testing.T) {
		db := setupTestDB(t)
		prefs := database.NewUserPreferencesRepository()
		_, err := prefs.Create(db, database.CreateUserPreferences{
			UserID:   "user-1",
			Timezone: "Asia/Tokyo",
		})
		require.NoError(t, err)

		provider := &MockProvider{}
		provider.On("CurrentSession", ctx).Return(&models.Session{UserID: "user-1"}, nil)

		service := NewAuthService(provider, db)

		session, err := service.Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "Asia/Tokyo", session.Timezone)
	})
}
