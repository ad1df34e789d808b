package services

import (
	"context"

	"tempo/auth"
	"tempo/database"
	"tempo/models"
)

// SessionProvider is the slice of the auth provider this service needs.
// Interface for testability; production uses auth.BackendProvider.
type SessionProvider interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
}

var _ SessionProvider = (auth.Provider)(nil)

// AuthService glues the auth provider to local state: it mirrors the
// backend identity into the users table and fills the session's timezone
// from stored preferences, which the identity backend knows nothing
// about.
type AuthService struct {
	provider SessionProvider
	db       *database.DB
	users    *database.UserRepository
	prefs    *database.UserPreferencesRepository
}

func NewAuthService(provider SessionProvider, db *database.DB) *AuthService {
	return &AuthService{
		provider: provider,
		db:       db,
		users:    database.NewUserRepository(),
		prefs:    database.NewUserPreferencesRepository(),
	}
}

func (as *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	session, err := as.provider.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}

	if _, err := as.users.Upsert(as.db, &models.User{
		ID:        session.UserID,
		Email:     session.Email,
		Name:      session.Name,
		AvatarURL: session.AvatarURL,
	}); err != nil {
		return nil, err
	}

	prefs, err := as.prefs.FindByUserID(as.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs, err = as.prefs.Create(as.db, database.CreateUserPreferences{
			UserID:               session.UserID,
			NotificationsEnabled: true,
		})
		if err != nil {
			return nil, err
		}
	}

	session.Timezone = prefs.Timezone
	return session, nil
}

func (as *AuthService) Logout(ctx context.Context) error {
	return as.provider.SignOut(ctx)
}

// Session returns the current session with its timezone filled in, or
// nil when signed out.
func (as *AuthService) Session(ctx context.Context) (*models.Session, error) {
	session, err := as.provider.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	prefs, err := as.prefs.FindByUserID(as.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		session.Timezone = prefs.Timezone
	}
	return session, nil
}
