package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tempo/models"
)

// Provider is the capability set the rest of the application sees. Every
// auth transition (sign-in, sign-out, refresh) notifies OnAuthChange
// listeners with the authoritative current session, or nil when signed
// out. Each notification is a full state, not a delta.
type Provider interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	RefreshSession(ctx context.Context) (*models.Session, error)
	OnAuthChange(listener func(*models.Session)) (unsubscribe func())
}

type registeredListener struct {
	id string
	fn func(*models.Session)
}

// BackendProvider implements Provider against the hosted identity
// backend. The session is held in memory; the backend owns the durable
// state.
type BackendProvider struct {
	client *Client

	mu      sync.RWMutex
	session *models.Session
	token   *oauth2.Token

	listenerMu sync.Mutex
	listeners  []registeredListener
}

var _ Provider = (*BackendProvider)(nil)

func NewBackendProvider(client *Client) *BackendProvider {
	return &BackendProvider{client: client}
}

// mapSession normalizes the backend's session grant into the
// backend-agnostic session shape. Timezone is deliberately left empty
// here; it is populated later from the user's stored preferences.
func mapSession(token *tokenResponse) *models.Session {
	return &models.Session{
		UserID:       token.User.ID,
		Email:        token.User.Email,
		Name:         token.User.metadataString("full_name"),
		AvatarURL:    token.User.metadataString("avatar_url"),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.expiry(),
		CreatedAt:    time.Now().UTC(),
	}
}

func (p *BackendProvider) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	token, err := p.client.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" || token.User == nil {
		return nil, ErrNoSession
	}

	session := mapSession(token)

	p.mu.Lock()
	p.session = session
	p.token = token.toOAuthToken()
	p.mu.Unlock()

	p.notify(session)
	return session, nil
}

// SignOut revokes the backend session and clears local state. Local
// state is cleared even when revocation fails, so the caller is signed
// out either way; the backend error is still propagated.
func (p *BackendProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	var accessToken string
	if p.session != nil {
		accessToken = p.session.AccessToken
	}
	p.session = nil
	p.token = nil
	p.mu.Unlock()

	p.notify(nil)

	if accessToken == "" {
		return nil
	}
	return p.client.Logout(ctx, accessToken)
}

// CurrentSession returns the active session, refreshing it first when
// the access token has expired. Returns nil, nil when signed out.
func (p *BackendProvider) CurrentSession(ctx context.Context) (*models.Session, error) {
	p.mu.RLock()
	session := p.session
	token := p.token
	p.mu.RUnlock()

	if session == nil {
		return nil, nil
	}
	if token != nil && !token.Valid() && session.RefreshToken != "" {
		return p.RefreshSession(ctx)
	}
	return session, nil
}

// RefreshSession exchanges the refresh token for a new grant. Returns
// nil, nil when there is no session to refresh.
func (p *BackendProvider) RefreshSession(ctx context.Context) (*models.Session, error) {
	p.mu.RLock()
	session := p.session
	p.mu.RUnlock()

	if session == nil || session.RefreshToken == "" {
		return nil, nil
	}

	token, err := p.client.RefreshToken(ctx, session.RefreshToken)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" || token.User == nil {
		return nil, ErrNoSession
	}

	refreshed := mapSession(token)

	p.mu.Lock()
	p.session = refreshed
	p.token = token.toOAuthToken()
	p.mu.Unlock()

	p.notify(refreshed)
	return refreshed, nil
}

// OnAuthChange registers a listener and returns its teardown function.
// Unsubscribing more than once is a no-op.
func (p *BackendProvider) OnAuthChange(listener func(*models.Session)) func() {
	id := uuid.New().String()

	p.listenerMu.Lock()
	p.listeners = append(p.listeners, registeredListener{id: id, fn: listener})
	p.listenerMu.Unlock()

	return func() {
		p.listenerMu.Lock()
		defer p.listenerMu.Unlock()
		for i, l := range p.listeners {
			if l.id == id {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers one event to all listeners in registration order. The
// listener mutex is held for the whole dispatch, so listeners run to
// completion before the next event is delivered.
func (p *BackendProvider) notify(session *models.Session) {
	p.listenerMu.Lock()
	defer p.listenerMu.Unlock()
	for _, l := range p.listeners {
		l.fn(session)
	}
}
