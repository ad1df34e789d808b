package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"tempo/validator"
)

// Client is a thin REST client for the hosted identity backend. It only
// decodes and validates payloads; session state lives in the Provider.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	validator *validator.Validator
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		validator: validator.New(),
	}
}

// backendUser is the identity payload the backend attaches to a session.
type backendUser struct {
	ID       string         `json:"id" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Metadata map[string]any `json:"user_metadata"`
}

// tokenResponse is the backend's session grant. ExpiresAt is epoch
// seconds; ExpiresIn is a fallback for backends that only send a TTL.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *backendUser `json:"user"`
}

func (t *tokenResponse) expiry() time.Time {
	if t.ExpiresAt > 0 {
		return time.Unix(t.ExpiresAt, 0)
	}
	if t.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

func (t *tokenResponse) toOAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.expiry(),
	}
}

// SignInWithPassword exchanges email+password for a session grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*tokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	return c.tokenRequest(ctx, "password", body)
}

// RefreshToken exchanges a refresh token for a fresh session grant.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.tokenRequest(ctx, "refresh_token", body)
}

func (c *Client) tokenRequest(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if token.User != nil {
		if err := c.validator.Validate(token.User); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	return &token, nil
}

// GetUser fetches the identity behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*backendUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp)
	}

	var user backendUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := c.validator.Validate(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &user, nil
}

// Logout revokes the session on the backend.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return backendError(resp)
	}
	return nil
}

func backendError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("auth backend returned %d: %s", resp.StatusCode, string(body))
}

func (u *backendUser) metadataString(key string) string {
	if u.Metadata == nil {
		return ""
	}
	value, _ := u.Metadata[key].(string)
	return value
}
