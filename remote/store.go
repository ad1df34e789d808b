package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Store is the write surface the sync connector needs from the remote
// backend: upsert, patch and delete keyed by table name and row id.
type Store interface {
	Upsert(ctx context.Context, table, id string, payload map[string]any) error
	Patch(ctx context.Context, table, id string, payload map[string]any) error
	Delete(ctx context.Context, table, id string) error
}

// TokenFunc returns the bearer token for the next request. Tokens
// rotate when sessions refresh, so the store asks per request instead
// of holding one.
type TokenFunc func(ctx context.Context) (string, error)

// RESTStore talks to the backend's row-level REST interface. Errors are
// propagated unchanged; the caller decides what a failed write means.
type RESTStore struct {
	baseURL string
	apiKey  string
	token   TokenFunc
	http    *http.Client
}

var _ Store = (*RESTStore)(nil)

func NewRESTStore(baseURL, apiKey string, token TokenFunc) *RESTStore {
	return &RESTStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RESTStore) Upsert(ctx context.Context, table, id string, payload map[string]any) error {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["id"] = id

	req, err := s.newRequest(ctx, http.MethodPost, fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table), body)
	if err != nil {
		return err
	}
	// Insert-or-update on primary key conflict
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	return s.do(req)
}

func (s *RESTStore) Patch(ctx context.Context, table, id string, payload map[string]any) error {
	req, err := s.newRequest(ctx, http.MethodPatch, fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", s.baseURL, table, id), payload)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *RESTStore) Delete(ctx context.Context, table, id string) error {
	req, err := s.newRequest(ctx, http.MethodDelete, fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", s.baseURL, table, id), nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *RESTStore) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("token lookup failed: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (s *RESTStore) do(req *http.Request) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote store returned %d for %s %s: %s", resp.StatusCode, req.Method, req.URL.Path, string(body))
	}
	return nil
}
