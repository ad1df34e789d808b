package sync

import (
	"context"
	"time"

	"tempo/database"
	"tempo/models"
)

// Queue is the handle to pending local mutations the sync engine gives
// the connector for one upload cycle. database.OutboxQueue is the
// production implementation.
type Queue interface {
	// NextBatch returns the oldest pending batch, or nil when there is
	// no work.
	NextBatch() (*database.OutboxBatch, error)
	// Complete removes a fully uploaded batch. A batch that was not
	// completed stays queued and will be returned again.
	Complete(batchID string) error
}

// SessionSource is the slice of the auth provider the connector needs.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
}

// Credential is what the sync engine uses to authenticate uploads.
type Credential struct {
	Endpoint  string
	Token     string
	ExpiresAt time.Time
}
