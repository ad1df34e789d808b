package sync

import (
	"context"
	"fmt"

	"tempo/database"
	"tempo/remote"
)

// Connector implements the two hooks the sync engine invokes: a bearer
// credential fetch and an upload of one batch of queued local writes.
// It is a stateless adapter; retry, backoff and batch durability belong
// to the engine and its queue, never to the connector.
type Connector struct {
	sessions SessionSource
	store    remote.Store
	endpoint string
}

func NewConnector(sessions SessionSource, store remote.Store, endpoint string) *Connector {
	return &Connector{
		sessions: sessions,
		store:    store,
		endpoint: endpoint,
	}
}

// FetchCredentials returns the current bearer credential, or nil (not an
// error) when unauthenticated, which tells the engine to pause syncing.
// An error is returned only when the session lookup itself fails.
func (c *Connector) FetchCredentials(ctx context.Context) (*Credential, error) {
	session, err := c.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	return &Credential{
		Endpoint:  c.endpoint,
		Token:     session.AccessToken,
		ExpiresAt: session.TokenExpiry,
	}, nil
}

// UploadData drains one pending batch into the remote store, replaying
// operations in their original order: create→upsert, update→patch,
// delete→delete, each keyed by table and row id. The first remote
// failure aborts the whole batch; it is not marked complete, so the
// engine resubmits the same batch on its next cycle. An empty queue is a
// no-op.
func (c *Connector) UploadData(ctx context.Context, q Queue) error {
	batch, err := q.NextBatch()
	if err != nil {
		return fmt.Errorf("failed to read pending batch: %w", err)
	}
	if batch == nil {
		return nil
	}

	for _, op := range batch.Ops {
		switch op.Op {
		case database.OpCreate:
			err = c.store.Upsert(ctx, op.Table, op.RowID, op.Payload)
		case database.OpUpdate:
			err = c.store.Patch(ctx, op.Table, op.RowID, op.Payload)
		case database.OpDelete:
			err = c.store.Delete(ctx, op.Table, op.RowID)
		default:
			err = fmt.Errorf("unknown outbox op %q", op.Op)
		}
		if err != nil {
			return fmt.Errorf("batch %s aborted at %s %s/%s: %w", batch.ID, op.Op, op.Table, op.RowID, err)
		}
	}

	if err := q.Complete(batch.ID); err != nil {
		return fmt.Errorf("failed to complete batch %s: %w", batch.ID, err)
	}
	return nil
}
