package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Op is the kind of a queued local mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// OutboxOperation is one queued mutation, keyed by table and row id.
// Payload carries the row fields for create/update and is nil for delete.
type OutboxOperation struct {
	Seq       int64
	BatchID   string
	Op        Op
	Table     string
	RowID     string
	Payload   map[string]any
	CreatedAt time.Time
}

// OutboxBatch is the ordered group of mutations the sync engine hands the
// connector for one upload attempt. A batch either uploads completely or
// stays queued; there is no partial completion.
type OutboxBatch struct {
	ID  string
	Ops []OutboxOperation
}

// OutboxRepository maps rows of the outbox table. Entries are written in
// the same transaction as the local mutation they mirror and removed only
// when the whole batch has been uploaded.
type OutboxRepository struct{}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

// Enqueue appends one mutation to a batch. The payload is stored as JSON;
// pass nil for deletes.
func (r *OutboxRepository) Enqueue(h DBTX, batchID string, op Op, table, rowID string, payload any) error {
	var payloadJSON sql.NullString
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode outbox payload: %w", err)
		}
		payloadJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := h.Exec(`
		INSERT INTO outbox (batch_id, op, table_name, row_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, batchID, string(op), table, rowID, payloadJSON, time.Now().UTC())
	return err
}

// NextBatch returns the oldest pending batch in insertion order, or nil
// when the queue is empty.
func (r *OutboxRepository) NextBatch(h DBTX) (*OutboxBatch, error) {
	var batchID string
	err := h.QueryRow(`SELECT batch_id FROM outbox ORDER BY seq ASC LIMIT 1`).Scan(&batchID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := h.Query(`
		SELECT seq, batch_id, op, table_name, row_id, payload, created_at
		FROM outbox
		WHERE batch_id = ?
		ORDER BY seq ASC
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batch := &OutboxBatch{ID: batchID}
	for rows.Next() {
		var op OutboxOperation
		var opKind string
		var payloadJSON sql.NullString
		if err := rows.Scan(&op.Seq, &op.BatchID, &opKind, &op.Table, &op.RowID, &payloadJSON, &op.CreatedAt); err != nil {
			return nil, err
		}
		op.Op = Op(opKind)
		if payloadJSON.Valid {
			if err := json.Unmarshal([]byte(payloadJSON.String), &op.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode outbox payload for seq %d: %w", op.Seq, err)
			}
		}
		batch.Ops = append(batch.Ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return batch, nil
}

// Complete removes a fully uploaded batch from the queue.
func (r *OutboxRepository) Complete(h DBTX, batchID string) error {
	_, err := h.Exec(`DELETE FROM outbox WHERE batch_id = ?`, batchID)
	return err
}

// Pending reports how many operations are waiting for upload.
func (r *OutboxRepository) Pending(h DBTX) (int, error) {
	var count int
	err := h.QueryRow(`SELECT COUNT(*) FROM outbox`).Scan(&count)
	return count, err
}

// OutboxQueue binds the repository to a database handle so the sync
// engine can hand the connector a self-contained queue of pending work.
type OutboxQueue struct {
	db   *DB
	repo *OutboxRepository
}

func NewOutboxQueue(db *DB) *OutboxQueue {
	return &OutboxQueue{db: db, repo: NewOutboxRepository()}
}

func (q *OutboxQueue) NextBatch() (*OutboxBatch, error) {
	return q.repo.NextBatch(q.db)
}

func (q *OutboxQueue) Complete(batchID string) error {
	return q.repo.Complete(q.db, batchID)
}
