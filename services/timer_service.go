package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tempo/database"
	"tempo/models"
)

// TimerService runs the start/stop workflow: one open time entry per
// user, and on stop a points award plus a daily-summary bump, all inside
// one transaction.
type TimerService struct {
	db        *database.DB
	entries   *database.TimeEntryRepository
	ledger    *database.PointsLedgerRepository
	summaries *database.DailySummaryRepository
	outbox    *database.OutboxRepository
}

func NewTimerService(db *database.DB) *TimerService {
	return &TimerService{
		db:        db,
		entries:   database.NewTimeEntryRepository(),
		ledger:    database.NewPointsLedgerRepository(),
		summaries: database.NewDailySummaryRepository(),
		outbox:    database.NewOutboxRepository(),
	}
}

// StopResult reports what stopping the timer produced.
type StopResult struct {
	Entry         *models.TimeEntry    `json:"entry"`
	PointsAwarded *models.PointsEntry  `json:"points_awarded"`
	Summary       *models.DailySummary `json:"summary"`
}

func (s *TimerService) Start(userID, taskID string) (*models.TimeEntry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	open, err := s.entries.FindOpenByUserID(tx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, ErrTimerRunning
	}

	entry, err := s.entries.Create(tx, database.CreateTimeEntry{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Enqueue(tx, uuid.New().String(), database.OpCreate, "time_entries", entry.ID, timeEntryPayload(entry)); err != nil {
		return nil, fmt.Errorf("failed to queue time entry for sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TimerService) Stop(userID string) (*StopResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	open, err := s.entries.FindOpenByUserID(tx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, ErrNoOpenEntry
	}

	endedAt := time.Now().UTC()
	entry, err := s.entries.Update(tx, open[0].ID, database.UpdateTimeEntry{EndedAt: &endedAt})
	if err != nil {
		return nil, err
	}

	seconds := int(endedAt.Sub(entry.StartedAt).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	points := seconds / 60
	if points < 1 {
		points = 1
	}

	award, err := s.ledger.Create(tx, database.CreatePointsEntry{
		UserID:      userID,
		TaskID:      &entry.TaskID,
		TimeEntryID: &entry.ID,
		Points:      points,
		Reason:      "time tracked",
	})
	if err != nil {
		return nil, err
	}

	date := entry.StartedAt.UTC().Format("2006-01-02")
	summary, err := s.summaries.Upsert(tx, userID, date, seconds, 0, points)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	if err := s.outbox.Enqueue(tx, batchID, database.OpUpdate, "time_entries", entry.ID, timeEntryPayload(entry)); err != nil {
		return nil, fmt.Errorf("failed to queue time entry for sync: %w", err)
	}
	if err := s.outbox.Enqueue(tx, batchID, database.OpCreate, "points_ledger", award.ID, pointsPayload(award)); err != nil {
		return nil, fmt.Errorf("failed to queue points entry for sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &StopResult{Entry: entry, PointsAwarded: award, Summary: summary}, nil
}

// Status returns the user's running entry, or nil when idle.
func (s *TimerService) Status(userID string) (*models.TimeEntry, error) {
	open, err := s.entries.FindOpenByUserID(s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

func (s *TimerService) Entries(userID string, limit int) ([]models.TimeEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.entries.FindByUserID(s.db, userID, limit)
}

func timeEntryPayload(entry *models.TimeEntry) map[string]any {
	payload := map[string]any{
		"task_id":    entry.TaskID,
		"user_id":    entry.UserID,
		"started_at": entry.StartedAt,
		"note":       entry.Note,
		"created_at": entry.CreatedAt,
		"updated_at": entry.UpdatedAt,
	}
	if entry.EndedAt != nil {
		payload["ended_at"] = *entry.EndedAt
	}
	return payload
}

func pointsPayload(entry *models.PointsEntry) map[string]any {
	payload := map[string]any{
		"user_id":    entry.UserID,
		"points":     entry.Points,
		"reason":     entry.Reason,
		"created_at": entry.CreatedAt,
	}
	if entry.TaskID != nil {
		payload["task_id"] = *entry.TaskID
	}
	if entry.TimeEntryID != nil {
		payload["time_entry_id"] = *entry.TimeEntryID
	}
	return payload
}
