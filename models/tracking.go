package models

import "time"

// TimeEntry is open while EndedAt is nil.
type TimeEntry struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	UserID    string     `json:"user_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ScheduledEvent mirrors a calendar event; ExternalID correlates it with
// the external calendar system.
type ScheduledEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TaskID     *string   `json:"task_id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PointsEntry is an append-only ledger row; points can be negative.
type PointsEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TaskID      *string   `json:"task_id"`
	TimeEntryID *string   `json:"time_entry_id"`
	Points      int       `json:"points"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

type DailySummary struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           string    `json:"date"`
	TotalSeconds   int       `json:"total_seconds"`
	TasksCompleted int       `json:"tasks_completed"`
	Points         int       `json:"points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
