package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// TimeEntryRepository maps rows of the time_entries table (hard-deleted).
// An entry is open while ended_at is NULL.
type TimeEntryRepository struct{}

func NewTimeEntryRepository() *TimeEntryRepository {
	return &TimeEntryRepository{}
}

type CreateTimeEntry struct {
	TaskID    string
	UserID    string
	StartedAt time.Time
	Note      string
}

type UpdateTimeEntry struct {
	EndedAt *time.Time
	Note    *string
}

type timeEntryRow struct {
	id        string
	taskID    string
	userID    string
	startedAt time.Time
	endedAt   sql.NullTime
	note      string
	createdAt time.Time
	updatedAt time.Time
}

func (tr timeEntryRow) toDomain() *models.TimeEntry {
	entry := &models.TimeEntry{
		ID:        tr.id,
		TaskID:    tr.taskID,
		UserID:    tr.userID,
		StartedAt: tr.startedAt,
		Note:      tr.note,
		CreatedAt: tr.createdAt,
		UpdatedAt: tr.updatedAt,
	}
	if tr.endedAt.Valid {
		endedAt := tr.endedAt.Time
		entry.EndedAt = &endedAt
	}
	return entry
}

const timeEntryColumns = `id, task_id, user_id, started_at, ended_at, note, created_at, updated_at`

func scanTimeEntry(s rowScanner) (*models.TimeEntry, error) {
	var tr timeEntryRow
	err := s.Scan(&tr.id, &tr.taskID, &tr.userID, &tr.startedAt, &tr.endedAt,
		&tr.note, &tr.createdAt, &tr.updatedAt)
	if err != nil {
		return nil, err
	}
	return tr.toDomain(), nil
}

func (r *TimeEntryRepository) FindByID(h DBTX, id string) (*models.TimeEntry, error) {
	entry, err := scanTimeEntry(h.QueryRow(`
		SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return entry, err
}

func (r *TimeEntryRepository) FindByTaskID(h DBTX, taskID string) ([]models.TimeEntry, error) {
	rows, err := h.Query(`
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE task_id = ?
		ORDER BY started_at DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

func (r *TimeEntryRepository) FindByUserID(h DBTX, userID string, limit int) ([]models.TimeEntry, error) {
	rows, err := h.Query(`
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// FindOpenByUserID returns the user's running entries (ended_at IS NULL),
// oldest first.
func (r *TimeEntryRepository) FindOpenByUserID(h DBTX, userID string) ([]models.TimeEntry, error) {
	rows, err := h.Query(`
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE user_id = ? AND ended_at IS NULL
		ORDER BY started_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

func collectTimeEntries(rows *sql.Rows) ([]models.TimeEntry, error) {
	entries := make([]models.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *TimeEntryRepository) Create(h DBTX, input CreateTimeEntry) (*models.TimeEntry, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}

	_, err := h.Exec(`
		INSERT INTO time_entries (id, task_id, user_id, started_at, ended_at, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?, ?)
	`, id, input.TaskID, input.UserID, startedAt.UTC(), input.Note, now, now)
	if err != nil {
		return nil, err
	}

	entry, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrCreateFailed
	}
	return entry, nil
}

func (r *TimeEntryRepository) Update(h DBTX, id string, upd UpdateTimeEntry) (*models.TimeEntry, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.EndedAt != nil {
		sets = append(sets, "ended_at = ?")
		args = append(args, upd.EndedAt.UTC())
	}
	if upd.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *upd.Note)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE time_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	entry, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (r *TimeEntryRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TimeEntryRepository) CountByTask(h DBTX, taskID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM time_entries WHERE task_id = ?
	`, taskID).Scan(&count)
	return count, err
}
