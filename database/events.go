package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// ScheduledEventRepository maps rows of scheduled_events (hard-deleted).
// external_id correlates an event with the external calendar system.
type ScheduledEventRepository struct{}

func NewScheduledEventRepository() *ScheduledEventRepository {
	return &ScheduledEventRepository{}
}

type CreateScheduledEvent struct {
	UserID     string
	TaskID     *string
	ExternalID string
	Title      string
	StartsAt   time.Time
	EndsAt     time.Time
}

type UpdateScheduledEvent struct {
	TaskID     *string
	ExternalID *string
	Title      *string
	StartsAt   *time.Time
	EndsAt     *time.Time
}

type eventRow struct {
	id         string
	userID     string
	taskID     sql.NullString
	externalID string
	title      string
	startsAt   time.Time
	endsAt     time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

func (er eventRow) toDomain() *models.ScheduledEvent {
	event := &models.ScheduledEvent{
		ID:         er.id,
		UserID:     er.userID,
		ExternalID: er.externalID,
		Title:      er.title,
		StartsAt:   er.startsAt,
		EndsAt:     er.endsAt,
		CreatedAt:  er.createdAt,
		UpdatedAt:  er.updatedAt,
	}
	if er.taskID.Valid {
		event.TaskID = &er.taskID.String
	}
	return event
}

const eventColumns = `id, user_id, task_id, external_id, title, starts_at, ends_at, created_at, updated_at`

func scanEvent(s rowScanner) (*models.ScheduledEvent, error) {
	var er eventRow
	err := s.Scan(&er.id, &er.userID, &er.taskID, &er.externalID, &er.title,
		&er.startsAt, &er.endsAt, &er.createdAt, &er.updatedAt)
	if err != nil {
		return nil, err
	}
	return er.toDomain(), nil
}

func (r *ScheduledEventRepository) FindByID(h DBTX, id string) (*models.ScheduledEvent, error) {
	event, err := scanEvent(h.QueryRow(`
		SELECT `+eventColumns+` FROM scheduled_events WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *ScheduledEventRepository) FindByExternalID(h DBTX, externalID string) (*models.ScheduledEvent, error) {
	event, err := scanEvent(h.QueryRow(`
		SELECT `+eventColumns+` FROM scheduled_events WHERE external_id = ?
	`, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *ScheduledEventRepository) FindByUserID(h DBTX, userID string, from, to time.Time) ([]models.ScheduledEvent, error) {
	rows, err := h.Query(`
		SELECT `+eventColumns+`
		FROM scheduled_events
		WHERE user_id = ? AND starts_at >= ? AND starts_at < ?
		ORDER BY starts_at ASC
	`, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.ScheduledEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

func (r *ScheduledEventRepository) Create(h DBTX, input CreateScheduledEvent) (*models.ScheduledEvent, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO scheduled_events (id, user_id, task_id, external_id, title, starts_at, ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, input.UserID, nullString(input.TaskID), input.ExternalID, input.Title,
		input.StartsAt.UTC(), input.EndsAt.UTC(), now, now)
	if err != nil {
		return nil, err
	}

	event, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrCreateFailed
	}
	return event, nil
}

func (r *ScheduledEventRepository) Update(h DBTX, id string, upd UpdateScheduledEvent) (*models.ScheduledEvent, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.TaskID != nil {
		sets = append(sets, "task_id = ?")
		args = append(args, *upd.TaskID)
	}
	if upd.ExternalID != nil {
		sets = append(sets, "external_id = ?")
		args = append(args, *upd.ExternalID)
	}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.StartsAt != nil {
		sets = append(sets, "starts_at = ?")
		args = append(args, upd.StartsAt.UTC())
	}
	if upd.EndsAt != nil {
		sets = append(sets, "ends_at = ?")
		args = append(args, upd.EndsAt.UTC())
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE scheduled_events SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	event, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}

func (r *ScheduledEventRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM scheduled_events WHERE id = ?`, id)
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

func (r *ScheduledEventRepository) CountByUser(h DBTX, userID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM scheduled_events WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
