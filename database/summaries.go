package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// DailySummaryRepository maps rows of daily_summaries (hard-deleted);
// (user_id, date) is unique. Date is a YYYY-MM-DD string.
type DailySummaryRepository struct{}

func NewDailySummaryRepository() *DailySummaryRepository {
	return &DailySummaryRepository{}
}

type CreateDailySummary struct {
	UserID         string
	Date           string
	TotalSeconds   int
	TasksCompleted int
	Points         int
}

type UpdateDailySummary struct {
	TotalSeconds   *int
	TasksCompleted *int
	Points         *int
}

const summaryColumns = `id, user_id, date, total_seconds, tasks_completed, points, created_at, updated_at`

func scanSummary(s rowScanner) (*models.DailySummary, error) {
	var d models.DailySummary
	err := s.Scan(&d.ID, &d.UserID, &d.Date, &d.TotalSeconds, &d.TasksCompleted,
		&d.Points, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DailySummaryRepository) FindByID(h DBTX, id string) (*models.DailySummary, error) {
	summary, err := scanSummary(h.QueryRow(`
		SELECT `+summaryColumns+` FROM daily_summaries WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return summary, err
}

func (r *DailySummaryRepository) FindByUserAndDate(h DBTX, userID, date string) (*models.DailySummary, error) {
	summary, err := scanSummary(h.QueryRow(`
		SELECT `+summaryColumns+` FROM daily_summaries WHERE user_id = ? AND date = ?
	`, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return summary, err
}

func (r *DailySummaryRepository) FindByUserRange(h DBTX, userID, fromDate, toDate string) ([]models.DailySummary, error) {
	rows, err := h.Query(`
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, userID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.DailySummary, 0)
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	return summaries, rows.Err()
}

func (r *DailySummaryRepository) Create(h DBTX, input CreateDailySummary) (*models.DailySummary, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO daily_summaries (id, user_id, date, total_seconds, tasks_completed, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, input.UserID, input.Date, input.TotalSeconds, input.TasksCompleted, input.Points, now, now)
	if err != nil {
		return nil, err
	}

	summary, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrCreateFailed
	}
	return summary, nil
}

func (r *DailySummaryRepository) Update(h DBTX, id string, upd UpdateDailySummary) (*models.DailySummary, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.TotalSeconds != nil {
		sets = append(sets, "total_seconds = ?")
		args = append(args, *upd.TotalSeconds)
	}
	if upd.TasksCompleted != nil {
		sets = append(sets, "tasks_completed = ?")
		args = append(args, *upd.TasksCompleted)
	}
	if upd.Points != nil {
		sets = append(sets, "points = ?")
		args = append(args, *upd.Points)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE daily_summaries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	summary, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrNotFound
	}
	return summary, nil
}

// Upsert adds the deltas to the user's summary for the given date,
// creating the row when it does not exist yet. Single statement, so the
// read-modify-write is atomic.
func (r *DailySummaryRepository) Upsert(h DBTX, userID, date string, secondsDelta, tasksDelta, pointsDelta int) (*models.DailySummary, error) {
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO daily_summaries (id, user_id, date, total_seconds, tasks_completed, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			total_seconds = total_seconds + excluded.total_seconds,
			tasks_completed = tasks_completed + excluded.tasks_completed,
			points = points + excluded.points,
			updated_at = excluded.updated_at
	`, uuid.New().String(), userID, date, secondsDelta, tasksDelta, pointsDelta, now, now)
	if err != nil {
		return nil, err
	}

	summary, err := r.FindByUserAndDate(h, userID, date)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrCreateFailed
	}
	return summary, nil
}

func (r *DailySummaryRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM daily_summaries WHERE id = ?`, id)
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

func (r *DailySummaryRepository) CountByUser(h DBTX, userID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM daily_summaries WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
