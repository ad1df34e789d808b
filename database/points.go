package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// PointsLedgerRepository maps rows of the append-only points_ledger.
// There is no Update: once written, a ledger row never changes.
type PointsLedgerRepository struct{}

func NewPointsLedgerRepository() *PointsLedgerRepository {
	return &PointsLedgerRepository{}
}

type CreatePointsEntry struct {
	UserID      string
	TaskID      *string
	TimeEntryID *string
	Points      int
	Reason      string
}

type pointsRow struct {
	id          string
	userID      string
	taskID      sql.NullString
	timeEntryID sql.NullString
	points      int
	reason      string
	createdAt   time.Time
}

func (pr pointsRow) toDomain() *models.PointsEntry {
	entry := &models.PointsEntry{
		ID:        pr.id,
		UserID:    pr.userID,
		Points:    pr.points,
		Reason:    pr.reason,
		CreatedAt: pr.createdAt,
	}
	if pr.taskID.Valid {
		entry.TaskID = &pr.taskID.String
	}
	if pr.timeEntryID.Valid {
		entry.TimeEntryID = &pr.timeEntryID.String
	}
	return entry
}

const pointsColumns = `id, user_id, task_id, time_entry_id, points, reason, created_at`

func scanPointsEntry(s rowScanner) (*models.PointsEntry, error) {
	var pr pointsRow
	err := s.Scan(&pr.id, &pr.userID, &pr.taskID, &pr.timeEntryID, &pr.points, &pr.reason, &pr.createdAt)
	if err != nil {
		return nil, err
	}
	return pr.toDomain(), nil
}

func (r *PointsLedgerRepository) FindByID(h DBTX, id string) (*models.PointsEntry, error) {
	entry, err := scanPointsEntry(h.QueryRow(`
		SELECT `+pointsColumns+` FROM points_ledger WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return entry, err
}

func (r *PointsLedgerRepository) FindByUserID(h DBTX, userID string, limit int) ([]models.PointsEntry, error) {
	rows, err := h.Query(`
		SELECT `+pointsColumns+`
		FROM points_ledger
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.PointsEntry, 0)
	for rows.Next() {
		entry, err := scanPointsEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (r *PointsLedgerRepository) Create(h DBTX, input CreatePointsEntry) (*models.PointsEntry, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO points_ledger (id, user_id, task_id, time_entry_id, points, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, input.UserID, nullString(input.TaskID), nullString(input.TimeEntryID),
		input.Points, input.Reason, now)
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

// TotalByUser sums the signed ledger for a user.
func (r *PointsLedgerRepository) TotalByUser(h DBTX, userID string) (int, error) {
	var total int
	err := h.QueryRow(`
		SELECT COALESCE(SUM(points), 0) FROM points_ledger WHERE user_id = ?
	`, userID).Scan(&total)
	return total, err
}

func (r *PointsLedgerRepository) CountByUser(h DBTX, userID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM points_ledger WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
