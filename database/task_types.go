package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// TaskTypeRepository maps rows of the task_types table (hard-deleted).
// The at-most-one-default-per-user rule is repository logic, not a DB
// constraint.
type TaskTypeRepository struct{}

func NewTaskTypeRepository() *TaskTypeRepository {
	return &TaskTypeRepository{}
}

type CreateTaskType struct {
	UserID      string
	WorkspaceID *string
	Name        string
	Icon        string
	Color       string
}

type UpdateTaskType struct {
	Name  *string
	Icon  *string
	Color *string
}

type taskTypeRow struct {
	id           string
	userID       string
	workspaceID  sql.NullString
	name         string
	icon         string
	color        string
	isDefault    int
	displayOrder int
	createdAt    time.Time
	updatedAt    time.Time
}

func (tr taskTypeRow) toDomain() *models.TaskType {
	tt := &models.TaskType{
		ID:           tr.id,
		UserID:       tr.userID,
		Name:         tr.name,
		Icon:         tr.icon,
		Color:        tr.color,
		IsDefault:    tr.isDefault == 1,
		DisplayOrder: tr.displayOrder,
		CreatedAt:    tr.createdAt,
		UpdatedAt:    tr.updatedAt,
	}
	if tr.workspaceID.Valid {
		tt.WorkspaceID = &tr.workspaceID.String
	}
	return tt
}

const taskTypeColumns = `id, user_id, workspace_id, name, icon, color, is_default, display_order, created_at, updated_at`

func scanTaskType(s rowScanner) (*models.TaskType, error) {
	var tr taskTypeRow
	err := s.Scan(&tr.id, &tr.userID, &tr.workspaceID, &tr.name, &tr.icon, &tr.color,
		&tr.isDefault, &tr.displayOrder, &tr.createdAt, &tr.updatedAt)
	if err != nil {
		return nil, err
	}
	return tr.toDomain(), nil
}

func (r *TaskTypeRepository) FindByID(h DBTX, id string) (*models.TaskType, error) {
	tt, err := scanTaskType(h.QueryRow(`
		SELECT `+taskTypeColumns+` FROM task_types WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tt, err
}

func (r *TaskTypeRepository) FindByUserID(h DBTX, userID string) ([]models.TaskType, error) {
	rows, err := h.Query(`
		SELECT `+taskTypeColumns+`
		FROM task_types
		WHERE user_id = ?
		ORDER BY display_order ASC, name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTaskTypes(rows)
}

func (r *TaskTypeRepository) FindByWorkspaceID(h DBTX, workspaceID string) ([]models.TaskType, error) {
	rows, err := h.Query(`
		SELECT `+taskTypeColumns+`
		FROM task_types
		WHERE workspace_id = ?
		ORDER BY display_order ASC, name ASC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTaskTypes(rows)
}

func collectTaskTypes(rows *sql.Rows) ([]models.TaskType, error) {
	types := make([]models.TaskType, 0)
	for rows.Next() {
		tt, err := scanTaskType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *tt)
	}
	return types, rows.Err()
}

func (r *TaskTypeRepository) Create(h DBTX, input CreateTaskType) (*models.TaskType, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO task_types (id, user_id, workspace_id, name, icon, color, is_default, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, id, input.UserID, nullString(input.WorkspaceID), input.Name, input.Icon, input.Color, now, now)
	if err != nil {
		return nil, err
	}

	tt, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, ErrCreateFailed
	}
	return tt, nil
}

func (r *TaskTypeRepository) Update(h DBTX, id string, upd UpdateTaskType) (*models.TaskType, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *upd.Icon)
	}
	if upd.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *upd.Color)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE task_types SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	tt, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, ErrNotFound
	}
	return tt, nil
}

func (r *TaskTypeRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM task_types WHERE id = ?`, id)
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

func (r *TaskTypeRepository) CountByUser(h DBTX, userID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM task_types WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}

// SetDefault clears the default flag on all of the user's task types and
// then sets it on the target. The two statements are not atomic unless h
// is a transaction: concurrent callers racing this method can leave zero
// or two defaults. Callers that care must pass a *sql.Tx.
func (r *TaskTypeRepository) SetDefault(h DBTX, userID, taskTypeID string) error {
	now := time.Now().UTC()

	if _, err := h.Exec(`
		UPDATE task_types SET is_default = 0, updated_at = ? WHERE user_id = ? AND is_default = 1
	`, now, userID); err != nil {
		return err
	}

	res, err := h.Exec(`
		UPDATE task_types SET is_default = 1, updated_at = ? WHERE id = ? AND user_id = ?
	`, now, taskTypeID, userID)
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

// Reorder assigns display_order by position in orderedIDs, one UPDATE per
// id. Like SetDefault this is not atomic across statements; concurrent
// reorders interleave and the result is unspecified unless h is a
// transaction.
func (r *TaskTypeRepository) Reorder(h DBTX, userID string, orderedIDs []string) error {
	now := time.Now().UTC()

	for position, id := range orderedIDs {
		if _, err := h.Exec(`
			UPDATE task_types SET display_order = ?, updated_at = ? WHERE id = ? AND user_id = ?
		`, position, now, id, userID); err != nil {
			return err
		}
	}
	return nil
}
