package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// TaskRepository maps rows of the tasks table (soft-deleted). The
// parent/subtask relation is a nullable parent_task_id plus a derived
// children lookup; no task graph is materialized.
type TaskRepository struct{}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

type CreateTask struct {
	ProjectID    string
	UserID       string
	ParentTaskID *string
	TaskTypeID   *string
	Title        string
	Description  string
	Priority     int
	DueAt        *time.Time
}

type UpdateTask struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *int
	Progress    *int
	TaskTypeID  *string
	DueAt       *time.Time
}

// taskRow is the persisted shape; toDomain hides nullability handling
// from domain consumers.
type taskRow struct {
	id           string
	projectID    string
	userID       string
	parentTaskID sql.NullString
	taskTypeID   sql.NullString
	title        string
	description  string
	status       string
	priority     int
	progress     int
	dueAt        sql.NullTime
	createdAt    time.Time
	updatedAt    time.Time
}

func (tr taskRow) toDomain() *models.Task {
	task := &models.Task{
		ID:          tr.id,
		ProjectID:   tr.projectID,
		UserID:      tr.userID,
		Title:       tr.title,
		Description: tr.description,
		Status:      models.TaskStatus(tr.status),
		Priority:    tr.priority,
		Progress:    tr.progress,
		CreatedAt:   tr.createdAt,
		UpdatedAt:   tr.updatedAt,
	}
	if tr.parentTaskID.Valid {
		task.ParentTaskID = &tr.parentTaskID.String
	}
	if tr.taskTypeID.Valid {
		task.TaskTypeID = &tr.taskTypeID.String
	}
	if tr.dueAt.Valid {
		dueAt := tr.dueAt.Time
		task.DueAt = &dueAt
	}
	return task
}

const taskColumns = `id, project_id, user_id, parent_task_id, task_type_id, title, description, status, priority, progress, due_at, created_at, updated_at`

func scanTask(s rowScanner) (*models.Task, error) {
	var tr taskRow
	err := s.Scan(&tr.id, &tr.projectID, &tr.userID, &tr.parentTaskID, &tr.taskTypeID,
		&tr.title, &tr.description, &tr.status, &tr.priority, &tr.progress,
		&tr.dueAt, &tr.createdAt, &tr.updatedAt)
	if err != nil {
		return nil, err
	}
	return tr.toDomain(), nil
}

func (r *TaskRepository) FindByID(h DBTX, id string) (*models.Task, error) {
	task, err := scanTask(h.QueryRow(`
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted = 0
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return task, err
}

// FindByProjectID lists a project's tasks. The project itself is not
// consulted: soft-deleting a project leaves its tasks listable.
func (r *TaskRepository) FindByProjectID(h DBTX, projectID string) ([]models.Task, error) {
	rows, err := h.Query(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = ? AND deleted = 0
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) FindByParentID(h DBTX, parentTaskID string) ([]models.Task, error) {
	rows, err := h.Query(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE parent_task_id = ? AND deleted = 0
		ORDER BY created_at ASC
	`, parentTaskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) FindByUserID(h DBTX, userID string) ([]models.Task, error) {
	rows, err := h.Query(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND deleted = 0
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Create(h DBTX, input CreateTask) (*models.Task, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO tasks (id, project_id, user_id, parent_task_id, task_type_id, title, description, status, priority, progress, due_at, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, 0, ?, ?)
	`, id, input.ProjectID, input.UserID, nullString(input.ParentTaskID), nullString(input.TaskTypeID),
		input.Title, input.Description, string(models.TaskStatusBacklog), input.Priority,
		nullTime(input.DueAt), now, now)
	if err != nil {
		return nil, err
	}

	task, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrCreateFailed
	}
	return task, nil
}

func (r *TaskRepository) Update(h DBTX, id string, upd UpdateTask) (*models.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if upd.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *upd.Progress)
	}
	if upd.TaskTypeID != nil {
		sets = append(sets, "task_type_id = ?")
		args = append(args, *upd.TaskTypeID)
	}
	if upd.DueAt != nil {
		sets = append(sets, "due_at = ?")
		args = append(args, *upd.DueAt)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted = 0`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	task, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`
		UPDATE tasks SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0
	`, time.Now().UTC(), id)
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

func (r *TaskRepository) CountByProject(h DBTX, projectID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM tasks WHERE project_id = ? AND deleted = 0
	`, projectID).Scan(&count)
	return count, err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
