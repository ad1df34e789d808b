package services

import (
	"fmt"

	"github.com/google/uuid"

	"tempo/database"
	"tempo/models"
)

// TaskService composes task writes with their replication records. Each
// call runs the repository write and the outbox enqueue in one
// transaction, so a local mutation and its upload record commit or roll
// back together.
type TaskService struct {
	db     *database.DB
	tasks  *database.TaskRepository
	outbox *database.OutboxRepository
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{
		db:     db,
		tasks:  database.NewTaskRepository(),
		outbox: database.NewOutboxRepository(),
	}
}

func (s *TaskService) Create(input database.CreateTask) (*models.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	task, err := s.tasks.Create(tx, input)
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Enqueue(tx, uuid.New().String(), database.OpCreate, "tasks", task.ID, taskPayload(task)); err != nil {
		return nil, fmt.Errorf("failed to queue task for sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(id string, upd database.UpdateTask) (*models.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	task, err := s.tasks.Update(tx, id, upd)
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Enqueue(tx, uuid.New().String(), database.OpUpdate, "tasks", task.ID, taskPayload(task)); err != nil {
		return nil, fmt.Errorf("failed to queue task for sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.tasks.Delete(tx, id); err != nil {
		return err
	}

	if err := s.outbox.Enqueue(tx, uuid.New().String(), database.OpDelete, "tasks", id, nil); err != nil {
		return fmt.Errorf("failed to queue task deletion for sync: %w", err)
	}

	return tx.Commit()
}

func (s *TaskService) FindByID(id string) (*models.Task, error) {
	return s.tasks.FindByID(s.db, id)
}

func (s *TaskService) FindByProjectID(projectID string) ([]models.Task, error) {
	return s.tasks.FindByProjectID(s.db, projectID)
}

func (s *TaskService) FindSubtasks(parentTaskID string) ([]models.Task, error) {
	return s.tasks.FindByParentID(s.db, parentTaskID)
}

// taskPayload is the remote row shape for a task; the soft-delete flag
// stays local.
func taskPayload(task *models.Task) map[string]any {
	payload := map[string]any{
		"project_id":  task.ProjectID,
		"user_id":     task.UserID,
		"title":       task.Title,
		"description": task.Description,
		"status":      string(task.Status),
		"priority":    task.Priority,
		"progress":    task.Progress,
		"created_at":  task.CreatedAt,
		"updated_at":  task.UpdatedAt,
	}
	if task.ParentTaskID != nil {
		payload["parent_task_id"] = *task.ParentTaskID
	}
	if task.TaskTypeID != nil {
		payload["task_type_id"] = *task.TaskTypeID
	}
	if task.DueAt != nil {
		payload["due_at"] = *task.DueAt
	}
	return payload
}
