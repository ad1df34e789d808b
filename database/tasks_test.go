package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempo/models"
)

func TestTaskRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	projects := NewProjectRepository()
	tasks := NewTaskRepository()

	workspaceID := "workspace-1"
	project, err := projects.Create(db, CreateProject{
		WorkspaceID: workspaceID,
		UserID:      "user-1",
		Name:        "Launch",
	})
	require.NoError(t, err)

	t.Run("Create defaults to BACKLOG", func(t *testing.T) {
		task, err := tasks.Create(db, CreateTask{
			ProjectID: project.ID,
			UserID:    "user-1",
			Title:     "Write docs",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusBacklog, task.Status)
		assert.Equal(t, 0, task.Progress)
		assert.Nil(t, task.ParentTaskID)
		assert.Nil(t, task.DueAt)
	})

	t.Run("Nullable fields round-trip", func(t *testing.T) {
		due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
		task, err := tasks.Create(db, CreateTask{
			ProjectID: project.ID,
			UserID:    "user-1",
			Title:     "Ship it",
			DueAt:     &due,
		})
		require.NoError(t, err)
		require.NotNil(t, task.DueAt)
		assert.True(t, task.DueAt.Equal(due))
	})

	t.Run("Subtasks are found by parent", func(t *testing.T) {
		parent, err := tasks.Create(db, CreateTask{
			ProjectID: project.ID,
			UserID:    "user-1",
			Title:     "Epic",
		})
		require.NoError(t, err)

		child, err := tasks.Create(db, CreateTask{
			ProjectID:    project.ID,
			UserID:       "user-1",
			ParentTaskID: &parent.ID,
			Title:        "Step one",
		})
		require.NoError(t, err)

		subtasks, err := tasks.FindByParentID(db, parent.ID)
		require.NoError(t, err)
		require.Len(t, subtasks, 1)
		assert.Equal(t, child.ID, subtasks[0].ID)
	})

	t.Run("Status update via partial update", func(t *testing.T) {
		task, err := tasks.Create(db, CreateTask{
			ProjectID: project.ID,
			UserID:    "user-1",
			Title:     "Review PR",
		})
		require.NoError(t, err)

		done := models.TaskStatusDone
		updated, err := tasks.Update(db, task.ID, UpdateTask{Status: &done})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)
		assert.Equal(t, "Review PR", updated.Title)
	})

	t.Run("Soft-deleting the project does not hide its tasks", func(t *testing.T) {
		doomed, err := projects.Create(db, CreateProject{
			WorkspaceID: workspaceID,
			UserID:      "user-1",
			Name:        "Doomed",
		})
		require.NoError(t, err)

		task, err := tasks.Create(db, CreateTask{
			ProjectID: doomed.ID,
			UserID:    "user-1",
			Title:     "Orphan",
		})
		require.NoError(t, err)

		err = projects.Delete(db, doomed.ID)
		require.NoError(t, err)

		// The task listing consults only the tasks table
		list, err := tasks.FindByProjectID(db, doomed.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, task.ID, list[0].ID)
	})

	t.Run("Soft-deleted task is excluded from listings", func(t *testing.T) {
		task, err := tasks.Create(db, CreateTask{
			ProjectID: project.ID,
			UserID:    "user-1",
			Title:     "Abandoned",
		})
		require.NoError(t, err)

		before, err := tasks.CountByProject(db, project.ID)
		require.NoError(t, err)

		err = tasks.Delete(db, task.ID)
		require.NoError(t, err)

		found, err := tasks.FindByID(db, task.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		after, err := tasks.CountByProject(db, project.ID)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)
	})
}
