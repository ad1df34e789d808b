package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/database"
	"tempo/middleware"
	"tempo/models"
)

func ListTasks(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Query("project_id")
		if projectID == "" {
			return badRequest(c, "project_id query parameter is required")
		}

		userID := middleware.GetUserID(c)

		project, err := a.Projects.FindByID(a.DB, projectID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load project", err)
		}
		if project == nil || project.UserID != userID {
			return notFound(c, "Project not found")
		}

		tasks, err := a.Tasks.FindByProjectID(projectID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list tasks", err)
		}

		return success(c, fiber.Map{"tasks": tasks})
	}
}

func CreateTask(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.CreateTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		project, err := a.Projects.FindByID(a.DB, req.ProjectID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load project", err)
		}
		if project == nil || project.UserID != userID {
			return notFound(c, "Project not found")
		}

		task, err := a.Tasks.Create(database.CreateTask{
			ProjectID:    req.ProjectID,
			UserID:       userID,
			ParentTaskID: req.ParentTaskID,
			TaskTypeID:   req.TaskTypeID,
			Title:        req.Title,
			Description:  req.Description,
			Priority:     req.Priority,
			DueAt:        req.DueAt,
		})
		if err != nil {
			return repoError(c, "Failed to create task", err)
		}

		return created(c, fiber.Map{"task": task})
	}
}

func GetTask(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		task, err := a.Tasks.FindByID(c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task", err)
		}
		if task == nil || task.UserID != userID {
			return notFound(c, "Task not found")
		}

		return success(c, fiber.Map{"task": task})
	}
}

func UpdateTask(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.UpdateTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		task, err := a.Tasks.FindByID(c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task", err)
		}
		if task == nil || task.UserID != userID {
			return notFound(c, "Task not found")
		}

		upd := database.UpdateTask{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Progress:    req.Progress,
			TaskTypeID:  req.TaskTypeID,
			DueAt:       req.DueAt,
		}
		if req.Status != nil {
			status := models.TaskStatus(*req.Status)
			upd.Status = &status
		}

		updated, err := a.Tasks.Update(task.ID, upd)
		if err != nil {
			return repoError(c, "Failed to update task", err)
		}

		return success(c, fiber.Map{"task": updated})
	}
}

func DeleteTask(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		task, err := a.Tasks.FindByID(c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task", err)
		}
		if task == nil || task.UserID != userID {
			return notFound(c, "Task not found")
		}

		if err := a.Tasks.Delete(task.ID); err != nil {
			return repoError(c, "Failed to delete task", err)
		}

		return success(c, fiber.Map{"message": "Task deleted"})
	}
}

func ListSubtasks(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		task, err := a.Tasks.FindByID(c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task", err)
		}
		if task == nil || task.UserID != userID {
			return notFound(c, "Task not found")
		}

		subtasks, err := a.Tasks.FindSubtasks(task.ID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list subtasks", err)
		}

		return success(c, fiber.Map{"subtasks": subtasks})
	}
}
