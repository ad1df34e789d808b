package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/database"
	"tempo/middleware"
	"tempo/models"
)

func ListTaskTypes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		taskTypes, err := a.TaskTypes.FindByUserID(a.DB, userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list task types", err)
		}

		return success(c, fiber.Map{"task_types": taskTypes})
	}
}

func CreateTaskType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.CreateTaskTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		taskType, err := a.TaskTypes.Create(a.DB, database.CreateTaskType{
			UserID:      userID,
			WorkspaceID: req.WorkspaceID,
			Name:        req.Name,
			Icon:        req.Icon,
			Color:       req.Color,
		})
		if err != nil {
			return repoError(c, "Failed to create task type", err)
		}

		return created(c, fiber.Map{"task_type": taskType})
	}
}

func DeleteTaskType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		taskType, err := a.TaskTypes.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task type", err)
		}
		if taskType == nil || taskType.UserID != userID {
			return notFound(c, "Task type not found")
		}

		if err := a.TaskTypes.Delete(a.DB, taskType.ID); err != nil {
			return repoError(c, "Failed to delete task type", err)
		}

		return success(c, fiber.Map{"message": "Task type deleted"})
	}
}

// SetDefaultTaskType runs both default-flag updates inside one
// transaction so a crash or concurrent call cannot leave the user with
// zero or two defaults.
func SetDefaultTaskType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		tx, err := a.DB.Begin()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to set default task type", err)
		}
		defer tx.Rollback()

		if err := a.TaskTypes.SetDefault(tx, userID, c.Params("id")); err != nil {
			return repoError(c, "Failed to set default task type", err)
		}
		if err := tx.Commit(); err != nil {
			return serverErrorWithDetails(c, "Failed to set default task type", err)
		}

		return success(c, fiber.Map{"message": "Default task type updated"})
	}
}

func ReorderTaskTypes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.ReorderTaskTypesRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		tx, err := a.DB.Begin()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to reorder task types", err)
		}
		defer tx.Rollback()

		if err := a.TaskTypes.Reorder(tx, userID, req.OrderedIDs); err != nil {
			return repoError(c, "Failed to reorder task types", err)
		}
		if err := tx.Commit(); err != nil {
			return serverErrorWithDetails(c, "Failed to reorder task types", err)
		}

		taskTypes, err := a.TaskTypes.FindByUserID(a.DB, userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list task types", err)
		}

		return success(c, fiber.Map{"task_types": taskTypes})
	}
}
