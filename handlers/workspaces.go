package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/database"
	"tempo/middleware"
	"tempo/models"
)

func ListWorkspaces(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		workspaces, err := a.Workspaces.FindByOwnerID(a.DB, userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list workspaces", err)
		}

		return success(c, fiber.Map{"workspaces": workspaces})
	}
}

func CreateWorkspace(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.CreateWorkspaceRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		workspace, err := a.Workspaces.Create(a.DB, database.CreateWorkspace{
			OwnerID:     userID,
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return repoError(c, "Failed to create workspace", err)
		}

		return created(c, fiber.Map{"workspace": workspace})
	}
}

func GetWorkspace(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		workspace, err := a.Workspaces.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load workspace", err)
		}
		if workspace == nil || workspace.OwnerID != userID {
			return notFound(c, "Workspace not found")
		}

		return success(c, fiber.Map{"workspace": workspace})
	}
}

func UpdateWorkspace(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.UpdateWorkspaceRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		workspace, err := a.Workspaces.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load workspace", err)
		}
		if workspace == nil || workspace.OwnerID != userID {
			return notFound(c, "Workspace not found")
		}

		updated, err := a.Workspaces.Update(a.DB, workspace.ID, database.UpdateWorkspace{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return repoError(c, "Failed to update workspace", err)
		}

		return success(c, fiber.Map{"workspace": updated})
	}
}

func DeleteWorkspace(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		workspace, err := a.Workspaces.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load workspace", err)
		}
		if workspace == nil || workspace.OwnerID != userID {
			return notFound(c, "Workspace not found")
		}

		if err := a.Workspaces.Delete(a.DB, workspace.ID); err != nil {
			return repoError(c, "Failed to delete workspace", err)
		}

		return success(c, fiber.Map{"message": "Workspace deleted"})
	}
}

func ListWorkspaceMembers(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		workspace, err := a.Workspaces.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load workspace", err)
		}
		if workspace == nil || workspace.OwnerID != userID {
			return notFound(c, "Workspace not found")
		}

		members, err := a.Members.FindByWorkspaceID(a.DB, workspace.ID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list members", err)
		}

		return success(c, fiber.Map{"members": members})
	}
}
