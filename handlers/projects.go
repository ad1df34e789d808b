package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/database"
	"tempo/middleware"
	"tempo/models"
)

// ListProjects returns the caller's projects, optionally scoped to a
// workspace via the workspace_id query parameter.
func ListProjects(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var (
			projects []models.Project
			err      error
		)
		if workspaceID := c.Query("workspace_id"); workspaceID != "" {
			projects, err = a.Projects.FindByWorkspaceID(a.DB, workspaceID)
		} else {
			projects, err = a.Projects.FindByUserID(a.DB, userID)
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list projects", err)
		}

		return success(c, fiber.Map{"projects": projects})
	}
}

func CreateProject(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.CreateProjectRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		workspace, err := a.Workspaces.FindByID(a.DB, req.WorkspaceID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load workspace", err)
		}
		if workspace == nil || workspace.OwnerID != userID {
			return notFound(c, "Workspace not found")
		}

		project, err := a.Projects.Create(a.DB, database.CreateProject{
			WorkspaceID: req.WorkspaceID,
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
		})
		if err != nil {
			return repoError(c, "Failed to create project", err)
		}

		return created(c, fiber.Map{"project": project})
	}
}

func GetProject(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		project, err := a.Projects.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load project", err)
		}
		if project == nil || project.UserID != userID {
			return notFound(c, "Project not found")
		}

		return success(c, fiber.Map{"project": project})
	}
}

func UpdateProject(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.UpdateProjectRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		project, err := a.Projects.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load project", err)
		}
		if project == nil || project.UserID != userID {
			return notFound(c, "Project not found")
		}

		updated, err := a.Projects.Update(a.DB, project.ID, database.UpdateProject{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
			Completion:  req.Completion,
		})
		if err != nil {
			return repoError(c, "Failed to update project", err)
		}

		return success(c, fiber.Map{"project": updated})
	}
}

func DeleteProject(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		project, err := a.Projects.FindByID(a.DB, c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load project", err)
		}
		if project == nil || project.UserID != userID {
			return notFound(c, "Project not found")
		}

		if err := a.Projects.Delete(a.DB, project.ID); err != nil {
			return repoError(c, "Failed to delete project", err)
		}

		return success(c, fiber.Map{"message": "Project deleted"})
	}
}
