package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/middleware"
	"tempo/models"
	"tempo/services"
)

func StartTimer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.StartTimerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		task, err := a.Tasks.FindByID(req.TaskID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load task", err)
		}
		if task == nil || task.UserID != userID {
			return notFound(c, "Task not found")
		}

		entry, err := a.Timer.Start(userID, task.ID)
		if err != nil {
			if errors.Is(err, services.ErrTimerRunning) {
				return conflict(c, "A timer is already running")
			}
			return serverErrorWithDetails(c, "Failed to start timer", err)
		}

		return created(c, fiber.Map{"entry": entry})
	}
}

func StopTimer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		result, err := a.Timer.Stop(userID)
		if err != nil {
			if errors.Is(err, services.ErrNoOpenEntry) {
				return conflict(c, "No timer is running")
			}
			return serverErrorWithDetails(c, "Failed to stop timer", err)
		}

		return success(c, fiber.Map{
			"entry":          result.Entry,
			"points_awarded": result.PointsAwarded,
			"summary":        result.Summary,
		})
	}
}

func TimerStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		entry, err := a.Timer.Status(userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load timer status", err)
		}

		return success(c, fiber.Map{
			"running": entry != nil,
			"entry":   entry,
		})
	}
}

func ListTimeEntries(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		entries, err := a.Timer.Entries(userID, limit)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list time entries", err)
		}

		return success(c, fiber.Map{"entries": entries})
	}
}
