package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/database"
	"tempo/middleware"
	"tempo/models"
)

func GetPreferences(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		prefs, err := a.Prefs.FindByUserID(a.DB, userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load preferences", err)
		}
		if prefs == nil {
			// Login seeds preferences; recreate them if the row is gone
			prefs, err = a.Prefs.Create(a.DB, database.CreateUserPreferences{
				UserID:               userID,
				NotificationsEnabled: true,
			})
			if err != nil {
				return repoError(c, "Failed to create preferences", err)
			}
		}

		return success(c, fiber.Map{"preferences": prefs})
	}
}

func UpdatePreferences(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req models.UpdatePreferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		prefs, err := a.Prefs.FindByUserID(a.DB, userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load preferences", err)
		}
		if prefs == nil {
			if _, err := a.Prefs.Create(a.DB, database.CreateUserPreferences{
				UserID:               userID,
				NotificationsEnabled: true,
			}); err != nil {
				return repoError(c, "Failed to create preferences", err)
			}
		}

		updated, err := a.Prefs.Update(a.DB, userID, database.UpdateUserPreferences{
			Theme:                req.Theme,
			WeekStart:            req.WeekStart,
			Timezone:             req.Timezone,
			DateFormat:           req.DateFormat,
			PomodoroMinutes:      req.PomodoroMinutes,
			NotificationsEnabled: req.NotificationsEnabled,
		})
		if err != nil {
			return repoError(c, "Failed to update preferences", err)
		}

		return success(c, fiber.Map{"preferences": updated})
	}
}
