package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/middleware"
	"tempo/models"
)

// ListSummaries returns the caller's daily summaries for an inclusive
// date range given as from/to query parameters.
func ListSummaries(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		req := models.SummaryRangeRequest{
			From: c.Query("from"),
			To:   c.Query("to"),
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		summaries, err := a.Summaries.FindByUserRange(a.DB, userID, req.From, req.To)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list summaries", err)
		}

		return success(c, fiber.Map{"summaries": summaries})
	}
}
