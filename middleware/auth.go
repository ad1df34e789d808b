package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"tempo/models"
)

// SessionSource is the slice of the auth layer this middleware needs.
type SessionSource interface {
	Session(ctx context.Context) (*models.Session, error)
}

// AuthRequired rejects requests when no session is active and otherwise
// stores the caller's identity in request locals.
func AuthRequired(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.Session(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session lookup failed",
			})
		}
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not signed in",
			})
		}

		c.Locals("userID", session.UserID)
		c.Locals("userEmail", session.Email)
		c.Locals("session", session)
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

func GetSession(c *fiber.Ctx) *models.Session {
	session, ok := c.Locals("session").(*models.Session)
	if !ok {
		return nil
	}
	return session
}
