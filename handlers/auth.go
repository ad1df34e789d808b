package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tempo/app"
	"tempo/auth"
	"tempo/middleware"
	"tempo/models"
)

// Login exchanges email/password credentials for a session via the
// hosted auth backend and mirrors the identity into the local database.
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var creds models.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&creds); err != nil {
			return validationFailed(c, err)
		}

		session, err := a.Auth.Login(c.UserContext(), creds)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid email or password",
				})
			}
			return serverErrorWithDetails(c, "Login failed", err)
		}

		return success(c, fiber.Map{"session": session})
	}
}

func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Auth.Logout(c.UserContext()); err != nil {
			return serverErrorWithDetails(c, "Logout failed", err)
		}
		return success(c, fiber.Map{"message": "Signed out"})
	}
}

func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.GetSession(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not signed in",
			})
		}
		return success(c, fiber.Map{"session": session})
	}
}
