package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func StructuredLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.New().String()

		c.Locals("requestID", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)

		logAttrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
		}

		switch {
		case status >= 500:
			logger.LogAttrs(c.UserContext(), slog.LevelError, "request failed", logAttrs...)
		case status >= 400:
			logger.LogAttrs(c.UserContext(), slog.LevelWarn, "request error", logAttrs...)
		default:
			logger.LogAttrs(c.UserContext(), slog.LevelInfo, "request", logAttrs...)
		}

		return err
	}
}
