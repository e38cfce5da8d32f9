package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit logs one line per request. Rejected terminal actions (4xx) are logged
// at warn level, failures at error level.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFromContext(c.UserContext()); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if sessionID := c.Params("sessionId"); sessionID != "" {
			attrs = append(attrs, slog.String("session_id", sessionID))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.UserContext(), level, "request completed", attrs...)
		return err
	}
}
