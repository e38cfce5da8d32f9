package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/bank_terminal/internal/terminal"
)

// RegisterTerminalRoutes wires the terminal session endpoints. Every state
// changing route goes through the per-session rate limiter.
func RegisterTerminalRoutes(r fiber.Router, h *terminal.Handler, rateLimiter fiber.Handler) {
	r.Post("/sessions", h.Create)

	group := r.Group("/sessions/:sessionId")
	group.Get("", h.Get)
	group.Post("/reload", h.Reload)

	actions := map[string]fiber.Handler{
		"/menu":        h.Menu,
		"/deposit":     h.Deposit,
		"/withdraw":    h.Withdraw,
		"/back":        h.Back,
		"/new-session": h.NewSession,
		"/reset":       h.Reset,
	}
	for path, handler := range actions {
		if rateLimiter != nil {
			group.Post(path, rateLimiter, handler)
		} else {
			group.Post(path, handler)
		}
	}
	group.Delete("/messages", h.ClearMessages)
}
