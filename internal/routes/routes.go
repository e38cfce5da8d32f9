package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bank_terminal/internal/config"
	"github.com/congo-pay/bank_terminal/internal/middleware"
	"github.com/congo-pay/bank_terminal/internal/terminal"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Logger   *slog.Logger
	Registry *terminal.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Registry == nil {
		return fmt.Errorf("terminal registry is required")
	}
	// Enforce Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.SessionRateLimit(d.Cache, d.Cfg.ActionRateLimit)
	RegisterTerminalRoutes(api, terminal.NewHandler(d.Registry), rateLimiter)

	return nil
}
