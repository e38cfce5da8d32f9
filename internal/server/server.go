package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bank_terminal/internal/config"
	"github.com/congo-pay/bank_terminal/internal/routes"
	"github.com/congo-pay/bank_terminal/internal/session"
	"github.com/congo-pay/bank_terminal/internal/terminal"
)

const sweepInterval = time.Minute

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	cache    *redis.Client
	registry *terminal.Registry
	stop     context.CancelFunc
}

// New instantiates the HTTP server, picks the session storage backend and
// delegates route wiring to routes.Setup. A nil cache keeps sessions in memory.
func New(cfg config.Config, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	var storage session.Storage
	if cache != nil {
		storage = session.NewRedisStorage(cache, cfg.SessionTTL)
	} else {
		storage = session.NewMemoryStorage()
		logger.Warn("REDIS_URL not set, keeping sessions in memory")
	}

	registry := terminal.NewRegistry(storage, terminal.Options{
		Currency:  cfg.CurrencySymbol,
		StatusTTL: cfg.StatusTTL,
	}, cfg.SessionTTL, logger)

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, Cache: cache, Logger: logger, Registry: registry}); err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	go registry.Run(ctx, sweepInterval)

	return &Server{app: app, cfg: cfg, cache: cache, registry: registry, stop: stop}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and the session sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.app.ShutdownWithContext(ctx)
}
