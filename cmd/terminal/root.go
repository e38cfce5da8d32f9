package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/congo-pay/bank_terminal/internal/infra"
	"github.com/congo-pay/bank_terminal/internal/logging"
	"github.com/congo-pay/bank_terminal/internal/notification"
	"github.com/congo-pay/bank_terminal/internal/session"
	"github.com/congo-pay/bank_terminal/internal/terminal"
	"github.com/congo-pay/bank_terminal/internal/tui"
)

var (
	sessionID  string
	redisURL   string
	currency   string
	logFile    string
	logLevel   string
	sessionTTL time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "bank-terminal",
	Short:        "Interactive bank management terminal",
	RunE:         runTerminal,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&sessionID, "session", "s", "", "Session id to resume; a new one is generated when empty.")
	flags.StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for session storage; memory when empty.")
	flags.StringVar(&currency, "currency", envOr("CURRENCY_SYMBOL", "₹"), "Currency symbol shown before amounts.")
	flags.StringVar(&logFile, "log-file", "", "Append JSON logs to this file; logs are discarded when empty.")
	flags.StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error).")
	flags.DurationVar(&sessionTTL, "session-ttl", 24*time.Hour, "Expiry of session keys stored in Redis.")
}

func runTerminal(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logger, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	cache, err := infra.NewRedisClient(ctx, redisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var storage session.Storage = session.NewMemoryStorage()
	if cache != nil {
		defer cache.Close()
		storage = session.NewRedisStorage(cache, sessionTTL)
	}

	term, err := terminal.Load(ctx, sessionID, storage, terminal.Options{
		Currency:  currency,
		StatusTTL: notification.DefaultTTL,
	}, logger)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	logger.Info("terminal session started", slog.String("session_id", sessionID), slog.Bool("redis", cache != nil))

	if _, err := tea.NewProgram(tui.New(ctx, term), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n", sessionID)
	return nil
}

func openLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return logging.NewWithWriter(io.Discard, logLevel), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewWithWriter(f, logLevel), func() { f.Close() }, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
