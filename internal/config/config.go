package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "BankTerminal"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultCurrencySymbol  = "₹"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultSessionTTL      = 30 * time.Minute
	defaultStatusTTL       = 5 * time.Second
	defaultActionRateLimit = 120
	actionRateLimitEnvVar  = "ACTION_RATE_LIMIT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	RedisURL        string
	CurrencySymbol  string
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	SessionTTL      time.Duration
	StatusTTL       time.Duration
	ActionRateLimit int
}

// Load reads configuration values from the environment and populates a Config instance.
// REDIS_URL is only mandatory outside development environments; without it the
// service keeps session storage in process memory.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		RedisURL:        os.Getenv("REDIS_URL"),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", defaultCurrencySymbol),
		ActionRateLimit: defaultActionRateLimit,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.StatusTTL, err = durationEnv("STATUS_MESSAGE_TTL", defaultStatusTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(actionRateLimitEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", actionRateLimitEnvVar, err)
		}
		cfg.ActionRateLimit = n
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.StatusTTL <= 0 {
		return Config{}, fmt.Errorf("STATUS_MESSAGE_TTL must be positive")
	}

	if cfg.RedisURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the configured environment is a local/development one.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// durationEnv reads <name>_SECONDS as an integer number of seconds, falling back to
// <name> as a Go duration string.
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	secondsVar := name + "_SECONDS"
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(name); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
