package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	idempotencyTimeout   = 2 * time.Second
)

// replayedResponse is the recorded outcome of a terminal action.
type replayedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Idempotency replays the recorded response of an unsafe request that repeats
// an Idempotency-Key already seen for the same method and path. Requests
// without the header pass through untouched, so a double-submitted deposit is
// only deduplicated when the client labels it. Server errors are not recorded.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		key := c.Get(idempotencyKeyHeader)
		if key == "" || cache == nil {
			return c.Next()
		}
		cacheKey := idempotencyPrefix + c.Method() + ":" + c.Path() + ":" + key
		log := logger.With(slog.String("idempotency_key", key))

		ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
		defer cancel()

		recorded, err := cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			return replay(c, recorded, log)
		case !errors.Is(err, redis.Nil):
			log.Error("idempotency lookup failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			log.Error("idempotency reservation failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency reservation failure")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		}

		if err := c.Next(); err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			release(cache, cacheKey)
			return err
		}

		if err := record(cache, cacheKey, c.Response(), ttl); err != nil {
			log.Error("failed to record idempotent response", slog.Any("error", err))
			release(cache, cacheKey)
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency persistence failure")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, recorded string, log *slog.Logger) error {
	if recorded == inProgressMarker {
		return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
	}

	var resp replayedResponse
	if err := json.Unmarshal([]byte(recorded), &resp); err != nil {
		log.Warn("failed to decode recorded response", slog.Any("error", err))
		return fiber.NewError(fiber.StatusConflict, "duplicate request")
	}
	for header, value := range resp.Headers {
		if strings.EqualFold(header, fiber.HeaderContentLength) {
			continue
		}
		c.Set(header, value)
	}
	return c.Status(resp.Status).SendString(resp.Body)
}

func record(cache *redis.Client, cacheKey string, r *fiber.Response, ttl time.Duration) error {
	resp := replayedResponse{
		Status:  r.StatusCode(),
		Body:    string(r.Body()),
		Headers: map[string]string{},
	}
	r.Header.VisitAll(func(k, v []byte) {
		resp.Headers[string(k)] = string(v)
	})

	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
	defer cancel()
	return cache.Set(ctx, cacheKey, payload, ttl).Err()
}

// release drops the reservation so the client may retry.
func release(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}
