package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const actionRatePrefix = "rl:session:"

// SessionRateLimit caps the number of actions a single session may submit per
// minute using Redis counters. It is a no-op without Redis and fails open on
// cache errors. It must be attached to routes carrying a :sessionId parameter.
func SessionRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 120
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		sessionID := c.Params("sessionId")
		if sessionID == "" {
			sessionID = c.IP()
		}
		key := actionRatePrefix + sessionID
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many actions for this session, try again later")
		}
		return c.Next()
	}
}
