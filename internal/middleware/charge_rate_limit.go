package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ChargeRateLimit bounds charge attempts per card per minute using Redis. A
// stolen card tapped in a loop burns through its attempts long before the
// daily limit window is relevant.
func ChargeRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 10
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		cardID := c.Params("cardId")
		if cardID == "" {
			cardID = c.IP()
		}
		key := "rl:charge:" + cardID
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many charge attempts, try again later")
		}
		return c.Next()
	}
}
