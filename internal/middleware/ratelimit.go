package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:wallet:"

// RateLimit caps balance-changing requests per client IP in fixed one-minute windows
// counted in Redis. Reads pass through. Without Redis, or when Redis fails, requests
// are let through.
func RateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 120
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("%s%s:%d", rateLimitPrefix, c.IP(), window)

		pipe := cache.TxPipeline()
		incr := pipe.Incr(c.UserContext(), key)
		pipe.Expire(c.UserContext(), key, time.Minute)
		if _, err := pipe.Exec(c.UserContext()); err != nil {
			logger.Warn("rate limit check failed", slog.String("ip", c.IP()), slog.Any("error", err))
			return c.Next()
		}

		count := incr.Val()
		remaining := int64(maxPerMin) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(maxPerMin))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}
