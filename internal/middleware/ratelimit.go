package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"movie-discovery-backend/internal/config"
)

// RateLimiter provides Redis-backed sliding window rate limiting.
// A nil Redis client disables limiting entirely.
type RateLimiter struct {
	rdb       *redis.Client
	maxReqs   int
	windowSec int
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		rdb:       rdb,
		maxReqs:   cfg.Max,
		windowSec: cfg.WindowSeconds,
	}
}

// Handler returns a Fiber middleware handler for rate limiting.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.rdb == nil {
			return c.Next()
		}

		// Use client IP as the rate limit key
		key := fmt.Sprintf("ratelimit:%s", c.IP())
		ctx := context.Background()

		// Increment counter
		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request (fail-open)
			return c.Next()
		}

		// Set expiry on first request in the window
		if count == 1 {
			rl.rdb.Expire(ctx, key, time.Duration(rl.windowSec)*time.Second)
		}

		// Get remaining TTL for headers
		ttl, _ := rl.rdb.TTL(ctx, key).Result()

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.maxReqs))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, int64(rl.maxReqs)-count)))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", int(ttl.Seconds())))

		if int(count) > rl.maxReqs {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": int(ttl.Seconds()),
			})
		}

		return c.Next()
	}
}
