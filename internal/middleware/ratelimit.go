package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/pkg/response"
)

// RateLimiter is a redis-backed fixed-window limiter keyed by client IP.
// It lets requests through whenever redis is absent or failing.
type RateLimiter struct {
	redis *redis.Client
	log   *zap.SugaredLogger
}

func NewRateLimiter(redisClient *redis.Client, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{redis: redisClient, log: log.With(logger.FieldComponent, "ratelimit")}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, c.IP())
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Debugw("Rate limit check skipped", logger.FieldError, err)
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// CreateLimit limits the job-creating endpoints per hour.
func (rl *RateLimiter) CreateLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("create", maxPerHour, time.Hour)
}
