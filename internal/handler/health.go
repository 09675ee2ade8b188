package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/autoasmr/api/internal/client"
	"github.com/autoasmr/api/internal/schedule"
)

type HealthHandler struct {
	generator client.VideoGenerator
	publisher client.Publisher
	redis     *redis.Client
	policy    *schedule.Policy
}

// NewHealthHandler reports collaborator configuration. redis may be nil.
func NewHealthHandler(generator client.VideoGenerator, publisher client.Publisher, redisClient *redis.Client, policy *schedule.Policy) *HealthHandler {
	return &HealthHandler{
		generator: generator,
		publisher: publisher,
		redis:     redisClient,
		policy:    policy,
	}
}

// Root handles GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Auto ASMR API",
		"timestamp": h.policy.Now().Format(time.RFC3339),
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"timestamp":       h.policy.Now().Format(time.RFC3339),
		"video_generator": mode(h.generator.IsConfigured()),
		"publisher":       mode(h.publisher.IsConfigured()),
		"redis":           h.redisStatus(),
	})
}

func (h *HealthHandler) redisStatus() string {
	if h.redis == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return "unavailable"
	}
	return "ok"
}

func mode(configured bool) string {
	if configured {
		return "live"
	}
	return "mock"
}
