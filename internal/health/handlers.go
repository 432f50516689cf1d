package health

import (
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers serves the health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             *gorm.DB
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	var pinger DBPinger
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil {
			pinger = sqlDB
		}
	}
	result := CollectHealth(c.Context(), h.Rdb, pinger)
	return c.Status(fiber.StatusOK).JSON(result)
}

// Reset GET /health/reset — requires the admin key.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.HealthAdminKey == "" || c.Query("key") != h.HealthAdminKey {
		return response.Unauthorized(c, "Unauthorized")
	}
	if h.Rdb == nil {
		return response.Error(c, "Redis unavailable", fiber.StatusServiceUnavailable, nil)
	}
	if err := ResetCounters(c.Context(), h.Rdb); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Health counters reset", nil, nil)
}
