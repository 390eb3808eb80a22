package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/studymate/auth-backend/internal/dto"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	db    Probe
	redis Probe
}

// NewHealthHandler takes a required database probe and an optional Redis
// probe (nil when Redis is not configured).
func NewHealthHandler(db, redis Probe) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Redis:     "disabled",
	}
	status := fiber.StatusOK

	if err := h.db(ctx); err != nil {
		slog.Error("database healthcheck failed", "error", err)
		resp.Status = "unhealthy"
		resp.DB = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis(ctx); err != nil {
			slog.Warn("redis healthcheck failed", "error", err)
			resp.Redis = "unhealthy"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}

	return c.Status(status).JSON(resp)
}
