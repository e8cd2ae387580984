package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

const readyTimeout = 2 * time.Second

// Health answers the probes. Readiness asks the store; liveness and startup
// only need the process.
type Health struct {
	ready   func(ctx context.Context) error
	started time.Time
}

func NewHealth(ready func(ctx context.Context) error) *Health {
	return &Health{ready: ready, started: time.Now()}
}

func (h *Health) Register(r fiber.Router) {
	r.Get("/health/live", h.LivenessProbe)
	r.Get("/health/ready", h.ReadinessProbe)
	r.Get("/health/startup", h.StartupProbe)
}

func (h *Health) LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

func (h *Health) ReadinessProbe(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), readyTimeout)
	defer cancel()

	if err := h.ready(ctx); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

func (h *Health) StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "started",
		"uptime_s": int64(time.Since(h.started).Seconds()),
	})
}
