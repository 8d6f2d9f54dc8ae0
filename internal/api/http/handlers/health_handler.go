package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler responds to liveness probes.
type HealthHandler struct {
	serviceName string
	version     string
	startedAt   time.Time
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, startedAt: time.Now()}
}

// Health GET /api/health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}
