package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/ticketstore/internal/api/dto"
	"github.com/opsdesk/ticketstore/internal/service"
)

// DashboardHandler serves aggregate statistics.
type DashboardHandler struct {
	service *service.TicketService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(ticketService *service.TicketService) *DashboardHandler {
	return &DashboardHandler{service: ticketService}
}

// Stats GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return c.JSON(dto.StatsResponse{
		Total:      stats.Total,
		ByStatus:   byStatus,
		ByPriority: stats.ByPriority,
	})
}
