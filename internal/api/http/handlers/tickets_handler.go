package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/ticketstore/internal/api/dto"
	"github.com/opsdesk/ticketstore/internal/service"
	"github.com/opsdesk/ticketstore/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets. Multipart form with an optional photo file.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	input := service.TicketCreateInput{
		Name:        c.FormValue("name"),
		Division:    c.FormValue("division"),
		Description: c.FormValue("description"),
		Priority:    c.FormValue("priority"),
		Assignee:    c.FormValue("assignee"),
	}

	if header, err := c.FormFile("photo"); err == nil && header != nil {
		file, err := header.Open()
		if err != nil {
			return util.NewValidationError("unreadable attachment", nil)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return util.NewValidationError("unreadable attachment", nil)
		}
		input.Photo = &service.PhotoInput{
			Data:      data,
			MediaType: header.Header.Get("Content-Type"),
		}
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateTicketResponse{
		Message:  "ticket created",
		Ticket:   dto.FromTicket(ticket),
		TicketID: ticket.ID,
	})
}

// ListTickets GET /api/tickets?status=&page=&limit=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 10)

	result, err := h.service.ListTickets(c.UserContext(), c.Query("status"), page, limit)
	if err != nil {
		return err
	}

	rows := make([]dto.TicketResponse, 0, len(result.Rows))
	for i := range result.Rows {
		rows = append(rows, dto.FromTicket(&result.Rows[i]))
	}
	return c.JSON(dto.ListTicketsResponse{
		Rows:        rows,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		Total:       result.Total,
	})
}

// GetTicket GET /api/tickets/:id. The path parameter matches either the
// internal ID or the display number.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), service.TicketPatch{
		Status:   req.Status,
		Priority: req.Priority,
		Assignee: req.Assignee,
		Notes:    req.Notes,
		Operator: req.Operator,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// ResolveTicket POST /api/tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	input, err := parseResolution(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.ResolveTicket(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// DeclineTicket POST /api/tickets/:id/decline.
func (h *TicketsHandler) DeclineTicket(c *fiber.Ctx) error {
	input, err := parseResolution(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.DeclineTicket(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	ticket, err := h.service.DeleteTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// parseResolution reads the optional notes/operator body. An empty body is
// valid: resolve/decline work without any payload.
func parseResolution(c *fiber.Ctx) (service.ResolutionInput, error) {
	if len(c.Body()) == 0 {
		return service.ResolutionInput{}, nil
	}
	var req dto.ResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ResolutionInput{}, util.NewValidationError("invalid payload", nil)
	}
	return service.ResolutionInput{Notes: req.Notes, Operator: req.Operator}, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
