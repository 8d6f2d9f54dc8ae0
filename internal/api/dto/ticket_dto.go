package dto

import (
	"time"

	"github.com/opsdesk/ticketstore/internal/domain"
)

// TicketResponse is the canonical JSON shape of a ticket.
type TicketResponse struct {
	ID           string              `json:"id"`
	TicketNumber string              `json:"ticketNumber"`
	Name         string              `json:"name"`
	Division     string              `json:"division"`
	Description  string              `json:"description"`
	Priority     string              `json:"priority"`
	Status       domain.TicketStatus `json:"status"`
	Assignee     string              `json:"assignee"`
	Notes        string              `json:"notes"`
	Operator     string              `json:"operator"`
	Photo        *PhotoResponse      `json:"photo,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// PhotoResponse carries the embedded image payload.
type PhotoResponse struct {
	Data      string `json:"data"`
	MediaType string `json:"mediaType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// ListTicketsResponse is one page of the listing.
type ListTicketsResponse struct {
	Rows        []TicketResponse `json:"rows"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Total       int              `json:"total"`
}

// CreateTicketResponse acknowledges creation.
type CreateTicketResponse struct {
	Message  string         `json:"message"`
	Ticket   TicketResponse `json:"ticket"`
	TicketID string         `json:"ticketId"`
}

// UpdateTicketRequest is a partial update: absent fields keep their current
// value, which is why every field is a pointer.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Assignee *string `json:"assignee"`
	Notes    *string `json:"notes"`
	Operator *string `json:"operator"`
}

// ResolutionRequest optionally overwrites closing metadata on resolve/decline.
type ResolutionRequest struct {
	Notes    *string `json:"notes"`
	Operator *string `json:"operator"`
}

// StatsResponse aggregates dashboard counts.
type StatsResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
}

// FromTicket maps the domain aggregate to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Name:         ticket.Name,
		Division:     ticket.Division,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		Assignee:     ticket.Assignee,
		Notes:        ticket.Notes,
		Operator:     ticket.Operator,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.Photo != nil {
		resp.Photo = &PhotoResponse{
			Data:      ticket.Photo.Data,
			MediaType: ticket.Photo.MediaType,
			SizeBytes: ticket.Photo.SizeBytes,
		}
	}
	return resp
}
