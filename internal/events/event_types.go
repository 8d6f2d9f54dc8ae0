package events

import (
	"time"

	"github.com/opsdesk/ticketstore/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Division string `json:"division"`
	Priority string `json:"priority"`
	HasPhoto bool   `json:"has_photo"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Operator  string              `json:"operator,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Status domain.TicketStatus `json:"status"`
}
