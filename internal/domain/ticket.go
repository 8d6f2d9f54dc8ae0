package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusUnresolved TicketStatus = "Unresolved"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusDeclined   TicketStatus = "Declined"
)

// TicketStatuses lists every lifecycle state in a stable order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusUnresolved,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusDeclined,
	}
}

// Valid reports whether s is a member of the lifecycle set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusUnresolved, TicketStatusInProgress, TicketStatusResolved, TicketStatusDeclined:
		return true
	}
	return false
}

// DefaultPriority is applied when a ticket is created without one.
const DefaultPriority = "Medium"

// Photo is an image payload embedded in a ticket at creation time.
type Photo struct {
	Data      string
	MediaType string
	SizeBytes int64
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	TicketNumber string
	Name         string
	Division     string
	Description  string
	Priority     string
	Status       TicketStatus
	Assignee     string
	Notes        string
	Operator     string
	Photo        *Photo
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TicketStats aggregates counts over the whole collection.
type TicketStats struct {
	Total      int
	ByStatus   map[TicketStatus]int
	ByPriority map[string]int
}
