package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/ticketstore/internal/domain"
	"github.com/opsdesk/ticketstore/internal/events"
	"github.com/opsdesk/ticketstore/internal/repository"
	"github.com/opsdesk/ticketstore/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets        repository.TicketRepository
	dispatcher     events.Dispatcher
	uploadMaxBytes int64
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	Dispatcher     events.Dispatcher
	UploadMaxBytes int64
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Name        string
	Division    string
	Description string
	Priority    string
	Assignee    string
	Photo       *PhotoInput
}

// PhotoInput carries a raw image attachment before encoding.
type PhotoInput struct {
	Data      []byte
	MediaType string
}

// TicketPatch is an optional-field update: nil pointers leave the current
// value untouched, so an empty string is distinguishable from "not supplied".
type TicketPatch struct {
	Status   *string
	Priority *string
	Assignee *string
	Notes    *string
	Operator *string
}

// ResolutionInput carries optional closing metadata for resolve/decline.
type ResolutionInput struct {
	Notes    *string
	Operator *string
}

// TicketPage is one page of the listing.
type TicketPage struct {
	Rows        []domain.Ticket
	Total       int
	TotalPages  int
	CurrentPage int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:        deps.TicketRepo,
		dispatcher:     deps.Dispatcher,
		uploadMaxBytes: deps.UploadMaxBytes,
	}
}

// CreateTicket validates input, encodes the optional photo and appends the
// ticket to the collection with status Unresolved.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	missing := make([]string, 0, 3)
	name := strings.TrimSpace(input.Name)
	division := strings.TrimSpace(input.Division)
	description := strings.TrimSpace(input.Description)
	if name == "" {
		missing = append(missing, "name")
	}
	if division == "" {
		missing = append(missing, "division")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("name, division, description required", map[string]any{"missing": missing})
	}

	photo, err := s.encodePhoto(input.Photo)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Name:        name,
		Division:    division,
		Description: description,
		Priority:    strings.TrimSpace(input.Priority),
		Status:      domain.TicketStatusUnresolved,
		Assignee:    strings.TrimSpace(input.Assignee),
		Photo:       photo,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.DefaultPriority
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketCreatedPayload{
			Division: ticket.Division,
			Priority: ticket.Priority,
			HasPhoto: ticket.Photo != nil,
		},
	})
	return ticket, nil
}

// ListTickets returns one page of tickets, newest first. A blank or "all"
// status means no filtering; an out-of-range page yields an empty slice.
func (s *TicketService) ListTickets(ctx context.Context, status string, page, limit int) (*TicketPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	filter := repository.ListFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if status != "" && !strings.EqualFold(status, "all") {
		st := domain.TicketStatus(status)
		filter.Status = &st
	}

	rows, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &TicketPage{
		Rows:        rows,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// GetTicket fetches a ticket by internal ID or display number.
func (s *TicketService) GetTicket(ctx context.Context, idOrNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, idOrNumber)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return ticket, nil
}

// UpdateTicket overwrites only the supplied patch fields.
func (s *TicketService) UpdateTicket(ctx context.Context, idOrNumber string, patch TicketPatch) (*domain.Ticket, error) {
	var newStatus *domain.TicketStatus
	if patch.Status != nil {
		st := domain.TicketStatus(*patch.Status)
		if !st.Valid() {
			return nil, util.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		newStatus = &st
	}

	var oldStatus domain.TicketStatus
	fields := make([]string, 0, 5)
	ticket, err := s.tickets.Update(ctx, idOrNumber, func(t *domain.Ticket) {
		oldStatus = t.Status
		if newStatus != nil {
			t.Status = *newStatus
			fields = append(fields, "status")
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
			fields = append(fields, "priority")
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
			fields = append(fields, "assignee")
		}
		if patch.Notes != nil {
			t.Notes = *patch.Notes
			fields = append(fields, "notes")
		}
		if patch.Operator != nil {
			t.Operator = *patch.Operator
			fields = append(fields, "operator")
		}
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketUpdated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload:      events.TicketUpdatedPayload{Fields: fields},
	})
	if newStatus != nil && oldStatus != *newStatus {
		s.publishStatusChange(ctx, ticket, oldStatus)
	}
	return ticket, nil
}

// ResolveTicket forces the ticket into the Resolved state.
func (s *TicketService) ResolveTicket(ctx context.Context, idOrNumber string, input ResolutionInput) (*domain.Ticket, error) {
	return s.closeWithStatus(ctx, idOrNumber, domain.TicketStatusResolved, input)
}

// DeclineTicket forces the ticket into the Declined state.
func (s *TicketService) DeclineTicket(ctx context.Context, idOrNumber string, input ResolutionInput) (*domain.Ticket, error) {
	return s.closeWithStatus(ctx, idOrNumber, domain.TicketStatusDeclined, input)
}

func (s *TicketService) closeWithStatus(ctx context.Context, idOrNumber string, status domain.TicketStatus, input ResolutionInput) (*domain.Ticket, error) {
	var oldStatus domain.TicketStatus
	ticket, err := s.tickets.Update(ctx, idOrNumber, func(t *domain.Ticket) {
		oldStatus = t.Status
		t.Status = status
		if input.Notes != nil {
			t.Notes = *input.Notes
		}
		if input.Operator != nil {
			t.Operator = *input.Operator
		}
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if oldStatus != status {
		s.publishStatusChange(ctx, ticket, oldStatus)
	}
	return ticket, nil
}

// DeleteTicket removes and returns the ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, idOrNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, idOrNumber)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketDeleted,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload:      events.TicketDeletedPayload{Status: ticket.Status},
	})
	return ticket, nil
}

// Stats aggregates counts over the whole collection in one pass.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	return s.tickets.Stats(ctx)
}

func (s *TicketService) encodePhoto(input *PhotoInput) (*domain.Photo, error) {
	if input == nil {
		return nil, nil
	}
	if !strings.HasPrefix(input.MediaType, "image/") {
		return nil, util.NewValidationError("attachment must be an image", map[string]any{"media_type": input.MediaType})
	}
	size := int64(len(input.Data))
	if size > s.uploadMaxBytes {
		return nil, util.NewPayloadTooLarge("attachment exceeds size limit", map[string]any{
			"size_bytes": size,
			"max_bytes":  s.uploadMaxBytes,
		})
	}
	return &domain.Photo{
		Data:      base64.StdEncoding.EncodeToString(input.Data),
		MediaType: input.MediaType,
		SizeBytes: size,
	}, nil
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticket *domain.Ticket, oldStatus domain.TicketStatus) {
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Operator:  ticket.Operator,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.NewNotFound("ticket", nil)
	}
	return err
}
