package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/ticketstore/internal/domain"
	"github.com/opsdesk/ticketstore/internal/events"
	"github.com/opsdesk/ticketstore/internal/repository"
	"github.com/opsdesk/ticketstore/pkg/util"
)

const testUploadMax = 1024

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func setupService() (*TicketService, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:     repository.NewTicketRepository(),
		Dispatcher:     dispatcher,
		UploadMaxBytes: testUploadMax,
	})
	return svc, dispatcher
}

func validInput() TicketCreateInput {
	return TicketCreateInput{
		Name:        "Alice",
		Division:    "IT",
		Description: "printer on fire",
	}
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, dispatcher := setupService()

	ticket, err := svc.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.NotEmpty(t, ticket.TicketNumber)
	assert.Equal(t, domain.TicketStatusUnresolved, ticket.Status)
	assert.Equal(t, domain.DefaultPriority, ticket.Priority)
	assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, dispatcher.types())
}

func TestCreateTicketMissingFields(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	for _, input := range []TicketCreateInput{
		{Division: "IT", Description: "d"},
		{Name: "Alice", Description: "d"},
		{Name: "Alice", Division: "IT"},
		{Name: "   ", Division: "IT", Description: "d"},
	} {
		_, err := svc.CreateTicket(ctx, input)
		require.Error(t, err)
		domainErr := util.ToDomainError(err)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	}

	page, err := svc.ListTickets(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCreateTicketRejectsNonImage(t *testing.T) {
	svc, _ := setupService()

	input := validInput()
	input.Photo = &PhotoInput{Data: []byte("plain text"), MediaType: "text/plain"}

	_, err := svc.CreateTicket(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestCreateTicketRejectsOversizedPhoto(t *testing.T) {
	svc, _ := setupService()

	input := validInput()
	input.Photo = &PhotoInput{Data: make([]byte, testUploadMax+1), MediaType: "image/png"}

	_, err := svc.CreateTicket(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", util.ToDomainError(err).Code)
}

func TestCreateTicketEncodesPhoto(t *testing.T) {
	svc, _ := setupService()

	input := validInput()
	input.Photo = &PhotoInput{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MediaType: "image/png"}

	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, ticket.Photo)
	assert.Equal(t, "image/png", ticket.Photo.MediaType)
	assert.Equal(t, int64(4), ticket.Photo.SizeBytes)
	assert.Equal(t, "iVBORw==", ticket.Photo.Data)
}

func TestUpdateTicketPatchSemantics(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, validInput())
	require.NoError(t, err)

	notes := "waiting on parts"
	updated, err := svc.UpdateTicket(ctx, ticket.ID, TicketPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "waiting on parts", updated.Notes)
	assert.Equal(t, domain.TicketStatusUnresolved, updated.Status)
	assert.Equal(t, ticket.Name, updated.Name)

	// an explicit empty string clears the field, absence leaves it alone
	empty := ""
	status := string(domain.TicketStatusInProgress)
	updated, err = svc.UpdateTicket(ctx, ticket.ID, TicketPatch{Status: &status, Notes: &empty})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Empty(t, updated.Notes)
}

func TestUpdateTicketInvalidStatus(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, validInput())
	require.NoError(t, err)

	bogus := "Lost"
	_, err = svc.UpdateTicket(ctx, ticket.ID, TicketPatch{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestUpdateTicketNotFound(t *testing.T) {
	svc, _ := setupService()

	_, err := svc.UpdateTicket(context.Background(), "missing", TicketPatch{})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestResolveAndDecline(t *testing.T) {
	svc, dispatcher := setupService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, validInput())
	require.NoError(t, err)

	notes := "replaced toner"
	operator := "bob"
	resolved, err := svc.ResolveTicket(ctx, ticket.TicketNumber, ResolutionInput{Notes: &notes, Operator: &operator})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	assert.Equal(t, "replaced toner", resolved.Notes)
	assert.Equal(t, "bob", resolved.Operator)

	declined, err := svc.DeclineTicket(ctx, ticket.ID, ResolutionInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusDeclined, declined.Status)
	// notes/operator untouched when not supplied
	assert.Equal(t, "replaced toner", declined.Notes)

	assert.Contains(t, dispatcher.types(), events.EventTicketStatusChanged)
}

func TestResolveNotFoundLeavesCollectionAlone(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.ResolveTicket(ctx, "missing", ResolutionInput{})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	page, err := svc.ListTickets(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, domain.TicketStatusUnresolved, page.Rows[0].Status)
}

func TestDeleteTicket(t *testing.T) {
	svc, dispatcher := setupService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, validInput())
	require.NoError(t, err)

	removed, err := svc.DeleteTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, removed.ID)

	_, err = svc.GetTicket(ctx, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	assert.Contains(t, dispatcher.types(), events.EventTicketDeleted)
}

func TestListTicketsPagination(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateTicket(ctx, validInput())
		require.NoError(t, err)
	}

	page, err := svc.ListTickets(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	page, err = svc.ListTickets(ctx, "all", 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 1)

	page, err = svc.ListTickets(ctx, "", 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 5, page.Total)
}

func TestListTicketsStatusFilter(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	var resolvedID string
	for i := 0; i < 3; i++ {
		ticket, err := svc.CreateTicket(ctx, validInput())
		require.NoError(t, err)
		if i == 1 {
			resolvedID = ticket.ID
		}
	}
	_, err := svc.ResolveTicket(ctx, resolvedID, ResolutionInput{})
	require.NoError(t, err)

	page, err := svc.ListTickets(ctx, string(domain.TicketStatusResolved), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, resolvedID, page.Rows[0].ID)
}

func TestStatsSumMatchesTotal(t *testing.T) {
	svc, _ := setupService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.CreateTicket(ctx, validInput())
		require.NoError(t, err)
	}
	page, err := svc.ListTickets(ctx, "", 1, 1)
	require.NoError(t, err)
	_, err = svc.DeclineTicket(ctx, page.Rows[0].ID, ResolutionInput{})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)

	sum := 0
	for _, count := range stats.ByStatus {
		sum += count
	}
	assert.Equal(t, stats.Total, sum)
}
