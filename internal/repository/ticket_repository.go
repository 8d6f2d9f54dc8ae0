package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/ticketstore/internal/domain"
)

// ErrNotFound is returned when no ticket matches the given identifier.
var ErrNotFound = errors.New("ticket not found")

// ListFilter captures listing parameters. A nil Status means no filtering.
type ListFilter struct {
	Status *domain.TicketStatus
	Limit  int
	Offset int
}

// TicketRepository encapsulates the ticket collection. Every method is safe
// for concurrent use; all mutation happens under the repository's lock.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Get(ctx context.Context, idOrNumber string) (*domain.Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Ticket, int, error)
	Update(ctx context.Context, idOrNumber string, apply func(*domain.Ticket)) (*domain.Ticket, error)
	Delete(ctx context.Context, idOrNumber string) (*domain.Ticket, error)
	Stats(ctx context.Context) (domain.TicketStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// memoryTicketRepository holds tickets in insertion order. The sequence
// counter shares the same lock as the slice so that identifier assignment
// and append are one atomic step.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	seq     int64
}

// NewTicketRepository instantiates an empty in-memory repository.
func NewTicketRepository() TicketRepository {
	return &memoryTicketRepository{}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := time.Now().UTC()
	ticket.ID = uuid.NewString()
	ticket.TicketNumber = generateTicketNumber(r.seq)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepository) Get(_ context.Context, idOrNumber string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(idOrNumber)
	if idx < 0 {
		return nil, ErrNotFound
	}
	ticket := r.tickets[idx]
	return &ticket, nil
}

// List walks the collection newest-first. Tickets are appended in creation
// order and CreatedAt is immutable, so reverse iteration is CreatedAt
// descending without a sort.
func (r *memoryTicketRepository) List(_ context.Context, filter ListFilter) ([]domain.Ticket, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Ticket, 0, len(r.tickets))
	for i := len(r.tickets) - 1; i >= 0; i-- {
		if filter.Status != nil && r.tickets[i].Status != *filter.Status {
			continue
		}
		matched = append(matched, r.tickets[i])
	}

	total := len(matched)
	if filter.Limit <= 0 {
		return matched, total, nil
	}
	if filter.Offset >= total {
		return []domain.Ticket{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *memoryTicketRepository) Update(_ context.Context, idOrNumber string, apply func(*domain.Ticket)) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(idOrNumber)
	if idx < 0 {
		return nil, ErrNotFound
	}
	apply(&r.tickets[idx])
	r.tickets[idx].UpdatedAt = time.Now().UTC()

	ticket := r.tickets[idx]
	return &ticket, nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, idOrNumber string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(idOrNumber)
	if idx < 0 {
		return nil, ErrNotFound
	}
	removed := r.tickets[idx]
	r.tickets = append(r.tickets[:idx], r.tickets[idx+1:]...)
	return &removed, nil
}

func (r *memoryTicketRepository) Stats(_ context.Context) (domain.TicketStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.TicketStats{
		Total:      len(r.tickets),
		ByStatus:   make(map[domain.TicketStatus]int, 4),
		ByPriority: make(map[string]int),
	}
	for _, status := range domain.TicketStatuses() {
		stats.ByStatus[status] = 0
	}
	for i := range r.tickets {
		stats.ByStatus[r.tickets[i].Status]++
		stats.ByPriority[r.tickets[i].Priority]++
	}
	return stats, nil
}

func (r *memoryTicketRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tickets[:0]
	removed := 0
	for _, ticket := range r.tickets {
		if ticket.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, ticket)
	}
	r.tickets = kept
	return removed, nil
}

// indexOf matches either the internal ID or the display number. Callers must
// hold at least the read lock.
func (r *memoryTicketRepository) indexOf(idOrNumber string) int {
	for i := range r.tickets {
		if r.tickets[i].ID == idOrNumber || r.tickets[i].TicketNumber == idOrNumber {
			return i
		}
	}
	return -1
}

func generateTicketNumber(seq int64) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("TKT-%d-%s", seq, suffix)
}
