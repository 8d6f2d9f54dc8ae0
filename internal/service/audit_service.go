package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/opsdesk/ticketstore/internal/events"
	"github.com/opsdesk/ticketstore/internal/observability"
)

// AuditService writes an audit log line and bumps counters for every ticket
// lifecycle event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleEvent)
	a.dispatcher.Subscribe(events.EventTicketUpdated, a.handleEvent)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleEvent)
	a.dispatcher.Subscribe(events.EventTicketDeleted, a.handleEvent)
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	a.metrics.RecordTicketEvent(string(event.Type))
	a.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Any("payload", event.Payload),
	)
	return nil
}
