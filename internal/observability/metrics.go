package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the service.
type Metrics struct {
	reqTotal     *prometheus.CounterVec
	reqLatency   *prometheus.HistogramVec
	errTotal     *prometheus.CounterVec
	ticketEvents *prometheus.CounterVec
}

// NewMetrics registers collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		reqLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		errTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_errors_total",
				Help: "Total number of requests answered with an error body.",
			},
			[]string{"path", "method", "code"},
		),
		ticketEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_events_total",
				Help: "Total number of ticket lifecycle events.",
			},
			[]string{"type"},
		),
	}
	reg.MustRegister(m.reqTotal, m.reqLatency, m.errTotal, m.ticketEvents)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reqTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.reqLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errTotal.WithLabelValues(path, method, code).Inc()
}

// RecordTicketEvent counts a ticket lifecycle event by type.
func (m *Metrics) RecordTicketEvent(eventType string) {
	if m == nil {
		return
	}
	m.ticketEvents.WithLabelValues(eventType).Inc()
}
