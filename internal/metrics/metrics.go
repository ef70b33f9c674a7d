package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	EventsReceived      prometheus.Counter
	RateLimited         prometheus.Counter
	ValidationFailures  prometheus.Counter
	DuplicateConflicts  prometheus.Counter
	ReservationsCreated prometheus.Counter
	ReplySuccesses      prometheus.Counter
	ReplyFailures       prometheus.Counter
	ProcessingTime      prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		EventsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_events_received",
			Help: "Total number of webhook events received",
		}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_rate_limited",
			Help: "Total number of events rejected by the per-sender rate limit",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_validation_failures",
			Help: "Total number of reservation attempts rejected by business rules",
		}),
		DuplicateConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_duplicate_conflicts",
			Help: "Total number of reservation attempts blocked by the duplicate guard",
		}),
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_reservations_created",
			Help: "Total number of reservations persisted",
		}),
		ReplySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_reply_successes",
			Help: "Total number of successful reply deliveries",
		}),
		ReplyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "line_reservation_reply_failures",
			Help: "Total number of reply deliveries that exhausted retries",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "line_reservation_event_duration_seconds",
			Help:    "Time spent processing webhook events",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
