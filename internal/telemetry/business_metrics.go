package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Drafting
	Generations        *prometheus.CounterVec // labels: tone, length
	Rewrites           *prometheus.CounterVec // labels: action
	SubjectSuggestions prometheus.Counter
	DegradedFallbacks  *prometheus.CounterVec // labels: operation

	// Dispatch
	EmailsSent         prometheus.Counter
	EmailsFailed       prometheus.Counter
	ScheduledAccepted  prometheus.Counter
	ScheduledFired     *prometheus.CounterVec // labels: outcome
	ScheduleDelay      prometheus.Histogram
}

// Business is the process-wide metric set, registered on the default registry.
var Business = newBusinessMetrics("maildraft")

func newBusinessMetrics(namespace string) *BusinessMetrics {
	return &BusinessMetrics{
		Generations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Email drafts requested from the completion provider",
		}, []string{"tone", "length"}),
		Rewrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrites_total",
			Help:      "Rewrite operations by action",
		}, []string{"action"}),
		SubjectSuggestions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subject_suggestions_total",
			Help:      "Subject suggestion requests",
		}),
		DegradedFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_fallbacks_total",
			Help:      "Responses produced by local fallback logic instead of the provider",
		}, []string{"operation"}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Emails handed to the relay successfully",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Relay transmissions that failed",
		}),
		ScheduledAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_accepted_total",
			Help:      "Scheduled sends accepted",
		}),
		ScheduledFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_fired_total",
			Help:      "Scheduled sends fired, by outcome",
		}, []string{"outcome"}),
		ScheduleDelay: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_delay_seconds",
			Help:      "Requested delay between acceptance and firing of scheduled sends",
			Buckets:   []float64{1, 10, 60, 300, 900, 3600, 14400, 86400},
		}),
	}
}
