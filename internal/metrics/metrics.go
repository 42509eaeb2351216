package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Conversation metrics
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"intent"},
	)

	EscalationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_escalations_total",
			Help: "Total number of turns escalated to human handoff",
		},
	)

	HandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_handler_errors_total",
			Help: "Total number of handler failures caught at the dispatcher boundary",
		},
		[]string{"handler"},
	)

	// Scheduling metrics
	ConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_conflicts_total",
			Help: "Total number of booking or reschedule attempts rejected for a conflict",
		},
		[]string{"resource"},
	)

	ResolverAmbiguousTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduling_resolver_ambiguous_total",
			Help: "Total number of resolver calls where multiple appointments matched and the first was picked",
		},
	)

	// Archiver metrics
	ArchiverRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archiver_retries_total",
			Help: "Total number of ticket classification retries after invalid categories",
		},
	)

	ArchiverDefaultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archiver_defaults_total",
			Help: "Total number of tickets archived with the fixed default record",
		},
	)

	// Classification backend metrics
	LLMFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_failures_total",
			Help: "Total number of failed classification backend calls",
		},
		[]string{"purpose"},
	)

	// HTTP metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path, and status code",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"method", "path", "status"},
	)
)

// Register registers all agent metrics with the default registry
func Register() {
	prometheus.MustRegister(
		TurnsTotal,
		EscalationsTotal,
		HandlerErrorsTotal,
		ConflictsTotal,
		ResolverAmbiguousTotal,
		ArchiverRetriesTotal,
		ArchiverDefaultsTotal,
		LLMFailuresTotal,
		HTTPRequestDuration,
	)
}
