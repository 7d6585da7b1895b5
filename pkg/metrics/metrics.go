// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMCallDuration tracks completion call duration by purpose.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Completion call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"purpose", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// LLMRetriesTotal counts bounded re-prompt retries after non-conforming output.
	LLMRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_retries_total",
			Help: "Completion retries issued after non-conforming output",
		},
	)

	// ExtractionFailures counts extraction passes that yielded no parseable filters.
	ExtractionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filter_extraction_failures_total",
			Help: "Filter extraction passes whose output could not be parsed",
		},
	)

	// FallbackExtractions counts turns rescued by the keyword extractor.
	FallbackExtractions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filter_fallback_extractions_total",
			Help: "Turns where the keyword fallback extractor produced filters",
		},
	)

	// IntentLabels counts classified filter-decision intents.
	IntentLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_labels_total",
			Help: "Classified filter-decision intents",
		},
		[]string{"label"},
	)

	// GeoNamesDropped counts origin names dropped after failed validation and correction.
	GeoNamesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_names_dropped_total",
			Help: "Origin names dropped because they could not be validated",
		},
	)

	// GeoCorrectionsTotal counts model-assisted name corrections by outcome.
	GeoCorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geo_corrections_total",
			Help: "Model-assisted geographic name corrections",
		},
		[]string{"outcome"},
	)

	// ConversationsTotal tracks conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// ConversationsFinished tracks conversations that reached a trip request.
	ConversationsFinished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_finished_total",
			Help: "Conversations that produced a finished trip request",
		},
	)

	// TurnsTotal tracks processed turns by conversation phase.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Processed conversation turns",
		},
		[]string{"phase"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMCall records metrics for one completion call.
func RecordLLMCall(purpose, status string, duration float64, model string, tokensIn, tokensOut int) {
	LLMCallDuration.WithLabelValues(purpose, status).Observe(duration)
	if model != "" {
		LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
		LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	}
}
