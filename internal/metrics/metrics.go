package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LLM outcomes used as the outcome label.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

var (
	// Model calls
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeverse_llm_requests_total",
			Help: "Total number of chat-completion requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // operation: "reply", "recommend", "health"
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animeverse_llm_request_duration_seconds",
			Help:    "Duration of chat-completion requests in seconds, retries included",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"operation"},
	)

	// Parser
	ParsedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeverse_parsed_records_total",
			Help: "Total number of recommendation records parsed per section",
		},
		[]string{"section"}, // "top", "hidden_gems"
	)

	EmptyDocumentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animeverse_empty_documents_total",
			Help: "Total number of model replies that yielded no recognizable section",
		},
	)

	// Sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animeverse_active_sessions",
			Help: "Current number of sessions held by the API registry",
		},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeverse_http_requests_total",
			Help: "Total number of API requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)
)

// Section label values.
const (
	SectionTop        = "top"
	SectionHiddenGems = "hidden_gems"
)

// RecordLLMRequest records one model operation and its latency.
func RecordLLMRequest(operation, outcome string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordParse records the record counts of one parsed document. empty marks a
// reply in which no section heading was found.
func RecordParse(top, hiddenGems int, empty bool) {
	ParsedRecordsTotal.WithLabelValues(SectionTop).Add(float64(top))
	ParsedRecordsTotal.WithLabelValues(SectionHiddenGems).Add(float64(hiddenGems))
	if empty {
		EmptyDocumentsTotal.Inc()
	}
}

// SetActiveSessions updates the session gauge.
func SetActiveSessions(count int) {
	ActiveSessions.Set(float64(count))
}

// RecordHTTPRequest records one served API request.
func RecordHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
