package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "persona"
	subsystem = "chat"
)

var (
	// HTTP
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_requests_total",
			Help:      "Total authentication attempts",
		},
		[]string{"status"},
	)

	UserAgentFamilyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "user_agent_family_total",
			Help:      "Requests by user agent family (browser/cli/sdk/unknown)",
		},
		[]string{"family"},
	)

	// Chat turns
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "turns_total",
			Help:      "Chat turns by outcome",
		},
		[]string{"outcome", "model"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "turn_duration_seconds",
			Help:      "Chat turn duration in seconds, from request to persisted answer",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	TurnTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "turn_transitions_total",
			Help:      "Chat turn state transitions",
		},
		[]string{"from", "to"},
	)

	TitleJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "title_jobs_total",
			Help:      "Title generation jobs by status (queued, dropped, applied, failed)",
		},
		[]string{"status"},
	)

	TitleQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "title_queue_depth",
			Help:      "Title jobs waiting for a worker",
		},
	)

	UsageLogsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "usage_logs_pruned_total",
			Help:      "Usage ledger rows removed by the retention job",
		},
	)

	// Upstream
	TokensPromptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_prompt_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"model", "provider"},
	)

	TokensCompletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_completion_total",
			Help:      "Total completion tokens generated",
		},
		[]string{"model", "provider"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"provider", "error_type"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_duration_seconds",
			Help:      "LLM inference duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "provider", "stream"},
	)

	FirstTokenDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "first_token_seconds",
			Help:      "Time to first token for streaming requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"model", "provider"},
	)

	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_streams",
			Help:      "Currently active upstream streams",
		},
		[]string{"model"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

func RecordAuth(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	AuthRequestsTotal.WithLabelValues(status).Inc()
}

// RecordTokens records token usage for a completion request
func RecordTokens(model, provider string, promptTokens, completionTokens int) {
	TokensPromptTotal.WithLabelValues(model, provider).Add(float64(promptTokens))
	TokensCompletionTotal.WithLabelValues(model, provider).Add(float64(completionTokens))
}

func RecordLLMDuration(model, provider string, stream bool, durationSec float64) {
	streamStr := "false"
	if stream {
		streamStr = "true"
	}
	LLMDuration.WithLabelValues(model, provider, streamStr).Observe(durationSec)
}

func RecordFirstToken(model, provider string, durationSec float64) {
	FirstTokenDuration.WithLabelValues(model, provider).Observe(durationSec)
}

func RecordProviderError(provider, errorType string) {
	ProviderErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

func IncrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Inc()
}

func DecrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Dec()
}

func RecordTitleJob(status string) {
	TitleJobsTotal.WithLabelValues(status).Inc()
}

// RecordUserAgent buckets the user agent into a low cardinality family.
func RecordUserAgent(ua string) {
	UserAgentFamilyTotal.WithLabelValues(userAgentFamily(normalizeUserAgent(ua))).Inc()
}

func normalizeUserAgent(ua string) string {
	ua = strings.TrimSpace(strings.ToLower(ua))
	if ua == "" {
		return "unknown"
	}
	norm := strings.Fields(ua)[0]
	if len(norm) > 60 {
		norm = norm[:60]
	}
	return norm
}

func userAgentFamily(normUA string) string {
	switch {
	case strings.HasPrefix(normUA, "persona-cli"):
		return "persona_cli"
	case strings.Contains(normUA, "mozilla") || strings.Contains(normUA, "chrome") || strings.Contains(normUA, "safari") || strings.Contains(normUA, "firefox"):
		return "browser"
	case strings.Contains(normUA, "curl") || strings.Contains(normUA, "wget") || strings.Contains(normUA, "httpie"):
		return "cli"
	case strings.Contains(normUA, "go-http-client") || strings.Contains(normUA, "python-requests") || strings.Contains(normUA, "axios") || strings.Contains(normUA, "node"):
		return "sdk"
	default:
		return "unknown"
	}
}
