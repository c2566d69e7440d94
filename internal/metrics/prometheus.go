package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice assistant backend
type Metrics struct {
	// Conversation turn metrics
	TurnsStarted   *prometheus.CounterVec
	TurnsCompleted *prometheus.CounterVec
	TurnsFailed    *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec

	// Session metrics
	ActiveSessions    prometheus.Gauge
	ExchangesAppended prometheus.Counter
	SessionsCleared   prometheus.Counter

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionFallbacks prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// Inference metrics
	InferenceRequests prometheus.Counter
	InferenceErrors   *prometheus.CounterVec
	InferenceDuration prometheus.Histogram

	// Synthesis metrics
	SynthesisRequests prometheus.Counter
	SynthesisFailures prometheus.Counter
	SynthesisDuration prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them on the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them on the given
// registerer. Tests use this with a private registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Conversation turn metrics
		TurnsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_started_total",
			Help: "Total number of conversation turns started",
		}, []string{"kind"}),
		TurnsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_completed_total",
			Help: "Total number of conversation turns completed",
		}, []string{"kind"}),
		TurnsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_failed_total",
			Help: "Total number of conversation turns that failed",
		}, []string{"kind"}),
		TurnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "End-to-end duration of conversation turns",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}, []string{"kind"}),

		// Session metrics
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assistant_active_sessions",
			Help: "Current number of conversation sessions held in memory",
		}),
		ExchangesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_exchanges_appended_total",
			Help: "Total number of exchanges appended to session history",
		}),
		SessionsCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_sessions_cleared_total",
			Help: "Total number of sessions explicitly cleared",
		}),

		// Transcription metrics
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_transcription_requests_total",
			Help: "Total number of transcription attempts",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_transcription_failures_total",
			Help: "Total number of failed transcription attempts",
		}),
		TranscriptionFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_transcription_fallbacks_total",
			Help: "Total number of turns that used the fallback utterance",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		// Inference metrics
		InferenceRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_inference_requests_total",
			Help: "Total number of chat completion requests",
		}),
		InferenceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_inference_errors_total",
			Help: "Total number of classified chat completion errors",
		}, []string{"kind"}),
		InferenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_inference_duration_seconds",
			Help:    "Duration of chat completion requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		// Synthesis metrics
		SynthesisRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_synthesis_requests_total",
			Help: "Total number of text-to-speech requests",
		}),
		SynthesisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_synthesis_failures_total",
			Help: "Total number of failed text-to-speech requests",
		}),
		SynthesisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_synthesis_duration_seconds",
			Help:    "Duration of text-to-speech requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordTurnStarted increments the started counter for a turn kind
func (m *Metrics) RecordTurnStarted(kind string) {
	m.TurnsStarted.WithLabelValues(kind).Inc()
}

// RecordTurnCompleted records a completed turn with its duration
func (m *Metrics) RecordTurnCompleted(kind string, durationSeconds float64) {
	m.TurnsCompleted.WithLabelValues(kind).Inc()
	m.TurnDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordTurnFailed increments the failed counter for a turn kind
func (m *Metrics) RecordTurnFailed(kind string) {
	m.TurnsFailed.WithLabelValues(kind).Inc()
}

// SetActiveSessions sets the current session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordExchangeAppended increments the appended exchanges counter
func (m *Metrics) RecordExchangeAppended() {
	m.ExchangesAppended.Inc()
}

// RecordSessionCleared increments the cleared sessions counter
func (m *Metrics) RecordSessionCleared() {
	m.SessionsCleared.Inc()
}

// RecordTranscription records a transcription attempt and its outcome
func (m *Metrics) RecordTranscription(durationSeconds float64, failed bool) {
	m.TranscriptionRequests.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
	if failed {
		m.TranscriptionFailures.Inc()
	}
}

// RecordTranscriptionFallback increments the fallback utterance counter
func (m *Metrics) RecordTranscriptionFallback() {
	m.TranscriptionFallbacks.Inc()
}

// RecordInference records a chat completion request
func (m *Metrics) RecordInference(durationSeconds float64) {
	m.InferenceRequests.Inc()
	m.InferenceDuration.Observe(durationSeconds)
}

// RecordInferenceError increments the classified error counter
func (m *Metrics) RecordInferenceError(kind string) {
	m.InferenceErrors.WithLabelValues(kind).Inc()
}

// RecordSynthesis records a text-to-speech request and its outcome
func (m *Metrics) RecordSynthesis(durationSeconds float64, failed bool) {
	m.SynthesisRequests.Inc()
	m.SynthesisDuration.Observe(durationSeconds)
	if failed {
		m.SynthesisFailures.Inc()
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
