package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ModelRequests *prometheus.CounterVec
	ModelTokens   *prometheus.CounterVec
	ModelDuration *prometheus.HistogramVec
	UsageUpdates  *prometheus.CounterVec
	PromptFetches *prometheus.CounterVec
	Panics        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ModelRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bruce_model_requests_total",
				Help: "Total number of hosted model calls by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		ModelTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bruce_model_tokens_total",
				Help: "Tokens consumed by hosted model calls",
			},
			[]string{"operation", "direction"},
		),
		ModelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bruce_model_request_duration_seconds",
				Help:    "Duration of hosted model calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"operation"},
		),
		UsageUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bruce_usage_updates_total",
				Help: "Background usage record updates by outcome",
			},
			[]string{"outcome"},
		),
		PromptFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bruce_prompt_fetches_total",
				Help: "Remote prompt override fetches by outcome",
			},
			[]string{"outcome"},
		),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bruce_http_panics_total",
			Help: "Handler panics recovered by the HTTP server",
		}),
	}

	reg.MustRegister(m.ModelRequests, m.ModelTokens, m.ModelDuration, m.UsageUpdates, m.PromptFetches, m.Panics)
	return m
}

// ObserveModelCall records one model round trip.
func (m *Metrics) ObserveModelCall(operation string, elapsed time.Duration, inputTokens, outputTokens int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ModelRequests.WithLabelValues(operation, status).Inc()
	m.ModelDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err == nil {
		m.ModelTokens.WithLabelValues(operation, "input").Add(float64(inputTokens))
		m.ModelTokens.WithLabelValues(operation, "output").Add(float64(outputTokens))
	}
}

// UsageUpdate counts one background update outcome.
func (m *Metrics) UsageUpdate(outcome string) {
	if m == nil {
		return
	}
	m.UsageUpdates.WithLabelValues(outcome).Inc()
}

// PromptFetch counts one prompt override fetch outcome.
func (m *Metrics) PromptFetch(outcome string) {
	if m == nil {
		return
	}
	m.PromptFetches.WithLabelValues(outcome).Inc()
}

// RecoveredPanic counts one handler panic.
func (m *Metrics) RecoveredPanic() {
	if m == nil {
		return
	}
	m.Panics.Inc()
}
