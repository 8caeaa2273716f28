// Package metrics exposes Prometheus counters and histograms for generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the generation metrics on a private registry so several
// instances can coexist in one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	ProviderAttempts *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webgen_generation_requests_total",
			Help: "Generation requests by stage and outcome (success or error type)",
		}, []string{"stage", "outcome"}),
		ProviderAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webgen_provider_attempts_total",
			Help: "Provider calls by stage, phase (primary or fallback) and result",
		}, []string{"stage", "phase", "result"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webgen_generation_duration_seconds",
			Help:    "End-to-end generation time per request",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(stage, outcome).Inc()
	m.Duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveAttempt records one provider call.
func (m *Metrics) ObserveAttempt(stage, phase, result string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(stage, phase, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
