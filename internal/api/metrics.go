package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records outbound request outcomes for the /metrics endpoint.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	breakerState    prometheus.Gauge
	unauthorized    prometheus.Counter
}

// NewMetrics registers the client metrics with the given registerer. Tests
// pass a private registry to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdesk_api_requests_total",
				Help: "Total number of requests issued to the banking API",
			},
			[]string{"operation", "status"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bankdesk_api_request_duration_milliseconds",
				Help:    "Banking API request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		breakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bankdesk_api_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
		unauthorized: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bankdesk_api_unauthorized_total",
				Help: "Total number of 401 responses observed (each forces a logout)",
			},
		),
	}
}

func (m *Metrics) observe(operation, status string, start time.Time, breaker BreakerState) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.Observe(float64(time.Since(start).Milliseconds()))
	m.breakerState.Set(float64(breaker))
	if status == "401" {
		m.unauthorized.Inc()
	}
}
