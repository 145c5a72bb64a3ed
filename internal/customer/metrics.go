package customer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts workspace operations by outcome.
type Metrics struct {
	ops *prometheus.CounterVec
}

// NewMetrics registers the workspace metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdesk_workspace_ops_total",
				Help: "Workspace operations by name and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(op, outcome).Inc()
}
