package sheet

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts sheet operations and their failures by operation name.
type Metrics struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics creates and registers the operation counters. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetapi_operations_total",
			Help: "Sheet CRUD operations by name.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetapi_operation_failures_total",
			Help: "Failed sheet CRUD operations by name.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.ops, m.failures)
	return m
}

// observe records one operation outcome. Nil-safe so the service can run
// without metrics wired (tests, export CLI).
func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}
