package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for ops audit tracking. A nil *Metrics
// records nothing.
type Metrics struct {
	Tracked             prometheus.Counter
	Dropped             *prometheus.CounterVec
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers the ops audit metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Tracked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demandas_audit_ops_tracked_total",
			Help: "Total number of operational audit events persisted",
		}),
		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demandas_audit_ops_dropped_total",
			Help: "Total number of operational audit events dropped, by reason",
		}, []string{"reason"}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "demandas_audit_ops_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) IncTracked() {
	if m == nil {
		return
	}
	m.Tracked.Inc()
}

func (m *Metrics) IncDropped(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
		return
	}
	m.CircuitBreakerState.Set(0)
}
