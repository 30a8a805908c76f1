package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"polaris-hq/polaris/pkg/config"
)

// LifecycleMetrics tracks bundle lifecycle transitions.
//
// Metrics:
//   - polaris_bundle_activations_total: activations by outcome
//   - polaris_bundle_promotions_total: promotions by outcome
//   - polaris_bundle_rollbacks_total: rollbacks by outcome
//   - polaris_gate_checks_total: gate evaluations by result
//   - polaris_active_canary_pct: current canary traffic percentage
type LifecycleMetrics struct {
	enabled bool

	activationsTotal *prometheus.CounterVec
	promotionsTotal  *prometheus.CounterVec
	rollbacksTotal   *prometheus.CounterVec
	gateChecksTotal  *prometheus.CounterVec
	activeCanaryPct  prometheus.Gauge
}

func newLifecycleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LifecycleMetrics {
	m := &LifecycleMetrics{
		enabled: cfg.Enabled,

		activationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bundle_activations_total",
				Help:      "Total number of bundle activation attempts",
			},
			[]string{"outcome"},
		),
		promotionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bundle_promotions_total",
				Help:      "Total number of bundle promotion attempts",
			},
			[]string{"outcome"},
		),
		rollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bundle_rollbacks_total",
				Help:      "Total number of bundle rollback attempts",
			},
			[]string{"outcome"},
		),
		gateChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "gate_checks_total",
				Help:      "Total number of quality gate evaluations",
			},
			[]string{"result"},
		),
		activeCanaryPct: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "active_canary_pct",
				Help:      "Canary traffic percentage of the in-flight canary bundle, 0 when none",
			},
		),
	}

	if cfg.Enabled {
		registry.MustRegister(
			m.activationsTotal,
			m.promotionsTotal,
			m.rollbacksTotal,
			m.gateChecksTotal,
			m.activeCanaryPct,
		)
	}
	return m
}

// RecordActivation records an activation attempt; outcome is "success" or
// an activation error reason code.
func (m *LifecycleMetrics) RecordActivation(outcome string) {
	if m.enabled {
		m.activationsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordPromotion records a promotion attempt.
func (m *LifecycleMetrics) RecordPromotion(outcome string) {
	if m.enabled {
		m.promotionsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordRollback records a rollback attempt.
func (m *LifecycleMetrics) RecordRollback(outcome string) {
	if m.enabled {
		m.rollbacksTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordGateCheck records a gate evaluation; result is "passed" or "failed".
func (m *LifecycleMetrics) RecordGateCheck(passed bool) {
	if !m.enabled {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.gateChecksTotal.WithLabelValues(result).Inc()
}

// SetActiveCanaryPct publishes the current canary traffic percentage.
func (m *LifecycleMetrics) SetActiveCanaryPct(pct int) {
	if m.enabled {
		m.activeCanaryPct.Set(float64(pct))
	}
}
