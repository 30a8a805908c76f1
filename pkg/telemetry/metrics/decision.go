package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"polaris-hq/polaris/pkg/config"
)

// DecisionMetrics tracks the decision engine.
//
// Metrics:
//   - polaris_decisions_total: decisions by bundle version and effect
//   - polaris_decision_duration_seconds: evaluation latency
//   - polaris_decision_rule_hits_total: winning-rule frequency
//   - polaris_decisions_default_total: fail-open/closed default decisions
type DecisionMetrics struct {
	enabled bool

	decisionsTotal *prometheus.CounterVec
	duration       prometheus.Histogram
	ruleHitsTotal  *prometheus.CounterVec
	defaultTotal   *prometheus.CounterVec
}

func newDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	m := &DecisionMetrics{
		enabled: cfg.Enabled,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "decisions_total",
				Help:      "Total number of policy decisions",
			},
			[]string{"bundle_version", "effect"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "decision_duration_seconds",
				Help:      "Duration of decision evaluation in seconds",
				// Decisions are in-memory rule scans; sub-millisecond.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 12),
			},
		),
		ruleHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "decision_rule_hits_total",
				Help:      "Total number of decisions won by each rule",
			},
			[]string{"rule_id"},
		),
		defaultTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "decisions_default_total",
				Help:      "Total number of decisions that fell through to the default effect",
			},
			[]string{"effect"},
		),
	}

	if cfg.Enabled {
		registry.MustRegister(m.decisionsTotal, m.duration, m.ruleHitsTotal, m.defaultTotal)
	}
	return m
}

// Record records a served decision. An empty ruleID marks a default
// decision (no rule matched).
func (m *DecisionMetrics) Record(bundleVersion, effect, ruleID string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.decisionsTotal.WithLabelValues(bundleVersion, effect).Inc()
	m.duration.Observe(duration.Seconds())
	if ruleID == "" {
		m.defaultTotal.WithLabelValues(effect).Inc()
		return
	}
	m.ruleHitsTotal.WithLabelValues(ruleID).Inc()
}
