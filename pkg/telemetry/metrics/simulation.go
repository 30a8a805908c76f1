package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"polaris-hq/polaris/pkg/config"
)

// SimulationMetrics tracks the what-if simulator.
//
// Metrics:
//   - polaris_simulation_runs_total: runs by kind (simulate, compare)
//   - polaris_simulation_cases_total: cases evaluated
//   - polaris_simulation_duration_seconds: run duration
type SimulationMetrics struct {
	enabled bool

	runsTotal  *prometheus.CounterVec
	casesTotal prometheus.Counter
	duration   prometheus.Histogram
}

func newSimulationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SimulationMetrics {
	m := &SimulationMetrics{
		enabled: cfg.Enabled,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "simulation_runs_total",
				Help:      "Total number of simulation runs",
			},
			[]string{"kind", "outcome"},
		),
		casesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "simulation_cases_total",
				Help:      "Total number of simulated cases",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "simulation_duration_seconds",
				Help:      "Duration of simulation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}

	if cfg.Enabled {
		registry.MustRegister(m.runsTotal, m.casesTotal, m.duration)
	}
	return m
}

// RecordRun records a completed simulation or comparison run.
func (m *SimulationMetrics) RecordRun(kind string, cases int, duration time.Duration, err error) {
	if !m.enabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(kind, outcome).Inc()
	m.casesTotal.Add(float64(cases))
	m.duration.Observe(duration.Seconds())
}
