package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"polaris-hq/polaris/pkg/config"
)

// Namespace is the Prometheus namespace for all Polaris metrics.
const Namespace = "polaris"

// Collector owns the Prometheus registry and all metric groups. A disabled
// collector still hands out metric groups; their record methods are no-ops.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	decision   *DecisionMetrics
	lifecycle  *LifecycleMetrics
	simulation *SimulationMetrics
}

// NewCollector creates a collector with the given configuration. If
// registry is nil a fresh registry is used, keeping Polaris metrics
// isolated from anything else registered in the process.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true, Path: config.DefaultMetricsPath}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.decision = newDecisionMetrics(cfg, registry)
	c.lifecycle = newLifecycleMetrics(cfg, registry)
	c.simulation = newSimulationMetrics(cfg, registry)
	return c
}

// Decision returns the decision metric group.
func (c *Collector) Decision() *DecisionMetrics {
	return c.decision
}

// Lifecycle returns the lifecycle metric group.
func (c *Collector) Lifecycle() *LifecycleMetrics {
	return c.lifecycle
}

// Simulation returns the simulation metric group.
func (c *Collector) Simulation() *SimulationMetrics {
	return c.simulation
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
