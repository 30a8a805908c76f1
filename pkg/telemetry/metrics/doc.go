// Package metrics provides Prometheus metrics for Polaris.
//
// A Collector owns a registry and three metric groups:
//
//   - decision: per-decision counters and evaluation latency
//   - lifecycle: bundle activations, promotions, rollbacks, gate results
//   - simulation: simulation/comparison runs and case throughput
//
// All metrics live under the "polaris" namespace. The Collector's Handler
// serves the standard Prometheus exposition endpoint.
package metrics
