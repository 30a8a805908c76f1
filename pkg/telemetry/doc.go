// Package telemetry provides observability for Polaris.
//
// # Components
//
//   - logging: structured slog-based logging (json, text, console)
//   - metrics: Prometheus metrics for decisions, lifecycle transitions,
//     and simulation runs
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.Decision().Record("v2024.06.01", "allow", "rule-7", 40*time.Microsecond)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package telemetry
