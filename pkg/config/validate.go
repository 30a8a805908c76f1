package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation failure in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every failing field, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateLifecycle(&cfg.Lifecycle)...)
	errs = append(errs, validateSimulation(&cfg.Simulation)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must not be negative",
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("unknown backend %q, must be \"sqlite\" or \"memory\"", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "storage.sqlite.path",
			Message: "path is required for the sqlite backend",
		})
	}

	return errs
}

func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	if cfg.BundleDir == "" {
		errs = append(errs, FieldError{
			Field:   "policy.bundle_dir",
			Message: "bundle directory is required",
		})
	}
	switch cfg.DefaultEffect {
	case "allow", "deny":
	default:
		errs = append(errs, FieldError{
			Field:   "policy.default_effect",
			Message: fmt.Sprintf("unknown effect %q, must be \"allow\" or \"deny\"", cfg.DefaultEffect),
		})
	}

	return errs
}

func validateLifecycle(cfg *LifecycleConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultCanaryPct < 1 || cfg.DefaultCanaryPct > 100 {
		errs = append(errs, FieldError{
			Field:   "lifecycle.default_canary_pct",
			Message: "must be between 1 and 100",
		})
	}
	if cfg.SoakDuration < 0 {
		errs = append(errs, FieldError{
			Field:   "lifecycle.soak_duration",
			Message: "must not be negative",
		})
	}
	if cfg.Gates.MinSampleSize < 1 {
		errs = append(errs, FieldError{
			Field:   "lifecycle.gates.min_sample_size",
			Message: "must be at least 1",
		})
	}
	for _, rate := range []struct {
		field string
		value float64
	}{
		{"lifecycle.gates.max_error_rate", cfg.Gates.MaxErrorRate},
		{"lifecycle.gates.max_deny_rate", cfg.Gates.MaxDenyRate},
		{"lifecycle.gates.max_cost_increase", cfg.Gates.MaxCostIncrease},
	} {
		if rate.value <= 0 || rate.value > 1 {
			errs = append(errs, FieldError{
				Field:   rate.field,
				Message: "must be between 0 and 1",
			})
		}
	}
	if cfg.Scheduler.Enabled {
		if _, err := cron.ParseStandard(cfg.Scheduler.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "lifecycle.scheduler.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateSimulation(cfg *SimulationConfig) []FieldError {
	var errs []FieldError

	if cfg.CostCeiling <= 0 {
		errs = append(errs, FieldError{
			Field:   "simulation.cost_ceiling",
			Message: "must be positive",
		})
	}
	if cfg.MaxSyntheticCount < 1 {
		errs = append(errs, FieldError{
			Field:   "simulation.max_synthetic_count",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q, must be debug, info, warn, or error", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q, must be json, text, or console", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path is required when metrics are enabled",
		})
	}

	return errs
}
