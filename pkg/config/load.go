package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Seed defaults-true booleans before unmarshal so an absent key keeps
	// the default while an explicit false wins.
	cfg := Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides of the form POLARIS_SECTION_FIELD
// (e.g. POLARIS_SERVER_LISTEN_ADDRESS). Environment variables always take
// precedence over file values. The result is re-validated after overrides.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Server overrides
	setString("POLARIS_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("POLARIS_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("POLARIS_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("POLARIS_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	setDuration("POLARIS_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	setInt("POLARIS_SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)

	// Storage overrides
	setString("POLARIS_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("POLARIS_STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setString("POLARIS_STORAGE_SQLITE_INCIDENT_PATH", &cfg.Storage.SQLite.IncidentPath)
	setDuration("POLARIS_STORAGE_SQLITE_BUSY_TIMEOUT", &cfg.Storage.SQLite.BusyTimeout)

	// Policy overrides
	setString("POLARIS_POLICY_BUNDLE_DIR", &cfg.Policy.BundleDir)
	setBool("POLARIS_POLICY_WATCH", &cfg.Policy.Watch)
	setDuration("POLARIS_POLICY_WATCH_DEBOUNCE", &cfg.Policy.WatchDebounce)
	setString("POLARIS_POLICY_DEFAULT_EFFECT", &cfg.Policy.DefaultEffect)

	// Lifecycle overrides
	setInt("POLARIS_LIFECYCLE_DEFAULT_CANARY_PCT", &cfg.Lifecycle.DefaultCanaryPct)
	setDuration("POLARIS_LIFECYCLE_SOAK_DURATION", &cfg.Lifecycle.SoakDuration)
	setInt64("POLARIS_LIFECYCLE_GATES_MIN_SAMPLE_SIZE", &cfg.Lifecycle.Gates.MinSampleSize)
	setFloat("POLARIS_LIFECYCLE_GATES_MAX_ERROR_RATE", &cfg.Lifecycle.Gates.MaxErrorRate)
	setFloat("POLARIS_LIFECYCLE_GATES_MAX_DENY_RATE", &cfg.Lifecycle.Gates.MaxDenyRate)
	setFloat("POLARIS_LIFECYCLE_GATES_MAX_COST_INCREASE", &cfg.Lifecycle.Gates.MaxCostIncrease)
	setBool("POLARIS_LIFECYCLE_SCHEDULER_ENABLED", &cfg.Lifecycle.Scheduler.Enabled)
	setString("POLARIS_LIFECYCLE_SCHEDULER_SCHEDULE", &cfg.Lifecycle.Scheduler.Schedule)
	setBool("POLARIS_LIFECYCLE_SCHEDULER_AUTO_PROMOTE", &cfg.Lifecycle.Scheduler.AutoPromote)

	// Simulation overrides
	setFloat("POLARIS_SIMULATION_COST_CEILING", &cfg.Simulation.CostCeiling)
	setInt("POLARIS_SIMULATION_MAX_SYNTHETIC_COUNT", &cfg.Simulation.MaxSyntheticCount)

	// Telemetry overrides
	setString("POLARIS_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("POLARIS_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("POLARIS_TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	setBool("POLARIS_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("POLARIS_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setInt64(key string, dst *int64) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func setFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
