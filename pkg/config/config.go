package config

import "time"

// Config is the root configuration structure for Polaris. It contains all
// configuration sections for the HTTP API server, bundle storage, the
// decision engine, the canary lifecycle, the simulator, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Storage contains bundle and incident persistence configuration.
	Storage StorageConfig `yaml:"storage"`

	// Policy contains decision-engine and bundle-ingestion configuration.
	Policy PolicyConfig `yaml:"policy"`

	// Lifecycle contains canary rollout configuration: default canary
	// percentage, soak time, quality-gate thresholds, and the periodic
	// gate scheduler.
	Lifecycle LifecycleConfig `yaml:"lifecycle"`

	// Simulation contains what-if simulator configuration.
	Simulation SimulationConfig `yaml:"simulation"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header parsing.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// StorageConfig contains bundle and incident persistence configuration.
type StorageConfig struct {
	// Backend selects the persistence backend.
	// Options: "sqlite", "memory". Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend; ignored for "memory".
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains sqlite backend configuration.
type SQLiteConfig struct {
	// Path is the bundle database file path.
	// Default: "data/polaris.db"
	Path string `yaml:"path"`

	// IncidentPath is the incident database file path.
	// Default: "data/incidents.db"
	IncidentPath string `yaml:"incident_path"`

	// BusyTimeout is the sqlite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PolicyConfig contains decision-engine and bundle-ingestion configuration.
type PolicyConfig struct {
	// BundleDir is the directory scanned for draft bundle YAML files.
	// Default: "./bundles"
	BundleDir string `yaml:"bundle_dir"`

	// Watch enables fsnotify hot-ingestion of new or changed bundle
	// files. Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a reload fires after a
	// burst of file events. Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// DefaultEffect is the decision returned when no rule matches.
	// Options: "allow" (fail-open), "deny" (fail-closed).
	// Default: "allow"
	DefaultEffect string `yaml:"default_effect"`
}

// LifecycleConfig contains canary rollout configuration.
type LifecycleConfig struct {
	// DefaultCanaryPct is the canary percentage applied by activation
	// when the caller does not supply one. Default: 10
	DefaultCanaryPct int `yaml:"default_canary_pct"`

	// SoakDuration is the minimum time a canary must serve traffic
	// before it is reported promotion-eligible. Default: 24h
	SoakDuration time.Duration `yaml:"soak_duration"`

	// Gates contains quality-gate thresholds.
	Gates GatesConfig `yaml:"gates"`

	// Scheduler contains the periodic gate-evaluation scheduler.
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// GatesConfig contains quality-gate threshold configuration.
type GatesConfig struct {
	// MinSampleSize is the minimum decision count before gate results
	// are meaningful. Default: 100
	MinSampleSize int64 `yaml:"min_sample_size"`

	// MaxErrorRate is the error-rate ceiling, 0-1. Default: 0.05
	MaxErrorRate float64 `yaml:"max_error_rate"`

	// MaxDenyRate is the deny-rate ceiling, 0-1. Default: 0.30
	MaxDenyRate float64 `yaml:"max_deny_rate"`

	// MaxCostIncrease is the relative cost-regression ceiling over the
	// baseline, 0-1. Default: 0.20
	MaxCostIncrease float64 `yaml:"max_cost_increase"`
}

// SchedulerConfig contains the periodic gate-check scheduler configuration.
type SchedulerConfig struct {
	// Enabled controls whether the scheduler runs. Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is the cron expression driving gate evaluation.
	// Default: "@every 5m"
	Schedule string `yaml:"schedule"`

	// AutoPromote promotes a canary to 100% when its gates pass and the
	// soak time has elapsed. Default: false
	AutoPromote bool `yaml:"auto_promote"`
}

// SimulationConfig contains what-if simulator configuration.
type SimulationConfig struct {
	// CostCeiling is the governance threshold, in dollars, above which a
	// simulated rule set's estimated cost is flagged. Default: 1000
	CostCeiling float64 `yaml:"cost_ceiling"`

	// MaxSyntheticCount caps caller-requested synthetic batch sizes.
	// Default: 10000
	MaxSyntheticCount int `yaml:"max_synthetic_count"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console". Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether Prometheus metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
