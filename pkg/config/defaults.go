package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Storage defaults
	DefaultStorageBackend    = "sqlite"
	DefaultSQLitePath        = "data/polaris.db"
	DefaultIncidentPath      = "data/incidents.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Policy defaults
	DefaultBundleDir     = "./bundles"
	DefaultWatch         = false
	DefaultWatchDebounce = 100 * time.Millisecond
	DefaultDefaultEffect = "allow"

	// Lifecycle defaults
	DefaultCanaryPct    = 10
	DefaultSoakDuration = 24 * time.Hour

	// Gate defaults
	DefaultMinSampleSize   = int64(100)
	DefaultMaxErrorRate    = 0.05
	DefaultMaxDenyRate     = 0.30
	DefaultMaxCostIncrease = 0.20

	// Scheduler defaults
	DefaultSchedulerEnabled  = false
	DefaultSchedulerSchedule = "@every 5m"
	DefaultAutoPromote       = false

	// Simulation defaults
	DefaultSimCostCeiling    = 1000.0
	DefaultMaxSyntheticCount = 10000

	// Telemetry defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// ApplyDefaults fills in default values for any unset fields. Booleans that
// default to true are handled by the loader seeding them before unmarshal.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.IncidentPath == "" {
		cfg.Storage.SQLite.IncidentPath = DefaultIncidentPath
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	if cfg.Policy.BundleDir == "" {
		cfg.Policy.BundleDir = DefaultBundleDir
	}
	if cfg.Policy.WatchDebounce == 0 {
		cfg.Policy.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.Policy.DefaultEffect == "" {
		cfg.Policy.DefaultEffect = DefaultDefaultEffect
	}

	if cfg.Lifecycle.DefaultCanaryPct == 0 {
		cfg.Lifecycle.DefaultCanaryPct = DefaultCanaryPct
	}
	if cfg.Lifecycle.SoakDuration == 0 {
		cfg.Lifecycle.SoakDuration = DefaultSoakDuration
	}
	if cfg.Lifecycle.Gates.MinSampleSize == 0 {
		cfg.Lifecycle.Gates.MinSampleSize = DefaultMinSampleSize
	}
	if cfg.Lifecycle.Gates.MaxErrorRate == 0 {
		cfg.Lifecycle.Gates.MaxErrorRate = DefaultMaxErrorRate
	}
	if cfg.Lifecycle.Gates.MaxDenyRate == 0 {
		cfg.Lifecycle.Gates.MaxDenyRate = DefaultMaxDenyRate
	}
	if cfg.Lifecycle.Gates.MaxCostIncrease == 0 {
		cfg.Lifecycle.Gates.MaxCostIncrease = DefaultMaxCostIncrease
	}
	if cfg.Lifecycle.Scheduler.Schedule == "" {
		cfg.Lifecycle.Scheduler.Schedule = DefaultSchedulerSchedule
	}

	if cfg.Simulation.CostCeiling == 0 {
		cfg.Simulation.CostCeiling = DefaultSimCostCeiling
	}
	if cfg.Simulation.MaxSyntheticCount == 0 {
		cfg.Simulation.MaxSyntheticCount = DefaultMaxSyntheticCount
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a configuration populated entirely from defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
