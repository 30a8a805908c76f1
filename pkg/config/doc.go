// Package config provides configuration management for Polaris.
//
// Configuration is loaded from a YAML file, merged over defaults, and
// optionally overridden by environment variables before validation:
//
//	cfg, err := config.LoadConfig("config.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention POLARIS_SECTION_FIELD
// and always take precedence over file values. For example:
//
//   - POLARIS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - POLARIS_STORAGE_BACKEND overrides storage.backend
//   - POLARIS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Precedence
//
// Values are applied in order, later overriding earlier:
//
//  1. Defaults (defaults.go)
//  2. YAML file
//  3. Environment variables
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every failure rather than stopping at the first, and
// reports dotted field paths:
//
//	configuration validation failed with 2 errors:
//	  - server.listen_address: listen address is required
//	  - lifecycle.gates.max_error_rate: must be between 0 and 1
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/polaris.db"
//
//	policy:
//	  bundle_dir: "./bundles"
//	  watch: true
//
//	lifecycle:
//	  default_canary_pct: 10
//	  scheduler:
//	    enabled: true
//	    schedule: "@every 5m"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
