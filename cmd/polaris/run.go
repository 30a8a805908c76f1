package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
	"polaris-hq/polaris/pkg/cli"
	"polaris-hq/polaris/pkg/config"
	"polaris-hq/polaris/pkg/incident"
	"polaris-hq/polaris/pkg/lifecycle"
	"polaris-hq/polaris/pkg/lifecycle/store"
	"polaris-hq/polaris/pkg/policy"
	"polaris-hq/polaris/pkg/policy/engine"
	"polaris-hq/polaris/pkg/policy/source"
	"polaris-hq/polaris/pkg/server"
	"polaris-hq/polaris/pkg/simulate"
	"polaris-hq/polaris/pkg/telemetry/logging"
	"polaris-hq/polaris/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Polaris control plane",
	Long: `Start the Polaris control plane with the specified configuration.

The server listens on the configured address and serves the decision,
lifecycle, and simulation APIs. When a bundle directory is configured,
draft bundles are ingested at startup and optionally hot-reloaded on
file changes.

Examples:
  # Start with default config
  polaris run

  # Start with custom config
  polaris run --config /etc/polaris/config.yaml

  # Override listen address
  polaris run --listen 0.0.0.0:8080

  # Validate config without starting the server
  polaris run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadRunConfig loads the config file, falling back to the built-in
// defaults when the default config path does not exist. An explicitly
// provided --config path must exist.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return config.DefaultConfig(), nil
		}
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Polaris v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Bundle store
	var bundleStore store.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(store.SQLiteConfig{
			Path:        cfg.Storage.SQLite.Path,
			BusyTimeout: cfg.Storage.SQLite.BusyTimeout,
		})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open bundle store: %w", err))
		}
		defer sqliteStore.Close()
		bundleStore = sqliteStore
	case "memory":
		bundleStore = store.NewMemoryStore()
	default:
		return cli.NewConfigError("storage.backend", fmt.Sprintf("unsupported backend: %s", cfg.Storage.Backend))
	}

	// Incident store shares the backend choice with the bundle store.
	var incidentStore incident.Store
	if cfg.Storage.Backend == "sqlite" {
		sqliteIncidents, err := incident.NewSQLiteStore(cfg.Storage.SQLite.IncidentPath)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open incident store: %w", err))
		}
		defer sqliteIncidents.Close()
		incidentStore = sqliteIncidents
	} else {
		incidentStore = incident.NewMemoryStore()
	}
	fmt.Printf("✓ Storage initialized (%s)\n", cfg.Storage.Backend)

	// Decision engine
	engineConfig := engine.DefaultConfig()
	if cfg.Policy.DefaultEffect != "" {
		engineConfig.DefaultEffect = policy.Effect(cfg.Policy.DefaultEffect)
	}
	eng, err := engine.New(engineConfig, logger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create decision engine: %w", err))
	}

	// Lifecycle manager
	manager := lifecycle.NewManager(bundleStore, &lifecycle.Config{
		DefaultCanaryPct: cfg.Lifecycle.DefaultCanaryPct,
		SoakDuration:     cfg.Lifecycle.SoakDuration,
		Gates: lifecycle.GateThresholds{
			MinSampleSize:   cfg.Lifecycle.Gates.MinSampleSize,
			MaxErrorRate:    cfg.Lifecycle.Gates.MaxErrorRate,
			MaxDenyRate:     cfg.Lifecycle.Gates.MaxDenyRate,
			MaxCostIncrease: cfg.Lifecycle.Gates.MaxCostIncrease,
		},
	}, logger,
		lifecycle.WithApplier(eng),
		lifecycle.WithIncidentStore(incidentStore),
	)

	// Reapply the persisted active bundle, if any, so decisions survive
	// a restart.
	if active, err := bundleStore.ActiveBundles(ctx); err != nil {
		slog.Warn("failed to load active bundles", "error", err)
	} else if len(active) > 0 {
		if err := eng.Apply(active[0]); err != nil {
			slog.Warn("failed to reapply active bundle", "version", active[0].Version, "error", err)
		} else {
			fmt.Printf("✓ Active bundle restored (%s at %d%%)\n", active[0].Version, active[0].CanaryPct)
		}
	}

	recorder := lifecycle.NewRecorder()

	// Bundle directory ingestion
	if cfg.Policy.BundleDir != "" {
		src := source.NewFileSource(cfg.Policy.BundleDir, logger)
		ingestor := source.NewIngestor(src, bundleStore, logger)
		if n, err := ingestor.Sync(ctx); err != nil {
			slog.Warn("initial bundle ingestion failed", "error", err)
		} else {
			fmt.Printf("✓ Bundle directory ingested (%d new drafts)\n", n)
		}

		if cfg.Policy.Watch {
			watcherConfig := source.DefaultWatcherConfig(cfg.Policy.BundleDir)
			if cfg.Policy.WatchDebounce > 0 {
				watcherConfig.DebounceInterval = cfg.Policy.WatchDebounce
			}
			watcher, err := source.NewWatcher(watcherConfig, logger)
			if err != nil {
				return cli.NewCommandError("run", fmt.Errorf("failed to create bundle watcher: %w", err))
			}
			go func() {
				if err := watcher.Watch(ctx, func() error {
					_, err := ingestor.Sync(ctx)
					return err
				}); err != nil {
					slog.Error("bundle watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
			fmt.Println("✓ Bundle watcher started")
		}
	}

	// Metrics
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Gate scheduler
	if cfg.Lifecycle.Scheduler.Enabled {
		scheduler := lifecycle.NewScheduler(manager, recorder, lifecycle.SchedulerConfig{
			Enabled:     cfg.Lifecycle.Scheduler.Enabled,
			Schedule:    cfg.Lifecycle.Scheduler.Schedule,
			AutoPromote: cfg.Lifecycle.Scheduler.AutoPromote,
		})
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to start gate scheduler: %w", err))
		}
		defer scheduler.Stop()
		fmt.Printf("✓ Gate scheduler started (%s)\n", cfg.Lifecycle.Scheduler.Schedule)
	}

	// HTTP server
	srv, err := server.New(cfg, server.Dependencies{
		Engine:    eng,
		Manager:   manager,
		Simulator: simulate.New(logger, simulate.WithCostCeiling(cfg.Simulation.CostCeiling)),
		Recorder:  recorder,
		Metrics:   collector,
	}, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal, context cancellation, or a
	// listener error.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}
