package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig configures the periodic gate evaluation.
type SchedulerConfig struct {
	// Enabled turns the scheduler on.
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression, e.g. "*/15 * * * *" for every 15
	// minutes. Empty disables the scheduler.
	Schedule string `yaml:"schedule"`

	// AutoPromote promotes a canary to 100% when its gates pass and the
	// soak time has elapsed. Off by default; most deployments keep
	// promotion a human decision.
	AutoPromote bool `yaml:"auto_promote"`
}

// Scheduler drives periodic quality-gate re-evaluation for the in-flight
// canary on a cron cadence. It is the control-plane's "external scheduler":
// the lifecycle manager itself owns no background work.
type Scheduler struct {
	manager *Manager
	source  MetricsSource
	config  SchedulerConfig
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool

	// lastResult is the most recent gate outcome, for the status surface.
	lastResult *GateResult
}

// NewScheduler creates a gate scheduler.
func NewScheduler(manager *Manager, source MetricsSource, config SchedulerConfig) *Scheduler {
	return &Scheduler{
		manager: manager,
		source:  source,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "lifecycle.scheduler"),
	}
}

// Start begins scheduled gate evaluation. It is a no-op when the scheduler
// is disabled or no schedule is configured.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || s.config.Schedule == "" {
		s.logger.Info("gate scheduler not configured, skipping")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.evaluate(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid gate schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("gate scheduler started",
		"schedule", s.config.Schedule,
		"auto_promote", s.config.AutoPromote,
	)
	return nil
}

// Stop halts scheduled evaluation, waiting for a running evaluation to
// finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("gate scheduler stopped")
}

// LastResult returns the most recent gate outcome, or nil before the first
// evaluation.
func (s *Scheduler) LastResult() *GateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// evaluate runs one gate check against the current canary.
func (s *Scheduler) evaluate(ctx context.Context) {
	canary, err := s.manager.ActiveCanary(ctx)
	if err != nil {
		s.logger.Error("failed to find active canary", "error", err)
		return
	}
	if canary == nil {
		return
	}

	metrics, err := s.source.Snapshot(ctx, canary.Version)
	if err != nil {
		s.logger.Error("failed to snapshot canary metrics",
			"version", canary.Version,
			"error", err,
		)
		return
	}

	result, err := s.manager.CheckGates(ctx, canary.ID, metrics)
	if err != nil {
		s.logger.Error("gate check failed",
			"version", canary.Version,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	s.logger.Info("canary gates evaluated",
		"version", canary.Version,
		"passed", result.Passed,
		"failures", result.Failures,
	)

	if !result.Passed || !s.config.AutoPromote {
		return
	}

	status, err := s.manager.Status(ctx, canary.ID)
	if err != nil || !status.PromotionEligible {
		return
	}

	if _, err := s.manager.Promote(ctx, canary.ID, 100); err != nil {
		s.logger.Error("auto-promotion failed",
			"version", canary.Version,
			"error", err,
		)
		return
	}
	s.logger.Info("canary auto-promoted to 100%", "version", canary.Version)
}
