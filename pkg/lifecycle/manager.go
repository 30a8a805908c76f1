package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"polaris-hq/polaris/pkg/incident"
	"polaris-hq/polaris/pkg/lifecycle/store"
	"polaris-hq/polaris/pkg/policy"
)

// DefaultCanaryPct is the initial canary percentage when an activation
// request does not specify one.
const DefaultCanaryPct = 10

// DefaultSoakDuration is the minimum time an active canary must soak before
// it is reported promotion-eligible. The manager never blocks a
// human-triggered Promote on the soak; Status only reports eligibility.
const DefaultSoakDuration = 24 * time.Hour

// BundleApplier receives the bundle that should serve live traffic after a
// successful lifecycle transition. The decision engine implements it.
type BundleApplier interface {
	Apply(bundle *policy.PolicyBundle) error
}

// Config configures the lifecycle manager.
type Config struct {
	// DefaultCanaryPct is the activation default. Default 10.
	DefaultCanaryPct int `yaml:"default_canary_pct"`

	// SoakDuration is the minimum canary soak before promotion
	// eligibility. Default 24h.
	SoakDuration time.Duration `yaml:"soak_duration"`

	// Gates holds the quality-gate thresholds.
	Gates GateThresholds `yaml:"gates"`
}

// DefaultConfig returns the default lifecycle configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultCanaryPct: DefaultCanaryPct,
		SoakDuration:     DefaultSoakDuration,
		Gates:            DefaultGateThresholds(),
	}
}

// Manager owns bundle lifecycle transitions. All mutating operations run
// under a single mutex plus an atomic store update, so concurrent
// activate/promote/rollback calls serialize and the single-active invariant
// holds at every observable point.
type Manager struct {
	store     store.Store
	incidents incident.Store
	applier   BundleApplier
	config    *Config
	logger    *slog.Logger

	// mu serializes lifecycle transitions.
	mu sync.Mutex

	// now is the clock, swappable in tests.
	now func() time.Time
}

// Option configures optional manager collaborators.
type Option func(*Manager)

// WithIncidentStore wires the incident store used by rollback.
func WithIncidentStore(s incident.Store) Option {
	return func(m *Manager) { m.incidents = s }
}

// WithApplier wires the live-traffic bundle applier (the decision engine).
func WithApplier(a BundleApplier) Option {
	return func(m *Manager) { m.applier = a }
}

// WithClock overrides the manager clock. Tests use it to control soak-time
// eligibility.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a lifecycle manager over the given bundle store.
func NewManager(s store.Store, config *Config, logger *slog.Logger, opts ...Option) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:  s,
		config: config,
		logger: logger.With("component", "lifecycle.manager"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ActivateRequest carries the parameters of an Activate call.
type ActivateRequest struct {
	BundleID    string `json:"bundle_id"`
	ApprovalID  string `json:"approval_id"`
	ActivatedBy string `json:"activated_by"`

	// CanaryPct defaults to the configured activation default when zero.
	CanaryPct int `json:"canary_pct"`
}

// Activate makes the target bundle the active one behind a canary
// percentage, deactivating whichever bundle was previously active. It fails
// with a typed ActivationError when the approval id is missing or the
// bundle does not resolve.
func (m *Manager) Activate(ctx context.Context, req ActivateRequest) (*policy.PolicyBundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.ApprovalID == "" {
		return nil, approvalRequiredErr(req.BundleID)
	}

	canaryPct := req.CanaryPct
	if canaryPct == 0 {
		canaryPct = m.config.DefaultCanaryPct
	}
	if canaryPct < 1 || canaryPct > 100 {
		return nil, invalidPercentageErr(req.BundleID, canaryPct)
	}

	target, err := m.store.Get(ctx, req.BundleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bundleNotFoundErr(req.BundleID)
		}
		return nil, fmt.Errorf("failed to load bundle %q: %w", req.BundleID, err)
	}

	active, err := m.store.ActiveBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bundles: %w", err)
	}

	updates := make([]*policy.PolicyBundle, 0, len(active)+1)
	for _, prev := range active {
		if prev.ID == target.ID {
			continue
		}
		prev.Active = false
		prev.CanaryPct = 0
		updates = append(updates, prev)
	}

	target.Active = true
	target.CanaryPct = canaryPct
	target.ApprovalID = req.ApprovalID
	target.ActivatedBy = req.ActivatedBy
	target.ActivatedAt = m.now().UTC()
	updates = append(updates, target)

	if err := m.store.UpdateAll(ctx, updates...); err != nil {
		return nil, fmt.Errorf("failed to persist activation: %w", err)
	}

	m.logger.Info("bundle activated",
		"version", target.Version,
		"canary_pct", canaryPct,
		"approval_id", req.ApprovalID,
		"activated_by", req.ActivatedBy,
	)

	m.applyToEngine(target)
	return target, nil
}

// CheckGates evaluates the quality gates for the target bundle against a
// metrics snapshot. The result is a normal pass/fail value; only resolution
// failures return an error.
func (m *Manager) CheckGates(ctx context.Context, bundleID string, metrics GateMetrics) (*GateResult, error) {
	if _, err := m.store.Get(ctx, bundleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bundleNotFoundErr(bundleID)
		}
		return nil, fmt.Errorf("failed to load bundle %q: %w", bundleID, err)
	}

	result := EvaluateGates(metrics, m.config.Gates)
	if !result.Passed {
		m.logger.Warn("quality gates failed",
			"bundle_id", bundleID,
			"failures", result.Failures,
		)
	}
	return &result, nil
}

// Promote raises (or lowers) the canary percentage of an active bundle.
// Promotion to 100 marks the bundle fully promoted.
func (m *Manager) Promote(ctx context.Context, bundleID string, targetPct int) (*policy.PolicyBundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bundle, err := m.store.Get(ctx, bundleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bundleNotFoundErr(bundleID)
		}
		return nil, fmt.Errorf("failed to load bundle %q: %w", bundleID, err)
	}

	if !bundle.Active {
		return nil, notActiveErr(bundleID, "cannot promote: bundle is not active")
	}
	if targetPct == bundle.CanaryPct {
		return nil, alreadyAtTargetErr(bundleID, targetPct)
	}
	if targetPct < 1 || targetPct > 100 {
		return nil, invalidPercentageErr(bundleID, targetPct)
	}

	bundle.CanaryPct = targetPct
	if err := m.store.UpdateAll(ctx, bundle); err != nil {
		return nil, fmt.Errorf("failed to persist promotion: %w", err)
	}

	m.logger.Info("bundle promoted",
		"version", bundle.Version,
		"canary_pct", targetPct,
		"fully_promoted", bundle.FullyPromoted(),
	)
	return bundle, nil
}

// RollbackRequest carries the parameters of a Rollback call.
type RollbackRequest struct {
	BundleID       string `json:"bundle_id"`
	Reason         string `json:"reason"`
	RolledBackBy   string `json:"rolled_back_by"`
	CreateIncident bool   `json:"create_incident"`
}

// RollbackResult reports the outcome of a rollback.
type RollbackResult struct {
	// Version is the reinstated bundle's version.
	Version string `json:"version"`

	// RolledBackFrom is the deactivated bundle's version.
	RolledBackFrom string `json:"rolled_back_from"`

	// IncidentCreated is true when an incident record was emitted.
	IncidentCreated bool `json:"incident_created"`
}

// Rollback deactivates the currently active target bundle and reinstates
// the bundle that was active before it at 100% traffic, stamping rollback
// provenance into the reinstated bundle's metadata. When requested, it also
// emits a high-severity incident.
func (m *Manager) Rollback(ctx context.Context, req RollbackRequest) (*RollbackResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.Get(ctx, req.BundleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bundleNotFoundErr(req.BundleID)
		}
		return nil, fmt.Errorf("failed to load bundle %q: %w", req.BundleID, err)
	}

	if !current.Active {
		return nil, notActiveErr(req.BundleID, "cannot roll back: bundle is not currently active")
	}

	previous, err := m.store.LastActivatedBefore(ctx, current.ActivatedAt, current.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, noPreviousVersionErr(req.BundleID)
		}
		return nil, fmt.Errorf("failed to find previous bundle: %w", err)
	}

	previous.Active = true
	previous.CanaryPct = 100
	if previous.Metadata == nil {
		previous.Metadata = make(map[string]interface{})
	}
	previous.Metadata[policy.MetadataRollbackKey] = map[string]interface{}{
		"from_version": current.Version,
		"reason":       req.Reason,
		"timestamp":    m.now().UTC().Format(time.RFC3339),
	}

	current.Active = false
	current.CanaryPct = 0

	if err := m.store.UpdateAll(ctx, current, previous); err != nil {
		return nil, fmt.Errorf("failed to persist rollback: %w", err)
	}

	result := &RollbackResult{
		Version:        previous.Version,
		RolledBackFrom: current.Version,
	}

	if req.CreateIncident && m.incidents != nil {
		inc := &incident.Incident{
			Agent:    "policy.activate",
			Action:   "rollback",
			Severity: incident.SeverityHigh,
			Title:    fmt.Sprintf("Policy bundle rollback: %s -> %s", current.Version, previous.Version),
			Context: map[string]interface{}{
				"from_version":   current.Version,
				"to_version":     previous.Version,
				"reason":         req.Reason,
				"rolled_back_by": req.RolledBackBy,
			},
		}
		if err := m.incidents.Create(ctx, inc); err != nil {
			// The rollback itself committed; report the incident failure
			// without undoing it.
			m.logger.Error("failed to record rollback incident", "error", err)
		} else {
			result.IncidentCreated = true
		}
	}

	m.logger.Warn("bundle rolled back",
		"from_version", current.Version,
		"to_version", previous.Version,
		"reason", req.Reason,
		"rolled_back_by", req.RolledBackBy,
	)

	m.applyToEngine(previous)
	return result, nil
}

// CanaryStatus is the derived rollout view of a bundle.
type CanaryStatus struct {
	BundleID  string `json:"bundle_id"`
	Version   string `json:"version"`
	Active    bool   `json:"active"`
	CanaryPct int    `json:"canary_pct"`

	// FullyPromoted is true at 100% canary.
	FullyPromoted bool `json:"fully_promoted"`

	// PromotionEligible is advisory: active, below 100%, and soaked for
	// at least the configured minimum. It never blocks a human-triggered
	// promote.
	PromotionEligible bool `json:"promotion_eligible"`

	// SoakRemaining is how much soak time is left before eligibility,
	// zero once eligible.
	SoakRemaining time.Duration `json:"soak_remaining"`

	ActivatedAt time.Time `json:"activated_at,omitzero"`
	ActivatedBy string    `json:"activated_by,omitempty"`
}

// Status returns the derived canary view of a bundle.
func (m *Manager) Status(ctx context.Context, bundleID string) (*CanaryStatus, error) {
	bundle, err := m.store.Get(ctx, bundleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bundleNotFoundErr(bundleID)
		}
		return nil, fmt.Errorf("failed to load bundle %q: %w", bundleID, err)
	}

	status := &CanaryStatus{
		BundleID:      bundle.ID,
		Version:       bundle.Version,
		Active:        bundle.Active,
		CanaryPct:     bundle.CanaryPct,
		FullyPromoted: bundle.FullyPromoted(),
		ActivatedAt:   bundle.ActivatedAt,
		ActivatedBy:   bundle.ActivatedBy,
	}

	if bundle.Active && bundle.CanaryPct < 100 && bundle.WasActivated() {
		soaked := m.now().Sub(bundle.ActivatedAt)
		if soaked >= m.config.SoakDuration {
			status.PromotionEligible = true
		} else {
			status.SoakRemaining = m.config.SoakDuration - soaked
		}
	}

	return status, nil
}

// ActiveCanary returns the in-flight canary (active with CanaryPct < 100),
// or nil when none exists. The gate scheduler uses it to find its target.
func (m *Manager) ActiveCanary(ctx context.Context) (*policy.PolicyBundle, error) {
	active, err := m.store.ActiveBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bundles: %w", err)
	}
	for _, bundle := range active {
		if bundle.CanaryPct < 100 {
			return bundle, nil
		}
	}
	return nil, nil
}

// Store exposes the underlying bundle store for read paths (listing, the
// HTTP surface).
func (m *Manager) Store() store.Store {
	return m.store
}

// applyToEngine pushes a bundle to the live decision engine, if wired.
func (m *Manager) applyToEngine(bundle *policy.PolicyBundle) {
	if m.applier == nil {
		return
	}
	if err := m.applier.Apply(bundle); err != nil {
		m.logger.Error("failed to apply bundle to decision engine",
			"version", bundle.Version,
			"error", err,
		)
	}
}
