package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"polaris-hq/polaris/pkg/policy"
)

// ApprovalEligibleKey is the context key consulted on deny decisions to
// decide whether the caller may escalate for human approval. Absent the
// key, denials default to approval-eligible.
const ApprovalEligibleKey = "approval_eligible"

// ConditionMatcher evaluates a rule's conditions against a request context.
// Implementations define the condition-key DSL; see LiveMatcher and
// SimMatcher.
type ConditionMatcher interface {
	// Matches reports whether every condition of the rule is satisfied by
	// the context. Errors are configuration errors (for example an unknown
	// operator), never ordinary non-matches.
	Matches(rule *policy.PolicyRule, context map[string]interface{}) (bool, error)

	// ValidateRule checks that the rule's condition keys are well formed
	// for this matcher's DSL.
	ValidateRule(rule *policy.PolicyRule) error
}

// Config contains decision-engine configuration.
type Config struct {
	// DefaultEffect is the effect applied when no rule matches. The
	// shipped default is fail-open allow (policy.DefaultAllowReason);
	// deployments that want fail-closed flip this to deny in config
	// rather than patching control flow.
	DefaultEffect policy.Effect
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultEffect: policy.EffectAllow,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.DefaultEffect {
	case policy.EffectAllow, policy.EffectDeny:
		return nil
	default:
		return fmt.Errorf("invalid default effect: %q", c.DefaultEffect)
	}
}

// Engine evaluates agent actions against the active bundle's rules.
//
// The rule snapshot is replaced atomically on activation and never mutated
// in place, so Decide takes no locks beyond the snapshot read.
type Engine struct {
	// snapshot is the active, priority-sorted rule list.
	snapshot []*policy.PolicyRule

	// version is the active bundle version, for logging and metrics.
	version string

	// mu guards snapshot swaps; Decide only takes the read side.
	mu sync.RWMutex

	matcher ConditionMatcher
	config  *Config
	logger  *slog.Logger
}

// New creates a decision engine with the live condition matcher.
func New(config *Config, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		matcher: NewLiveMatcher(),
		config:  config,
		logger:  logger.With("component", "policy.engine"),
	}, nil
}

// Apply installs a bundle's rules as the active snapshot. The rules are
// copied and sorted by priority descending with a stable sort, so authoring
// order is the final tie-break. Apply validates the rules first; an invalid
// bundle leaves the previous snapshot in place.
func (e *Engine) Apply(bundle *policy.PolicyBundle) error {
	if bundle == nil {
		return fmt.Errorf("bundle cannot be nil")
	}
	if err := policy.ValidateRules(bundle.Rules); err != nil {
		return err
	}
	// Live decisions are allow or deny; needs_approval only exists in
	// what-if simulation and must never reach the serving snapshot.
	for _, rule := range bundle.Rules {
		if rule.Effect == policy.EffectNeedsApproval {
			return fmt.Errorf("rule %q: effect %q is simulation-only and cannot be activated",
				rule.ID, rule.Effect)
		}
	}

	sorted := SortByPriority(bundle.Rules)

	e.mu.Lock()
	e.snapshot = sorted
	e.version = bundle.Version
	e.mu.Unlock()

	e.logger.Info("policy snapshot applied",
		"version", bundle.Version,
		"rule_count", len(sorted),
	)
	return nil
}

// ActiveVersion returns the version of the bundle serving the snapshot, or
// the empty string when no bundle has been applied.
func (e *Engine) ActiveVersion() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Decide evaluates one agent action against the active snapshot and returns
// a single decision. It never returns an error for "no match": an empty or
// non-targeting rule set degrades to the configured default decision.
func (e *Engine) Decide(agent, action string, context map[string]interface{}) policy.PolicyDecision {
	e.mu.RLock()
	rules := e.snapshot
	e.mu.RUnlock()

	winner := e.firstMatch(rules, agent, action, context)
	if winner == nil {
		return e.defaultDecision()
	}

	decision := policy.PolicyDecision{
		Effect: winner.Effect,
		Reason: winner.Reason,
		RuleID: winner.ID,
	}
	if winner.Budget != nil {
		decision.CostEstimate = winner.Budget.Cost
	}
	if decision.Effect == policy.EffectDeny {
		decision.RequiresApproval = approvalEligible(context)
	}
	return decision
}

// firstMatch returns the highest-priority enabled rule that targets the
// request and whose conditions all match, or nil. The winner is chosen by
// priority alone, regardless of effect.
func (e *Engine) firstMatch(rules []*policy.PolicyRule, agent, action string, context map[string]interface{}) *policy.PolicyRule {
	for _, rule := range rules {
		if !rule.IsEnabled() || !rule.Targets(agent, action) {
			continue
		}

		matched, err := e.matcher.Matches(rule, context)
		if err != nil {
			// The live DSL has no invalid operators; an error here means
			// a rule slipped past validation. Skip it and say so.
			e.logger.Error("condition evaluation failed, skipping rule",
				"rule_id", rule.ID,
				"error", err,
			)
			continue
		}
		if matched {
			return rule
		}
	}
	return nil
}

// defaultDecision builds the no-match decision from the configured default
// effect.
func (e *Engine) defaultDecision() policy.PolicyDecision {
	reason := policy.DefaultAllowReason
	if e.config.DefaultEffect == policy.EffectDeny {
		reason = policy.DefaultDenyReason
	}
	return policy.PolicyDecision{
		Effect: e.config.DefaultEffect,
		Reason: reason,
	}
}

// approvalEligible reads ApprovalEligibleKey from the context, defaulting
// to true when absent or non-boolean.
func approvalEligible(context map[string]interface{}) bool {
	if v, ok := context[ApprovalEligibleKey]; ok {
		if eligible, ok := v.(bool); ok {
			return eligible
		}
	}
	return true
}
