package policy

// Wildcard matches any agent or action when used in a rule's Agent or
// Action field.
const Wildcard = "*"

// Effect is the outcome a rule produces when it matches.
type Effect string

const (
	// EffectAllow permits the action.
	EffectAllow Effect = "allow"

	// EffectDeny blocks the action. Depending on the request context a
	// denied action may still be escalated for human approval (see
	// PolicyDecision.RequiresApproval).
	EffectDeny Effect = "deny"

	// EffectNeedsApproval blocks the action pending human approval.
	// Only the simulation condition DSL accepts this effect; the live
	// engine expresses approval via deny + RequiresApproval.
	EffectNeedsApproval Effect = "needs_approval"
)

// PolicyRule is a single authorization rule.
//
// Within one bundle rule IDs are unique. Priorities need not be: ties are
// broken by authoring order because evaluation uses a stable sort, and the
// first matching rule wins. That ordering contract is load-bearing and is
// covered by tests in pkg/policy/engine.
type PolicyRule struct {
	// ID uniquely identifies the rule within its bundle.
	ID string `yaml:"id" json:"id"`

	// Agent is the agent name this rule targets, or "*" for any agent.
	Agent string `yaml:"agent" json:"agent"`

	// Action is the action name this rule targets, or "*" for any action.
	Action string `yaml:"action" json:"action"`

	// Conditions narrows the rule to requests whose context satisfies
	// every entry. The key format depends on the matcher: the live engine
	// uses plain context keys, the simulator prefixes each key with a
	// comparison operator (">=risk_score"). An empty map matches every
	// request for the rule's agent/action pair.
	Conditions map[string]interface{} `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	// Effect is the outcome when the rule matches.
	Effect Effect `yaml:"effect" json:"effect"`

	// Reason is free text surfaced to callers and auditors.
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`

	// Priority orders evaluation; higher priorities are evaluated first.
	Priority int `yaml:"priority" json:"priority"`

	// Enabled defaults to true when omitted. Disabled rules are skipped.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Budget is the estimated resource cost incurred when this rule
	// matches a case. Only the simulation engine consumes it.
	Budget *RuleBudget `yaml:"budget,omitempty" json:"budget,omitempty"`
}

// RuleBudget estimates the resources a matching case consumes.
type RuleBudget struct {
	// Cost is the estimated monetary cost in dollars.
	Cost float64 `yaml:"cost" json:"cost"`

	// Compute is the estimated compute units.
	Compute float64 `yaml:"compute" json:"compute"`

	// Risk is a unitless risk weight.
	Risk float64 `yaml:"risk" json:"risk"`
}

// IsEnabled reports whether the rule participates in evaluation.
// A nil Enabled field counts as enabled.
func (r *PolicyRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Targets reports whether the rule applies to the given agent/action pair,
// honoring wildcards. A concrete agent or action never matches a different
// concrete value.
func (r *PolicyRule) Targets(agent, action string) bool {
	if r.Agent != Wildcard && r.Agent != agent {
		return false
	}
	if r.Action != Wildcard && r.Action != action {
		return false
	}
	return true
}

// Validate checks structural validity of a single rule. Condition-key
// validity depends on the matcher and is checked separately (the simulator
// rejects unknown comparison operators before any matching is attempted).
func (r *PolicyRule) Validate() error {
	if r.ID == "" {
		return &RuleValidationError{RuleID: r.ID, Message: "rule id is required"}
	}
	if r.Agent == "" {
		return &RuleValidationError{RuleID: r.ID, Message: "agent is required (use \"*\" for any)"}
	}
	if r.Action == "" {
		return &RuleValidationError{RuleID: r.ID, Message: "action is required (use \"*\" for any)"}
	}
	switch r.Effect {
	case EffectAllow, EffectDeny, EffectNeedsApproval:
	default:
		return &RuleValidationError{RuleID: r.ID, Message: "unknown effect: " + string(r.Effect)}
	}
	return nil
}

// ValidateRules validates each rule and the bundle-level invariant that
// rule IDs are unique.
func ValidateRules(rules []*PolicyRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return &RuleValidationError{RuleID: r.ID, Message: "duplicate rule id"}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
