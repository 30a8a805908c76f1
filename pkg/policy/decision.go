package policy

// DefaultAllowReason is the reason attached to the engine's fail-open
// default decision when no rule matches a request.
//
// The fail-open default is a deliberate, risk-laden design choice: the
// system is safe-by-exception, not safe-by-default, so default policy
// bundles must actively deny anything dangerous. It is surfaced here as a
// named constant (and the default effect is configurable on the engine) so
// deployments can audit or flip it rather than discover it buried in
// control flow.
const DefaultAllowReason = "default-allow: no matching policy rules"

// DefaultDenyReason is the reason attached to the default decision when the
// engine is configured fail-closed and no rule matches.
const DefaultDenyReason = "default-deny: no matching policy rules"

// PolicyDecision is the result of evaluating one request against a rule set.
type PolicyDecision struct {
	// Effect is the final outcome.
	Effect Effect `json:"effect"`

	// Reason explains the outcome; either the matched rule's reason or the
	// default-decision reason for the configured effect.
	Reason string `json:"reason"`

	// RuleID is the matched rule, empty when the default decision applied.
	RuleID string `json:"rule_id,omitempty"`

	// CostEstimate is the matched rule's budgeted cost in dollars, zero
	// when the rule carries no budget or the default decision applied.
	CostEstimate float64 `json:"cost_estimate,omitempty"`

	// RequiresApproval indicates a denied action may proceed after human
	// approval. Only meaningful when Effect is EffectDeny.
	RequiresApproval bool `json:"requires_approval"`
}

// IsDefault reports whether the decision came from the engine default
// rather than a matched rule.
func (d *PolicyDecision) IsDefault() bool {
	return d.RuleID == ""
}
