package policy

import "time"

// MetadataRollbackKey is the Metadata key under which rollback provenance
// is recorded when a bundle is reinstated by a rollback.
const MetadataRollbackKey = "rollback"

// PolicyBundle is a named, versioned, immutable set of rules plus rollout
// metadata. The rule list is never mutated after creation; activation swaps
// whole bundles (copy-on-activate), which is what lets the decision engine
// read its snapshot without locking.
//
// Lifecycle invariant: at most one bundle is active with CanaryPct == 100
// (the fully promoted bundle), and at most one additional bundle may be
// active with CanaryPct < 100 (an in-flight canary). pkg/lifecycle enforces
// this under a single serialization point.
type PolicyBundle struct {
	// ID is the surrogate store key.
	ID string `yaml:"id,omitempty" json:"id"`

	// Version is the unique, human-meaningful bundle version string.
	Version string `yaml:"version" json:"version"`

	// Rules is the ordered rule list. Authoring order is the final
	// priority tie-break.
	Rules []*PolicyRule `yaml:"rules" json:"rules"`

	// Active reports whether the bundle currently serves traffic.
	Active bool `yaml:"-" json:"active"`

	// CanaryPct is the advisory percentage of traffic intended for this
	// bundle, 0-100. It is traffic-split metadata, not a transactional
	// guarantee.
	CanaryPct int `yaml:"-" json:"canary_pct"`

	// ApprovalID records who or what approved activation. Activation
	// without an approval is refused.
	ApprovalID string `yaml:"-" json:"approval_id,omitempty"`

	// ActivatedBy is the operator that activated the bundle.
	ActivatedBy string `yaml:"-" json:"activated_by,omitempty"`

	// ActivatedAt is the most recent activation time; zero if the bundle
	// was never activated.
	ActivatedAt time.Time `yaml:"-" json:"activated_at,omitzero"`

	// CreatedBy is the bundle author.
	CreatedBy string `yaml:"created_by,omitempty" json:"created_by,omitempty"`

	// CreatedAt is the bundle creation time.
	CreatedAt time.Time `yaml:"-" json:"created_at,omitzero"`

	// Metadata is free-form provenance, used among other things to stamp
	// rollback details (see MetadataRollbackKey).
	Metadata map[string]interface{} `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// FullyPromoted reports whether the bundle is active at 100% traffic.
func (b *PolicyBundle) FullyPromoted() bool {
	return b.Active && b.CanaryPct == 100
}

// WasActivated reports whether the bundle has ever been activated.
func (b *PolicyBundle) WasActivated() bool {
	return !b.ActivatedAt.IsZero()
}

// Validate checks the bundle's structure and its rules.
func (b *PolicyBundle) Validate() error {
	if b.Version == "" {
		return &RuleValidationError{Message: "bundle version is required"}
	}
	if b.CanaryPct < 0 || b.CanaryPct > 100 {
		return &RuleValidationError{Message: "canary_pct must be between 0 and 100"}
	}
	return ValidateRules(b.Rules)
}

// Clone returns a deep copy of the bundle. Lifecycle transitions operate on
// clones so a stored bundle is never mutated in place.
func (b *PolicyBundle) Clone() *PolicyBundle {
	clone := *b

	clone.Rules = make([]*PolicyRule, len(b.Rules))
	for i, r := range b.Rules {
		rc := *r
		if r.Enabled != nil {
			enabled := *r.Enabled
			rc.Enabled = &enabled
		}
		if r.Budget != nil {
			budget := *r.Budget
			rc.Budget = &budget
		}
		if r.Conditions != nil {
			rc.Conditions = make(map[string]interface{}, len(r.Conditions))
			for k, v := range r.Conditions {
				rc.Conditions[k] = v
			}
		}
		clone.Rules[i] = &rc
	}

	if b.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(b.Metadata))
		for k, v := range b.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}
