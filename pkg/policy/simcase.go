package policy

// SimCase is one unit of replay for the simulation engine: a single
// hypothetical agent action with its request context. Cases are pure test
// input; they have no relationship to any bundle.
type SimCase struct {
	// CaseID identifies the case within a batch.
	CaseID string `yaml:"case_id" json:"case_id"`

	// Agent is the acting agent name.
	Agent string `yaml:"agent" json:"agent"`

	// Action is the attempted action name.
	Action string `yaml:"action" json:"action"`

	// Context is the flat key/value request context.
	Context map[string]interface{} `yaml:"context,omitempty" json:"context,omitempty"`
}
