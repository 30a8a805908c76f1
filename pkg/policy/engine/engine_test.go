package engine

import (
	"reflect"
	"testing"

	"polaris-hq/polaris/pkg/policy"
)

func newTestEngine(t *testing.T, rules ...*policy.PolicyRule) *Engine {
	t.Helper()

	e, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bundle := &policy.PolicyBundle{Version: "test-v1", Rules: rules}
	if err := e.Apply(bundle); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return e
}

func boolPtr(b bool) *bool { return &b }

func TestDecide_DefaultAllow(t *testing.T) {
	tests := []struct {
		name  string
		rules []*policy.PolicyRule
	}{
		{
			name:  "empty rule set",
			rules: nil,
		},
		{
			name: "no targeting rule for agent/action",
			rules: []*policy.PolicyRule{
				{ID: "r1", Agent: "report_writer", Action: "publish", Effect: policy.EffectDeny, Priority: 50},
			},
		},
		{
			name: "targeting rule disabled",
			rules: []*policy.PolicyRule{
				{ID: "r1", Agent: "email_triage", Action: "quarantine", Effect: policy.EffectDeny, Priority: 50, Enabled: boolPtr(false)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.rules...)

			decision := e.Decide("email_triage", "quarantine", map[string]interface{}{})

			if decision.Effect != policy.EffectAllow {
				t.Errorf("Effect = %q, want %q", decision.Effect, policy.EffectAllow)
			}
			if decision.RuleID != "" {
				t.Errorf("RuleID = %q, want empty (default decision)", decision.RuleID)
			}
			if decision.Reason != policy.DefaultAllowReason {
				t.Errorf("Reason = %q, want %q", decision.Reason, policy.DefaultAllowReason)
			}
			if decision.RequiresApproval {
				t.Error("RequiresApproval = true, want false on default allow")
			}
		})
	}
}

func TestDecide_PriorityWinsRegardlessOfEffect(t *testing.T) {
	// A narrow high-priority allow overrides a broad lower-priority deny,
	// and vice versa: priority alone decides, never effect.
	allow := &policy.PolicyRule{
		ID: "narrow-allow", Agent: "email_triage", Action: "quarantine",
		Conditions: map[string]interface{}{"risk_score": 90, "sender_known": false},
		Effect:     policy.EffectAllow, Reason: "auto-quarantine high-risk unknown senders", Priority: 100,
	}
	deny := &policy.PolicyRule{
		ID: "broad-deny", Agent: "email_triage", Action: "quarantine",
		Effect: policy.EffectDeny, Reason: "quarantine requires approval", Priority: 50,
	}

	e := newTestEngine(t, deny, allow)

	t.Run("high-priority allow overrides deny", func(t *testing.T) {
		decision := e.Decide("email_triage", "quarantine", map[string]interface{}{
			"risk_score":   95,
			"sender_known": false,
		})
		if decision.Effect != policy.EffectAllow || decision.RuleID != "narrow-allow" {
			t.Errorf("got effect=%q rule=%q, want allow from narrow-allow", decision.Effect, decision.RuleID)
		}
	})

	t.Run("deny wins when allow conditions fail", func(t *testing.T) {
		decision := e.Decide("email_triage", "quarantine", map[string]interface{}{
			"risk_score":   40,
			"sender_known": true,
		})
		if decision.Effect != policy.EffectDeny || decision.RuleID != "broad-deny" {
			t.Errorf("got effect=%q rule=%q, want deny from broad-deny", decision.Effect, decision.RuleID)
		}
	})

	t.Run("high-priority deny overrides allow", func(t *testing.T) {
		e := newTestEngine(t,
			&policy.PolicyRule{ID: "low-allow", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 10},
			&policy.PolicyRule{ID: "high-deny", Agent: "warehouse_monitor", Action: "run_destructive_job", Effect: policy.EffectDeny, Priority: 200},
		)
		decision := e.Decide("warehouse_monitor", "run_destructive_job", nil)
		if decision.Effect != policy.EffectDeny || decision.RuleID != "high-deny" {
			t.Errorf("got effect=%q rule=%q, want deny from high-deny", decision.Effect, decision.RuleID)
		}
	})
}

func TestDecide_WildcardTargeting(t *testing.T) {
	tests := []struct {
		name      string
		ruleAgent string
		ruleAct   string
		agent     string
		action    string
		wantMatch bool
	}{
		{"wildcard agent matches any", "*", "quarantine", "email_triage", "quarantine", true},
		{"wildcard action matches any", "email_triage", "*", "email_triage", "label", true},
		{"both wildcards", "*", "*", "anything", "whatever", true},
		{"concrete agent mismatch", "email_triage", "*", "report_writer", "label", false},
		{"concrete action mismatch", "*", "quarantine", "email_triage", "label", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &policy.PolicyRule{
				ID: "r1", Agent: tt.ruleAgent, Action: tt.ruleAct,
				Effect: policy.EffectDeny, Priority: 50,
			}
			e := newTestEngine(t, rule)

			decision := e.Decide(tt.agent, tt.action, nil)

			gotMatch := decision.RuleID == "r1"
			if gotMatch != tt.wantMatch {
				t.Errorf("matched = %v, want %v", gotMatch, tt.wantMatch)
			}
		})
	}
}

func TestDecide_NumericConditionThreshold(t *testing.T) {
	rule := &policy.PolicyRule{
		ID: "risk", Agent: "*", Action: "*",
		Conditions: map[string]interface{}{"risk_score": 90},
		Effect:     policy.EffectDeny, Priority: 50,
	}
	e := newTestEngine(t, rule)

	tests := []struct {
		score     interface{}
		wantMatch bool
	}{
		{90, true},
		{95, true},
		{float64(90), true},
		{89, false},
		{50, false},
		{"90", false}, // non-numeric actual never satisfies a numeric threshold
	}

	for _, tt := range tests {
		decision := e.Decide("a", "b", map[string]interface{}{"risk_score": tt.score})
		gotMatch := decision.RuleID == "risk"
		if gotMatch != tt.wantMatch {
			t.Errorf("risk_score=%v: matched = %v, want %v", tt.score, gotMatch, tt.wantMatch)
		}
	}
}

func TestDecide_MissingContextKeyFailsClosed(t *testing.T) {
	rule := &policy.PolicyRule{
		ID: "r1", Agent: "*", Action: "*",
		Conditions: map[string]interface{}{"sender_known": false},
		Effect:     policy.EffectDeny, Priority: 50,
	}
	e := newTestEngine(t, rule)

	decision := e.Decide("email_triage", "quarantine", map[string]interface{}{})
	if !decision.IsDefault() {
		t.Errorf("rule with missing context key matched: rule=%q", decision.RuleID)
	}
}

func TestDecide_PriorityTiesUseAuthoringOrder(t *testing.T) {
	// Equal priorities are broken by authoring order: the sort is stable
	// and the first match wins.
	first := &policy.PolicyRule{ID: "first", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 50}
	second := &policy.PolicyRule{ID: "second", Agent: "*", Action: "*", Effect: policy.EffectDeny, Priority: 50}

	e := newTestEngine(t, first, second)

	decision := e.Decide("a", "b", nil)
	if decision.RuleID != "first" {
		t.Errorf("RuleID = %q, want %q (authoring order tie-break)", decision.RuleID, "first")
	}
}

func TestDecide_RequiresApproval(t *testing.T) {
	rule := &policy.PolicyRule{ID: "deny", Agent: "*", Action: "*", Effect: policy.EffectDeny, Priority: 50}
	e := newTestEngine(t, rule)

	tests := []struct {
		name    string
		context map[string]interface{}
		want    bool
	}{
		{"defaults to eligible", map[string]interface{}{}, true},
		{"explicit eligible", map[string]interface{}{ApprovalEligibleKey: true}, true},
		{"explicit ineligible", map[string]interface{}{ApprovalEligibleKey: false}, false},
		{"non-boolean value defaults to eligible", map[string]interface{}{ApprovalEligibleKey: "yes"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := e.Decide("a", "b", tt.context)
			if decision.RequiresApproval != tt.want {
				t.Errorf("RequiresApproval = %v, want %v", decision.RequiresApproval, tt.want)
			}
		})
	}

	t.Run("never set on allow", func(t *testing.T) {
		e := newTestEngine(t, &policy.PolicyRule{ID: "allow", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 50})
		decision := e.Decide("a", "b", map[string]interface{}{ApprovalEligibleKey: true})
		if decision.RequiresApproval {
			t.Error("RequiresApproval = true on allow decision")
		}
	})
}

func TestDecide_Deterministic(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "r1", Agent: "*", Action: "quarantine", Conditions: map[string]interface{}{"risk_score": 80}, Effect: policy.EffectDeny, Priority: 90},
		{ID: "r2", Agent: "email_triage", Action: "*", Effect: policy.EffectAllow, Priority: 40},
		{ID: "r3", Agent: "*", Action: "*", Effect: policy.EffectDeny, Priority: 10},
	}
	e := newTestEngine(t, rules...)

	context := map[string]interface{}{"risk_score": 85, "sender_known": true}

	first := e.Decide("email_triage", "quarantine", context)
	for i := 0; i < 100; i++ {
		next := e.Decide("email_triage", "quarantine", context)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("iteration %d: decision %+v differs from first %+v", i, next, first)
		}
	}
}

func TestApply_RejectsInvalidBundle(t *testing.T) {
	e, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	good := &policy.PolicyBundle{Version: "v1", Rules: []*policy.PolicyRule{
		{ID: "ok", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 1},
	}}
	if err := e.Apply(good); err != nil {
		t.Fatalf("Apply(good) error = %v", err)
	}

	bad := &policy.PolicyBundle{Version: "v2", Rules: []*policy.PolicyRule{
		{ID: "dup", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 1},
		{ID: "dup", Agent: "*", Action: "*", Effect: policy.EffectDeny, Priority: 2},
	}}
	if err := e.Apply(bad); err == nil {
		t.Fatal("Apply(bad) error = nil, want duplicate id validation error")
	}

	// Previous snapshot stays in place after a failed apply.
	if got := e.ActiveVersion(); got != "v1" {
		t.Errorf("ActiveVersion() = %q, want %q", got, "v1")
	}
}

func TestConfig_FailClosedDefault(t *testing.T) {
	e, err := New(&Config{DefaultEffect: policy.EffectDeny}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Apply(&policy.PolicyBundle{Version: "v1"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	decision := e.Decide("a", "b", nil)
	if decision.Effect != policy.EffectDeny {
		t.Errorf("Effect = %q, want deny under fail-closed configuration", decision.Effect)
	}
	if !decision.IsDefault() {
		t.Errorf("RuleID = %q, want empty", decision.RuleID)
	}
	if decision.Reason != policy.DefaultDenyReason {
		t.Errorf("Reason = %q, want %q", decision.Reason, policy.DefaultDenyReason)
	}
}

func TestApply_RejectsSimulationOnlyEffect(t *testing.T) {
	e, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	good := &policy.PolicyBundle{Version: "v1", Rules: []*policy.PolicyRule{
		{ID: "ok", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 1},
	}}
	if err := e.Apply(good); err != nil {
		t.Fatalf("Apply(good) error = %v", err)
	}

	bad := &policy.PolicyBundle{Version: "v2", Rules: []*policy.PolicyRule{
		{ID: "approve-drop", Agent: "warehouse_monitor", Action: "drop_partition",
			Effect: policy.EffectNeedsApproval, Priority: 50},
	}}
	if err := e.Apply(bad); err == nil {
		t.Fatal("Apply() accepted a needs_approval rule, want rejection on the live path")
	}
	if got := e.ActiveVersion(); got != "v1" {
		t.Errorf("ActiveVersion() = %q, want %q after rejected apply", got, "v1")
	}
}

func TestDecide_CostEstimateFromBudget(t *testing.T) {
	e := newTestEngine(t,
		&policy.PolicyRule{ID: "budgeted", Agent: "*", Action: "*",
			Effect: policy.EffectAllow, Priority: 1,
			Budget: &policy.RuleBudget{Cost: 0.75}},
	)

	decision := e.Decide("report_writer", "publish", nil)
	if decision.CostEstimate != 0.75 {
		t.Errorf("CostEstimate = %v, want 0.75 from the rule budget", decision.CostEstimate)
	}
}
