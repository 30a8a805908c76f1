package simulate

import (
	"testing"
	"time"

	"polaris-hq/polaris/pkg/policy"
	"polaris-hq/polaris/pkg/policy/engine"
)

// The live engine expresses a numeric condition as a bare key meaning
// "actual >= expected" and everything else as equality; the simulator's
// DSL spells those out as ">=key" and a bare key. For rule sets restricted
// to that shared subset, replaying the same traffic through both paths
// must produce case-for-case identical effects.
func TestParity_SimulatorMatchesLiveEngine(t *testing.T) {
	liveRules := []*policy.PolicyRule{
		{ID: "allow-confident-quarantine", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{"confidence": 0.9},
			Effect:     policy.EffectAllow, Priority: 100},
		{ID: "deny-unknown-sender", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{"sender_known": false},
			Effect:     policy.EffectDeny, Reason: "unknown sender", Priority: 50},
		{ID: "deny-stale-delete", Agent: "knowledge_sync", Action: "delete_article",
			Conditions: map[string]interface{}{"staleness_days": 365.0},
			Effect:     policy.EffectDeny, Reason: "needs review", Priority: 80},
		{ID: "fleet-allow", Agent: policy.Wildcard, Action: policy.Wildcard,
			Effect: policy.EffectAllow, Reason: "fleet default", Priority: 1},
	}

	simRules := []*policy.PolicyRule{
		{ID: "allow-confident-quarantine", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{">=confidence": 0.9},
			Effect:     policy.EffectAllow, Priority: 100},
		{ID: "deny-unknown-sender", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{"sender_known": false},
			Effect:     policy.EffectDeny, Reason: "unknown sender", Priority: 50},
		{ID: "deny-stale-delete", Agent: "knowledge_sync", Action: "delete_article",
			Conditions: map[string]interface{}{">=staleness_days": 365.0},
			Effect:     policy.EffectDeny, Reason: "needs review", Priority: 80},
		{ID: "fleet-allow", Agent: policy.Wildcard, Action: policy.Wildcard,
			Effect: policy.EffectAllow, Reason: "fleet default", Priority: 1},
	}

	eng, err := engine.New(engine.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	if err := eng.Apply(&policy.PolicyBundle{
		ID:        "parity",
		Version:   "v1",
		Rules:     liveRules,
		Active:    true,
		CanaryPct: 100,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	cases := append(Fixtures(), GenerateSynthetic(40, 99)...)
	report, err := New(nil).Run(simRules, cases)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, result := range report.Results {
		c := cases[i]
		live := eng.Decide(c.Agent, c.Action, c.Context)
		if result.Effect != live.Effect {
			t.Errorf("case %s: simulator effect %q, live effect %q",
				c.CaseID, result.Effect, live.Effect)
		}
		if result.MatchedRule != live.RuleID {
			t.Errorf("case %s: simulator matched %q, live matched %q",
				c.CaseID, result.MatchedRule, live.RuleID)
		}
	}
}
