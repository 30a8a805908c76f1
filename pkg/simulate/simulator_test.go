package simulate

import (
	"errors"
	"strings"
	"testing"

	"polaris-hq/polaris/pkg/policy"
)

func boolPtr(b bool) *bool { return &b }

func simRules() []*policy.PolicyRule {
	return []*policy.PolicyRule{
		{
			ID:         "deny-low-confidence",
			Agent:      "email_triage",
			Action:     "quarantine",
			Conditions: map[string]interface{}{"<confidence": 0.5},
			Effect:     policy.EffectDeny,
			Reason:     "confidence too low to quarantine",
			Priority:   100,
		},
		{
			ID:         "allow-high-confidence",
			Agent:      "email_triage",
			Action:     "quarantine",
			Conditions: map[string]interface{}{">=confidence": 0.9},
			Effect:     policy.EffectAllow,
			Priority:   90,
			Budget:     &policy.RuleBudget{Cost: 0.25, Compute: 1.5},
		},
		{
			ID:       "approve-drop",
			Agent:    "warehouse_monitor",
			Action:   "drop_partition",
			Effect:   policy.EffectNeedsApproval,
			Priority: 50,
		},
	}
}

func TestRun_FirstMatchByPriority(t *testing.T) {
	sim := New(nil)
	cases := []policy.SimCase{
		{CaseID: "c1", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.3}},
		{CaseID: "c2", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.95}},
		{CaseID: "c3", Agent: "warehouse_monitor", Action: "drop_partition",
			Context: map[string]interface{}{"partition_age_days": 900.0}},
		{CaseID: "c4", Agent: "report_writer", Action: "publish",
			Context: map[string]interface{}{"reviewer_count": 2.0}},
	}

	report, err := sim.Run(simRules(), cases)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]struct {
		effect policy.Effect
		rule   string
	}{
		"c1": {policy.EffectDeny, "deny-low-confidence"},
		"c2": {policy.EffectAllow, "allow-high-confidence"},
		"c3": {policy.EffectNeedsApproval, "approve-drop"},
		"c4": {"", ""},
	}
	for _, result := range report.Results {
		w := want[result.CaseID]
		if result.Effect != w.effect {
			t.Errorf("case %s: effect = %q, want %q", result.CaseID, result.Effect, w.effect)
		}
		if result.MatchedRule != w.rule {
			t.Errorf("case %s: matched_rule = %q, want %q", result.CaseID, result.MatchedRule, w.rule)
		}
	}

	s := report.Summary
	if s.TotalCases != 4 || s.AllowCount != 1 || s.DenyCount != 1 || s.ApprovalCount != 1 || s.NoMatchCount != 1 {
		t.Errorf("summary counts = %+v, want 1 of each over 4 cases", s)
	}
	if s.AllowRate != 0.25 || s.DenyRate != 0.25 || s.ApprovalRate != 0.25 || s.NoMatchRate != 0.25 {
		t.Errorf("summary rates = %+v, want 0.25 each", s)
	}
}

func TestRun_AuthoringOrderDoesNotOverridePriority(t *testing.T) {
	// Low-priority rule authored first: the high-priority deny must
	// still win, regardless of slice order.
	rules := []*policy.PolicyRule{
		{ID: "low-allow", Agent: "email_triage", Action: "quarantine",
			Effect: policy.EffectAllow, Priority: 10},
		{ID: "high-deny", Agent: "email_triage", Action: "quarantine",
			Effect: policy.EffectDeny, Reason: "quarantine paused", Priority: 100},
	}

	sim := New(nil)
	report, err := sim.Run(rules, []policy.SimCase{
		{CaseID: "c1", Agent: "email_triage", Action: "quarantine"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := report.Results[0]
	if got.MatchedRule != "high-deny" {
		t.Errorf("matched_rule = %q, want high-deny", got.MatchedRule)
	}
	if got.Effect != policy.EffectDeny {
		t.Errorf("effect = %q, want %q", got.Effect, policy.EffectDeny)
	}
}

func TestRun_DisabledRulesFiltered(t *testing.T) {
	rules := simRules()
	rules[0].Enabled = boolPtr(false)

	sim := New(nil)
	report, err := sim.Run(rules, []policy.SimCase{
		{CaseID: "c1", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.3}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// With the deny rule disabled, the only remaining rule requires
	// confidence >= 0.9, so the case falls through to no match.
	if report.Results[0].Matched() {
		t.Errorf("matched_rule = %q, want no match", report.Results[0].MatchedRule)
	}
	if report.Summary.NoMatchCount != 1 {
		t.Errorf("NoMatchCount = %d, want 1", report.Summary.NoMatchCount)
	}
}

func TestRun_CatchAllEmptyConditions(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "catch-all", Agent: "email_triage", Action: policy.Wildcard,
			Effect: policy.EffectAllow, Priority: 1},
	}
	sim := New(nil)
	report, err := sim.Run(rules, []policy.SimCase{
		{CaseID: "c1", Agent: "email_triage", Action: "apply_label"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Results[0].MatchedRule != "catch-all" {
		t.Errorf("matched_rule = %q, want catch-all", report.Results[0].MatchedRule)
	}
}

func TestRun_EstimatedCostAndBreach(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "pricey", Agent: policy.Wildcard, Action: policy.Wildcard,
			Effect: policy.EffectAllow, Priority: 10,
			Budget: &policy.RuleBudget{Cost: 3.0, Compute: 2.0}},
	}
	cases := []policy.SimCase{
		{CaseID: "c1", Agent: "a", Action: "x"},
		{CaseID: "c2", Agent: "b", Action: "y"},
	}

	sim := New(nil, WithCostCeiling(5.0))
	report, err := sim.Run(rules, cases)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Summary.EstimatedCost != 6.0 {
		t.Errorf("EstimatedCost = %v, want 6.0", report.Summary.EstimatedCost)
	}
	if report.Summary.EstimatedCompute != 4.0 {
		t.Errorf("EstimatedCompute = %v, want 4.0", report.Summary.EstimatedCompute)
	}
	if len(report.Summary.Breaches) != 1 {
		t.Fatalf("Breaches = %v, want exactly one", report.Summary.Breaches)
	}
	if !strings.Contains(report.Summary.Breaches[0], "ceiling") {
		t.Errorf("breach %q should mention the ceiling", report.Summary.Breaches[0])
	}
}

func TestRun_UnderCeilingNoBreach(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "cheap", Agent: policy.Wildcard, Action: policy.Wildcard,
			Effect: policy.EffectAllow, Priority: 10,
			Budget: &policy.RuleBudget{Cost: 1.0}},
	}
	sim := New(nil)
	report, err := sim.Run(rules, []policy.SimCase{{CaseID: "c1", Agent: "a", Action: "x"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Summary.Breaches) != 0 {
		t.Errorf("Breaches = %v, want none under the default ceiling", report.Summary.Breaches)
	}
}

func TestRun_UnknownOperatorFailsRun(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "bad-op", Agent: "a", Action: "x",
			Conditions: map[string]interface{}{"~confidence": 0.5},
			Effect:     policy.EffectAllow, Priority: 10},
	}
	sim := New(nil)
	_, err := sim.Run(rules, []policy.SimCase{{CaseID: "c1", Agent: "a", Action: "x"}})
	if err == nil {
		t.Fatal("Run() with unknown operator should fail")
	}
	var opErr *policy.UnknownOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("error = %T, want *policy.UnknownOperatorError", err)
	}
	if opErr.RuleID != "bad-op" {
		t.Errorf("RuleID = %q, want bad-op", opErr.RuleID)
	}
}

func TestRun_DuplicateRuleIDFails(t *testing.T) {
	rules := []*policy.PolicyRule{
		{ID: "dup", Agent: "a", Action: "x", Effect: policy.EffectAllow, Priority: 1},
		{ID: "dup", Agent: "a", Action: "y", Effect: policy.EffectDeny, Priority: 2},
	}
	sim := New(nil)
	if _, err := sim.Run(rules, nil); err == nil {
		t.Fatal("Run() with duplicate rule IDs should fail")
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	var completions []int
	var batchTotal int
	sim := New(nil, WithProgress(func(completed, total int) {
		completions = append(completions, completed)
		batchTotal = total
	}))

	if _, err := sim.Run(simRules(), GenerateSynthetic(25, 1)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(completions) != 25 {
		t.Fatalf("progress callback fired %d times, want once per case", len(completions))
	}
	if completions[24] != 25 || batchTotal != 25 {
		t.Errorf("final callback = (%d, %d), want (25, 25)", completions[24], batchTotal)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	sim := New(nil)
	report, err := sim.Run(simRules(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Summary.TotalCases != 0 {
		t.Errorf("TotalCases = %d, want 0", report.Summary.TotalCases)
	}
	if report.Summary.AllowRate != 0 || report.Summary.NoMatchRate != 0 {
		t.Errorf("rates over an empty batch should be 0, got %+v", report.Summary)
	}
}
