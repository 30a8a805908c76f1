package simulate

import (
	"testing"

	"polaris-hq/polaris/pkg/policy"
)

func TestCompare_DiffsChangedCases(t *testing.T) {
	rulesA := []*policy.PolicyRule{
		{ID: "quarantine-strict", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{">=confidence": 0.9},
			Effect:     policy.EffectAllow, Priority: 10,
			Budget: &policy.RuleBudget{Cost: 1.0}},
	}
	// Side B loosens the threshold, so the 0.85 case flips from no-match
	// to allow.
	rulesB := []*policy.PolicyRule{
		{ID: "quarantine-loose", Agent: "email_triage", Action: "quarantine",
			Conditions: map[string]interface{}{">=confidence": 0.8},
			Effect:     policy.EffectAllow, Priority: 10,
			Budget: &policy.RuleBudget{Cost: 1.0}},
	}
	cases := []policy.SimCase{
		{CaseID: "high", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.95}},
		{CaseID: "mid", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.85}},
		{CaseID: "low", Agent: "email_triage", Action: "quarantine",
			Context: map[string]interface{}{"confidence": 0.2}},
	}

	sim := New(nil)
	cmp, err := sim.Compare(rulesA, rulesB, cases)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	// "high" matches on both sides but under different rule IDs, so it
	// counts as a change alongside the flipped "mid" case.
	if cmp.TotalChanges != 2 {
		t.Fatalf("TotalChanges = %d, want 2 (changes: %+v)", cmp.TotalChanges, cmp.Changes)
	}
	byID := make(map[string]CaseChange)
	for _, ch := range cmp.Changes {
		byID[ch.CaseID] = ch
	}
	mid, ok := byID["mid"]
	if !ok {
		t.Fatal("expected a change for case mid")
	}
	if mid.EffectA != "" || mid.EffectB != policy.EffectAllow {
		t.Errorf("mid change = %+v, want no-match -> allow", mid)
	}
	if _, ok := byID["low"]; ok {
		t.Error("case low matched neither side and must not be a change")
	}

	if cmp.SummaryA.AllowCount != 1 || cmp.SummaryB.AllowCount != 2 {
		t.Errorf("allow counts = %d/%d, want 1/2", cmp.SummaryA.AllowCount, cmp.SummaryB.AllowCount)
	}
	if cmp.Deltas.EstimatedCost != 1.0 {
		t.Errorf("cost delta = %v, want 1.0", cmp.Deltas.EstimatedCost)
	}
	if cmp.Deltas.NoMatchRate >= 0 {
		t.Errorf("no-match rate delta = %v, want negative", cmp.Deltas.NoMatchRate)
	}
}

func TestCompare_IdenticalRuleSets(t *testing.T) {
	rules := simRules()
	sim := New(nil)
	cmp, err := sim.Compare(rules, rules, Fixtures())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if cmp.TotalChanges != 0 {
		t.Errorf("TotalChanges = %d, want 0 for identical rule sets", cmp.TotalChanges)
	}
	if cmp.Deltas != (Deltas{}) {
		t.Errorf("Deltas = %+v, want all zero", cmp.Deltas)
	}
}

func TestCompare_SideErrorFailsComparison(t *testing.T) {
	good := simRules()
	bad := []*policy.PolicyRule{
		{ID: "bad", Agent: "a", Action: "x",
			Conditions: map[string]interface{}{"~k": 1.0},
			Effect:     policy.EffectAllow, Priority: 1},
	}
	sim := New(nil)
	if _, err := sim.Compare(good, bad, GenerateSynthetic(5, 1)); err == nil {
		t.Fatal("Compare() should fail when one side has an invalid operator")
	}
}
