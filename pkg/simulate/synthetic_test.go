package simulate

import (
	"reflect"
	"testing"
)

func TestGenerateSynthetic_Deterministic(t *testing.T) {
	first := GenerateSynthetic(DefaultSyntheticCount, DefaultSyntheticSeed)
	second := GenerateSynthetic(DefaultSyntheticCount, DefaultSyntheticSeed)

	if len(first) != DefaultSyntheticCount {
		t.Fatalf("len = %d, want %d", len(first), DefaultSyntheticCount)
	}
	for i := range first {
		if first[i].CaseID != second[i].CaseID {
			t.Errorf("case %d: case_id %q != %q", i, first[i].CaseID, second[i].CaseID)
		}
		if first[i].Agent != second[i].Agent || first[i].Action != second[i].Action {
			t.Errorf("case %d: agent/action %s/%s != %s/%s",
				i, first[i].Agent, first[i].Action, second[i].Agent, second[i].Action)
		}
		if !reflect.DeepEqual(first[i].Context, second[i].Context) {
			t.Errorf("case %d: context %v != %v", i, first[i].Context, second[i].Context)
		}
	}
}

func TestGenerateSynthetic_SeedChangesSequence(t *testing.T) {
	a := GenerateSynthetic(50, 1)
	b := GenerateSynthetic(50, 2)

	same := true
	for i := range a {
		if !reflect.DeepEqual(a[i].Context, b[i].Context) || a[i].Agent != b[i].Agent {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestGenerateSynthetic_DefaultsOnBadCount(t *testing.T) {
	cases := GenerateSynthetic(0, 7)
	if len(cases) != DefaultSyntheticCount {
		t.Errorf("len = %d, want default %d", len(cases), DefaultSyntheticCount)
	}
}

func TestGenerateSynthetic_KnownProfiles(t *testing.T) {
	known := make(map[string]bool)
	for _, p := range syntheticProfiles {
		known[p.agent+"/"+p.action] = true
	}
	for _, c := range GenerateSynthetic(100, 3) {
		if !known[c.Agent+"/"+c.Action] {
			t.Errorf("case %s has unknown pair %s/%s", c.CaseID, c.Agent, c.Action)
		}
	}
}

func TestFixtures(t *testing.T) {
	fixtures := Fixtures()
	if len(fixtures) == 0 {
		t.Fatal("fixtures must not be empty")
	}

	seen := make(map[string]bool)
	ids := make(map[string]bool)
	for _, c := range fixtures {
		if ids[c.CaseID] {
			t.Errorf("duplicate fixture case_id %q", c.CaseID)
		}
		ids[c.CaseID] = true
		seen[c.Agent] = true
	}
	for _, agent := range []string{"email_triage", "knowledge_sync", "report_writer", "warehouse_monitor"} {
		if !seen[agent] {
			t.Errorf("fixtures missing agent %s", agent)
		}
	}

	// Mutating a returned batch must not leak into later calls.
	fixtures[0].Context["confidence"] = -1.0
	if Fixtures()[0].Context["confidence"] == -1.0 {
		t.Error("Fixtures() returned shared context maps")
	}
}
