package simulate

import (
	"fmt"
	"math/rand"

	"polaris-hq/polaris/pkg/policy"
)

// Default synthetic generation parameters, matching the common regression
// corpus size.
const (
	DefaultSyntheticCount = 10
	DefaultSyntheticSeed  = 42
)

// syntheticProfiles enumerates the agent/action pairs synthetic traffic is
// drawn from, with the context keys each pair carries. Order matters:
// generation walks this table with a seeded PRNG, so reordering entries
// changes every generated sequence.
var syntheticProfiles = []struct {
	agent  string
	action string
}{
	{"email_triage", "quarantine"},
	{"email_triage", "apply_label"},
	{"knowledge_sync", "update_article"},
	{"knowledge_sync", "delete_article"},
	{"report_writer", "publish"},
	{"warehouse_monitor", "run_maintenance"},
	{"warehouse_monitor", "drop_partition"},
}

// GenerateSynthetic produces count pseudo-random cases from a seeded PRNG.
// The same (count, seed) pair always yields the identical sequence of case
// IDs, agents, actions, and context values, so synthetic batches are usable
// in regression tests.
func GenerateSynthetic(count int, seed int64) []policy.SimCase {
	if count <= 0 {
		count = DefaultSyntheticCount
	}
	rng := rand.New(rand.NewSource(seed))
	cases := make([]policy.SimCase, 0, count)
	for i := 0; i < count; i++ {
		profile := syntheticProfiles[rng.Intn(len(syntheticProfiles))]
		cases = append(cases, policy.SimCase{
			CaseID: fmt.Sprintf("syn-%d-%04d", seed, i),
			Agent:  profile.agent,
			Action: profile.action,
			Context: map[string]interface{}{
				"confidence": round2(rng.Float64()),
				"volume":     float64(rng.Intn(1000)),
				"off_peak":   rng.Intn(2) == 0,
			},
		})
	}
	return cases
}

// round2 truncates to two decimal places so generated confidences are
// stable, human-readable values.
func round2(f float64) float64 {
	return float64(int(f*100)) / 100
}
