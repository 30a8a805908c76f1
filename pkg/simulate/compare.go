package simulate

import (
	"sync"

	"polaris-hq/polaris/pkg/policy"
)

// CaseChange records one case whose outcome differs between the two rule
// sets in a comparison run.
type CaseChange struct {
	// CaseID identifies the diverging case.
	CaseID string `json:"case_id"`

	// Agent and Action echo the case.
	Agent  string `json:"agent"`
	Action string `json:"action"`

	// EffectA and EffectB are the per-side effects ("" for no match).
	EffectA policy.Effect `json:"effect_a,omitempty"`
	EffectB policy.Effect `json:"effect_b,omitempty"`

	// RuleA and RuleB are the per-side matched rule IDs ("" for no match).
	RuleA string `json:"rule_a,omitempty"`
	RuleB string `json:"rule_b,omitempty"`
}

// Deltas summarizes the aggregate movement between the two sides.
type Deltas struct {
	// AllowRate is side B's allow rate minus side A's.
	AllowRate float64 `json:"allow_rate"`

	// DenyRate is side B's deny rate minus side A's.
	DenyRate float64 `json:"deny_rate"`

	// ApprovalRate is side B's approval rate minus side A's.
	ApprovalRate float64 `json:"approval_rate"`

	// NoMatchRate is side B's no-match rate minus side A's.
	NoMatchRate float64 `json:"no_match_rate"`

	// EstimatedCost is side B's estimated cost minus side A's, in dollars.
	EstimatedCost float64 `json:"estimated_cost"`
}

// Comparison is the blast-radius report for a proposed rule edit: both
// summaries, the aggregate deltas, and every case whose effect or matched
// rule moved.
type Comparison struct {
	SummaryA     Summary      `json:"summary_a"`
	SummaryB     Summary      `json:"summary_b"`
	Deltas       Deltas       `json:"deltas"`
	Changes      []CaseChange `json:"changes"`
	TotalChanges int          `json:"total_changes"`
}

// Compare replays the same case batch through both rule sets and diffs the
// per-case outcomes. The two runs share no state and execute concurrently.
// A validation or operator error on either side fails the whole comparison.
func (s *Simulator) Compare(rulesA, rulesB []*policy.PolicyRule, cases []policy.SimCase) (*Comparison, error) {
	var (
		wg         sync.WaitGroup
		reportA    *Report
		reportB    *Report
		errA, errB error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reportA, errA = s.Run(rulesA, cases)
	}()
	go func() {
		defer wg.Done()
		reportB, errB = s.Run(rulesB, cases)
	}()
	wg.Wait()
	if errA != nil {
		return nil, errA
	}
	if errB != nil {
		return nil, errB
	}

	cmp := &Comparison{
		SummaryA: reportA.Summary,
		SummaryB: reportB.Summary,
		Deltas: Deltas{
			AllowRate:     reportB.Summary.AllowRate - reportA.Summary.AllowRate,
			DenyRate:      reportB.Summary.DenyRate - reportA.Summary.DenyRate,
			ApprovalRate:  reportB.Summary.ApprovalRate - reportA.Summary.ApprovalRate,
			NoMatchRate:   reportB.Summary.NoMatchRate - reportA.Summary.NoMatchRate,
			EstimatedCost: reportB.Summary.EstimatedCost - reportA.Summary.EstimatedCost,
		},
	}
	for i := range reportA.Results {
		a, b := reportA.Results[i], reportB.Results[i]
		if a.Effect == b.Effect && a.MatchedRule == b.MatchedRule {
			continue
		}
		cmp.Changes = append(cmp.Changes, CaseChange{
			CaseID:  a.CaseID,
			Agent:   a.Agent,
			Action:  a.Action,
			EffectA: a.Effect,
			EffectB: b.Effect,
			RuleA:   a.MatchedRule,
			RuleB:   b.MatchedRule,
		})
	}
	cmp.TotalChanges = len(cmp.Changes)
	return cmp, nil
}
