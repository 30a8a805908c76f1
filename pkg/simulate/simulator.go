package simulate

import (
	"fmt"
	"log/slog"

	"polaris-hq/polaris/pkg/policy"
	"polaris-hq/polaris/pkg/policy/engine"
)

// DefaultCostCeiling is the governance threshold, in dollars, above which a
// rule set's total estimated cost over a case batch is flagged as a breach.
const DefaultCostCeiling = 1000.0

// CaseResult is the outcome of replaying a single case. Effect and
// MatchedRule are empty when no rule matched the case.
type CaseResult struct {
	// CaseID echoes the input case.
	CaseID string `json:"case_id"`

	// Agent echoes the input case.
	Agent string `json:"agent"`

	// Action echoes the input case.
	Action string `json:"action"`

	// Effect is the winning rule's effect, or "" for no match.
	Effect policy.Effect `json:"effect,omitempty"`

	// MatchedRule is the winning rule's ID, or "" for no match.
	MatchedRule string `json:"matched_rule,omitempty"`

	// Reason is the winning rule's reason, when present.
	Reason string `json:"reason,omitempty"`
}

// Matched reports whether any rule decided this case.
func (r *CaseResult) Matched() bool {
	return r.MatchedRule != ""
}

// Summary aggregates a simulation run over the whole case batch.
type Summary struct {
	// TotalCases is the batch size.
	TotalCases int `json:"total_cases"`

	// AllowCount is the number of cases decided allow.
	AllowCount int `json:"allow_count"`

	// DenyCount is the number of cases decided deny.
	DenyCount int `json:"deny_count"`

	// ApprovalCount is the number of cases decided needs_approval.
	ApprovalCount int `json:"approval_count"`

	// NoMatchCount is the number of cases no rule decided.
	NoMatchCount int `json:"no_match_count"`

	// AllowRate is AllowCount / TotalCases, 0 for an empty batch.
	AllowRate float64 `json:"allow_rate"`

	// DenyRate is DenyCount / TotalCases, 0 for an empty batch.
	DenyRate float64 `json:"deny_rate"`

	// ApprovalRate is ApprovalCount / TotalCases, 0 for an empty batch.
	ApprovalRate float64 `json:"approval_rate"`

	// NoMatchRate is NoMatchCount / TotalCases, 0 for an empty batch.
	NoMatchRate float64 `json:"no_match_rate"`

	// EstimatedCost is the summed budget.cost of every matched case's
	// winning rule, in dollars.
	EstimatedCost float64 `json:"estimated_cost"`

	// EstimatedCompute is the summed budget.compute of every matched
	// case's winning rule.
	EstimatedCompute float64 `json:"estimated_compute"`

	// Breaches holds human-readable governance warnings, currently
	// raised when EstimatedCost exceeds the cost ceiling.
	Breaches []string `json:"breaches,omitempty"`
}

// Report is the full output of a simulation run.
type Report struct {
	Summary Summary       `json:"summary"`
	Results []*CaseResult `json:"results"`
}

// Simulator replays candidate rule sets against case batches using the
// strict prefix-operator condition DSL. It holds no mutable state and is
// safe for concurrent use.
type Simulator struct {
	matcher     *engine.SimMatcher
	costCeiling float64
	progress    func(completed, total int)
	logger      *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithCostCeiling overrides the governance cost ceiling used for breach
// warnings.
func WithCostCeiling(dollars float64) Option {
	return func(s *Simulator) {
		s.costCeiling = dollars
	}
}

// WithProgress installs a callback invoked after each case completes with
// the number of finished cases and the batch total. Callers rendering
// progress over large batches hook it up here; throttling is the
// callback's business.
func WithProgress(fn func(completed, total int)) Option {
	return func(s *Simulator) {
		s.progress = fn
	}
}

// New creates a Simulator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger, opts ...Option) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		matcher:     engine.NewSimMatcher(),
		costCeiling: DefaultCostCeiling,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run replays every case against the candidate rule set and aggregates the
// outcomes. All rules are validated before any case is evaluated, so a rule
// with an unknown condition operator fails the whole run rather than
// silently not matching.
func (s *Simulator) Run(rules []*policy.PolicyRule, cases []policy.SimCase) (*Report, error) {
	if err := policy.ValidateRules(rules); err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if err := s.matcher.ValidateRule(rule); err != nil {
			return nil, err
		}
	}

	candidates := make([]*policy.PolicyRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsEnabled() {
			candidates = append(candidates, rule)
		}
	}
	candidates = engine.SortByPriority(candidates)

	report := &Report{
		Results: make([]*CaseResult, 0, len(cases)),
	}
	for i := range cases {
		result, winner, err := s.evaluate(candidates, &cases[i])
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, result)
		switch result.Effect {
		case policy.EffectAllow:
			report.Summary.AllowCount++
		case policy.EffectDeny:
			report.Summary.DenyCount++
		case policy.EffectNeedsApproval:
			report.Summary.ApprovalCount++
		default:
			report.Summary.NoMatchCount++
		}
		if winner != nil && winner.Budget != nil {
			report.Summary.EstimatedCost += winner.Budget.Cost
			report.Summary.EstimatedCompute += winner.Budget.Compute
		}
		if s.progress != nil {
			s.progress(i+1, len(cases))
		}
	}

	report.Summary.TotalCases = len(cases)
	if total := float64(len(cases)); total > 0 {
		report.Summary.AllowRate = float64(report.Summary.AllowCount) / total
		report.Summary.DenyRate = float64(report.Summary.DenyCount) / total
		report.Summary.ApprovalRate = float64(report.Summary.ApprovalCount) / total
		report.Summary.NoMatchRate = float64(report.Summary.NoMatchCount) / total
	}
	if report.Summary.EstimatedCost > s.costCeiling {
		report.Summary.Breaches = append(report.Summary.Breaches,
			fmt.Sprintf("estimated cost $%.2f exceeds governance ceiling $%.2f",
				report.Summary.EstimatedCost, s.costCeiling))
	}

	s.logger.Debug("simulation run complete",
		"cases", report.Summary.TotalCases,
		"no_match", report.Summary.NoMatchCount,
		"estimated_cost", report.Summary.EstimatedCost)
	return report, nil
}

// evaluate finds the first rule (descending priority) whose agent, action,
// and conditions all match the case. The winning rule is returned alongside
// the result so the caller can charge its budget; it is nil for no match.
func (s *Simulator) evaluate(sorted []*policy.PolicyRule, c *policy.SimCase) (*CaseResult, *policy.PolicyRule, error) {
	result := &CaseResult{
		CaseID: c.CaseID,
		Agent:  c.Agent,
		Action: c.Action,
	}
	for _, rule := range sorted {
		if !rule.Targets(c.Agent, c.Action) {
			continue
		}
		matched, err := s.matcher.Matches(rule, c.Context)
		if err != nil {
			return nil, nil, err
		}
		if matched {
			result.Effect = rule.Effect
			result.MatchedRule = rule.ID
			result.Reason = rule.Reason
			return result, rule, nil
		}
	}
	return result, nil, nil
}
