package lifecycle

import "fmt"

// Default quality-gate thresholds. A canary must clear every gate before it
// is eligible for promotion.
const (
	// DefaultMinSampleSize is the minimum number of decisions required
	// before gate results are meaningful.
	DefaultMinSampleSize int64 = 100

	// DefaultMaxErrorRate is the maximum tolerated error rate.
	DefaultMaxErrorRate = 0.05

	// DefaultMaxDenyRate is the maximum tolerated deny rate. A canary
	// denying more than this fraction of traffic is assumed to be
	// misconfigured rather than stricter on purpose.
	DefaultMaxDenyRate = 0.30

	// DefaultMaxCostIncrease is the maximum tolerated average-cost
	// regression against the baseline bundle.
	DefaultMaxCostIncrease = 0.20
)

// GateMetrics is a snapshot of live decision statistics for the canary
// under evaluation.
type GateMetrics struct {
	// TotalDecisions is the number of decisions served by the canary.
	TotalDecisions int64 `json:"total_decisions"`

	// ErrorCount is the number of evaluation errors.
	ErrorCount int64 `json:"error_count"`

	// DenyCount is the number of deny decisions.
	DenyCount int64 `json:"deny_count"`

	// BaselineAvgCost is the average decision cost of the baseline bundle.
	BaselineAvgCost float64 `json:"baseline_avg_cost"`

	// CanaryAvgCost is the average decision cost of the canary bundle.
	CanaryAvgCost float64 `json:"canary_avg_cost"`
}

// GateThresholds configures the quality gates.
type GateThresholds struct {
	// MinSampleSize is the minimum decision count. Default 100.
	MinSampleSize int64 `yaml:"min_sample_size"`

	// MaxErrorRate is the maximum error_count/total ratio. Default 0.05.
	MaxErrorRate float64 `yaml:"max_error_rate"`

	// MaxDenyRate is the maximum deny_count/total ratio. Default 0.30.
	MaxDenyRate float64 `yaml:"max_deny_rate"`

	// MaxCostIncrease is the maximum relative average-cost regression
	// against baseline. Default 0.20.
	MaxCostIncrease float64 `yaml:"max_cost_increase"`
}

// DefaultGateThresholds returns the default gate thresholds.
func DefaultGateThresholds() GateThresholds {
	return GateThresholds{
		MinSampleSize:   DefaultMinSampleSize,
		MaxErrorRate:    DefaultMaxErrorRate,
		MaxDenyRate:     DefaultMaxDenyRate,
		MaxCostIncrease: DefaultMaxCostIncrease,
	}
}

// GateResult is the outcome of a quality-gate check. A failed gate is a
// normal result intended to block promotion, not an error.
type GateResult struct {
	// Passed is true when every gate cleared.
	Passed bool `json:"passed"`

	// Failures itemizes every failing gate. All failing conditions
	// accumulate; evaluation never short-circuits.
	Failures []string `json:"failures,omitempty"`
}

// EvaluateGates checks a metrics snapshot against the thresholds. It is a
// pure function; the lifecycle manager and the gate scheduler both call it.
func EvaluateGates(m GateMetrics, t GateThresholds) GateResult {
	var failures []string

	if m.TotalDecisions < t.MinSampleSize {
		failures = append(failures, fmt.Sprintf(
			"insufficient sample size: %d decisions, need at least %d",
			m.TotalDecisions, t.MinSampleSize))
	}

	if m.TotalDecisions > 0 {
		errorRate := float64(m.ErrorCount) / float64(m.TotalDecisions)
		if errorRate > t.MaxErrorRate {
			failures = append(failures, fmt.Sprintf(
				"error rate too high: %.2f%% exceeds %.2f%%",
				errorRate*100, t.MaxErrorRate*100))
		}

		denyRate := float64(m.DenyCount) / float64(m.TotalDecisions)
		if denyRate > t.MaxDenyRate {
			failures = append(failures, fmt.Sprintf(
				"deny rate too high: %.2f%% exceeds %.2f%%",
				denyRate*100, t.MaxDenyRate*100))
		}
	}

	if m.BaselineAvgCost > 0 {
		increase := (m.CanaryAvgCost - m.BaselineAvgCost) / m.BaselineAvgCost
		if increase > t.MaxCostIncrease {
			failures = append(failures, fmt.Sprintf(
				"cost regression: canary average cost %.4f is %.1f%% above baseline %.4f",
				m.CanaryAvgCost, increase*100, m.BaselineAvgCost))
		}
	}

	return GateResult{
		Passed:   len(failures) == 0,
		Failures: failures,
	}
}
