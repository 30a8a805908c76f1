package lifecycle

import (
	"strings"
	"testing"
)

func TestEvaluateGates_Pass(t *testing.T) {
	metrics := GateMetrics{
		TotalDecisions:  200,
		ErrorCount:      5,
		DenyCount:       40,
		BaselineAvgCost: 10.0,
		CanaryAvgCost:   11.0,
	}

	result := EvaluateGates(metrics, DefaultGateThresholds())
	if !result.Passed {
		t.Errorf("Passed = false, failures = %v; want pass", result.Failures)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v, want none", result.Failures)
	}
}

func TestEvaluateGates_ErrorRate(t *testing.T) {
	metrics := GateMetrics{
		TotalDecisions:  200,
		ErrorCount:      15, // 7.5% > 5%
		DenyCount:       40,
		BaselineAvgCost: 10.0,
		CanaryAvgCost:   11.0,
	}

	result := EvaluateGates(metrics, DefaultGateThresholds())
	if result.Passed {
		t.Fatal("Passed = true, want failure on error rate")
	}
	if len(result.Failures) != 1 || !strings.Contains(result.Failures[0], "error rate") {
		t.Errorf("Failures = %v, want single error-rate reason", result.Failures)
	}
}

func TestEvaluateGates_FailuresAccumulate(t *testing.T) {
	// Every failing gate is reported; evaluation never short-circuits.
	metrics := GateMetrics{
		TotalDecisions:  50,  // below 100
		ErrorCount:      10,  // 20% > 5%
		DenyCount:       25,  // 50% > 30%
		BaselineAvgCost: 10.0,
		CanaryAvgCost:   15.0, // +50% > 20%
	}

	result := EvaluateGates(metrics, DefaultGateThresholds())
	if result.Passed {
		t.Fatal("Passed = true, want failure")
	}
	if len(result.Failures) != 4 {
		t.Fatalf("got %d failures %v, want all 4 gates reported", len(result.Failures), result.Failures)
	}

	wantSubstrings := []string{"sample size", "error rate", "deny rate", "cost regression"}
	for i, want := range wantSubstrings {
		if !strings.Contains(result.Failures[i], want) {
			t.Errorf("Failures[%d] = %q, want it to mention %q", i, result.Failures[i], want)
		}
	}
}

func TestEvaluateGates_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		metrics  GateMetrics
		wantPass bool
	}{
		{
			name:     "exactly at minimum sample size",
			metrics:  GateMetrics{TotalDecisions: 100},
			wantPass: true,
		},
		{
			name:     "exactly at error-rate threshold",
			metrics:  GateMetrics{TotalDecisions: 100, ErrorCount: 5},
			wantPass: true, // thresholds are exceeded only when strictly above
		},
		{
			name:     "exactly at deny-rate threshold",
			metrics:  GateMetrics{TotalDecisions: 100, DenyCount: 30},
			wantPass: true,
		},
		{
			name:     "exactly at cost threshold",
			metrics:  GateMetrics{TotalDecisions: 100, BaselineAvgCost: 10, CanaryAvgCost: 12},
			wantPass: true,
		},
		{
			name:     "just above cost threshold",
			metrics:  GateMetrics{TotalDecisions: 100, BaselineAvgCost: 10, CanaryAvgCost: 12.1},
			wantPass: false,
		},
		{
			name:     "zero baseline skips cost gate",
			metrics:  GateMetrics{TotalDecisions: 100, BaselineAvgCost: 0, CanaryAvgCost: 500},
			wantPass: true,
		},
		{
			name:     "zero decisions fails only sample size",
			metrics:  GateMetrics{TotalDecisions: 0},
			wantPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateGates(tt.metrics, DefaultGateThresholds())
			if result.Passed != tt.wantPass {
				t.Errorf("Passed = %v (failures %v), want %v", result.Passed, result.Failures, tt.wantPass)
			}
		})
	}
}
