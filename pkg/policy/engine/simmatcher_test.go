package engine

import (
	"errors"
	"testing"

	"polaris-hq/polaris/pkg/policy"
)

func TestSimMatcher_Operators(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		expected  interface{}
		context   map[string]interface{}
		wantMatch bool
	}{
		{"greater-equal matches at boundary", ">=risk_score", 90, map[string]interface{}{"risk_score": 90}, true},
		{"greater-equal matches above", ">=risk_score", 90, map[string]interface{}{"risk_score": 95}, true},
		{"greater-equal rejects below", ">=risk_score", 90, map[string]interface{}{"risk_score": 89}, false},
		{"less-equal matches at boundary", "<=data_size_mb", 100, map[string]interface{}{"data_size_mb": 100}, true},
		{"less-equal rejects above", "<=data_size_mb", 100, map[string]interface{}{"data_size_mb": 101}, false},
		{"greater-than strict", ">cost", 10, map[string]interface{}{"cost": 10}, false},
		{"greater-than matches", ">cost", 10, map[string]interface{}{"cost": 10.5}, true},
		{"less-than strict", "<cost", 10, map[string]interface{}{"cost": 10}, false},
		{"less-than matches", "<cost", 10, map[string]interface{}{"cost": 9.9}, true},
		{"equality on strings", "==sender", "unknown", map[string]interface{}{"sender": "unknown"}, true},
		{"equality rejects different string", "==sender", "unknown", map[string]interface{}{"sender": "known"}, false},
		{"equality across numeric types", "==count", 5, map[string]interface{}{"count": float64(5)}, true},
		{"not-equal matches", "!=sender", "unknown", map[string]interface{}{"sender": "known"}, true},
		{"not-equal rejects equal", "!=sender", "unknown", map[string]interface{}{"sender": "unknown"}, false},
		{"bare key is equality", "sender_known", true, map[string]interface{}{"sender_known": true}, true},
		{"missing context key never matches", ">=risk_score", 90, map[string]interface{}{}, false},
		{"ordering with non-numeric actual never matches", ">=risk_score", 90, map[string]interface{}{"risk_score": "high"}, false},
		{"equality is typed, no threshold", "==risk_score", 90, map[string]interface{}{"risk_score": 95}, false},
	}

	m := NewSimMatcher()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &policy.PolicyRule{
				ID: "r1", Agent: "*", Action: "*",
				Conditions: map[string]interface{}{tt.key: tt.expected},
			}

			matched, err := m.Matches(rule, tt.context)
			if err != nil {
				t.Fatalf("Matches() error = %v", err)
			}
			if matched != tt.wantMatch {
				t.Errorf("Matches() = %v, want %v", matched, tt.wantMatch)
			}
		})
	}
}

func TestSimMatcher_EmptyConditionsAreCatchAll(t *testing.T) {
	m := NewSimMatcher()
	rule := &policy.PolicyRule{ID: "r1", Agent: "email_triage", Action: "quarantine"}

	matched, err := m.Matches(rule, map[string]interface{}{"anything": "at all"})
	if err != nil {
		t.Fatalf("Matches() error = %v", err)
	}
	if !matched {
		t.Error("empty conditions should match any context")
	}
}

func TestSimMatcher_UnknownOperator(t *testing.T) {
	m := NewSimMatcher()

	tests := []string{"=field", "!field", "=~field", "~field"}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			rule := &policy.PolicyRule{
				ID: "bad", Agent: "*", Action: "*",
				Conditions: map[string]interface{}{key: 1},
			}

			_, err := m.Matches(rule, map[string]interface{}{"field": 1})
			var opErr *policy.UnknownOperatorError
			if !errors.As(err, &opErr) {
				t.Fatalf("Matches() error = %v, want *policy.UnknownOperatorError", err)
			}
			if opErr.RuleID != "bad" || opErr.Key != key {
				t.Errorf("error identifies rule=%q key=%q, want bad/%q", opErr.RuleID, opErr.Key, key)
			}

			if err := m.ValidateRule(rule); err == nil {
				t.Error("ValidateRule() = nil, want unknown operator error")
			}
		})
	}
}

func TestSimMatcher_MultipleConditionsAllRequired(t *testing.T) {
	m := NewSimMatcher()
	rule := &policy.PolicyRule{
		ID: "r1", Agent: "*", Action: "*",
		Conditions: map[string]interface{}{
			">=risk_score":  80,
			"==sender":      "unknown",
			"<data_size_mb": 50,
		},
	}

	matched, err := m.Matches(rule, map[string]interface{}{
		"risk_score":   85,
		"sender":       "unknown",
		"data_size_mb": 10,
	})
	if err != nil || !matched {
		t.Fatalf("all-satisfied context: matched=%v err=%v, want true/nil", matched, err)
	}

	matched, err = m.Matches(rule, map[string]interface{}{
		"risk_score":   85,
		"sender":       "known", // fails equality
		"data_size_mb": 10,
	})
	if err != nil || matched {
		t.Fatalf("one failing condition: matched=%v err=%v, want false/nil", matched, err)
	}
}
