package engine

import (
	"strings"

	"polaris-hq/polaris/pkg/policy"
)

// Comparison operators recognized by the simulation condition DSL. Each
// condition key encodes its comparator as a prefix, e.g. ">=risk_score".
const (
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpGreaterThan  = ">"
	OpLessThan     = "<"
	OpEqual        = "=="
	OpNotEqual     = "!="
)

// SimMatcher implements the simulator's stricter condition DSL: condition
// keys carry a six-operator comparator prefix and comparisons are exact and
// typed. A bare key with no prefix is shorthand for equality. A key whose
// leading operator characters do not form a known comparator is a
// configuration error, surfaced as *policy.UnknownOperatorError rather than
// silently treated as a non-match.
type SimMatcher struct{}

// NewSimMatcher creates the simulation condition matcher.
func NewSimMatcher() *SimMatcher {
	return &SimMatcher{}
}

// Matches reports whether every condition of the rule is satisfied by the
// context. A rule with empty conditions is a catch-all for its agent/action
// pair.
func (m *SimMatcher) Matches(rule *policy.PolicyRule, context map[string]interface{}) (bool, error) {
	for rawKey, expected := range rule.Conditions {
		op, key, err := parseConditionKey(rule.ID, rawKey)
		if err != nil {
			return false, err
		}

		actual, ok := context[key]
		if !ok {
			return false, nil
		}

		if !compare(op, actual, expected) {
			return false, nil
		}
	}
	return true, nil
}

// ValidateRule rejects condition keys with unknown comparison operators.
// The simulator runs this over a whole candidate rule set before any
// matching is attempted.
func (m *SimMatcher) ValidateRule(rule *policy.PolicyRule) error {
	for rawKey := range rule.Conditions {
		if _, _, err := parseConditionKey(rule.ID, rawKey); err != nil {
			return err
		}
	}
	return nil
}

// parseConditionKey splits a condition key into its comparator and the
// underlying context key. Two-character operators are tried before their
// one-character prefixes so ">=" is never read as ">" followed by "=".
func parseConditionKey(ruleID, rawKey string) (op, key string, err error) {
	for _, candidate := range []string{OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual, OpGreaterThan, OpLessThan} {
		if strings.HasPrefix(rawKey, candidate) {
			return candidate, rawKey[len(candidate):], nil
		}
	}

	// A leading operator character that did not form a known comparator
	// (e.g. "=field" or "=~field") is a configuration error.
	if strings.IndexAny(rawKey, "<>=!~") == 0 {
		return "", "", &policy.UnknownOperatorError{RuleID: ruleID, Key: rawKey}
	}

	// Bare keys compare for equality.
	return OpEqual, rawKey, nil
}

// compare applies the comparator with exact typed semantics: equality works
// across any comparable types (numerics compared numerically), ordering
// operators require both sides to be numeric and never match otherwise.
func compare(op string, actual, expected interface{}) bool {
	switch op {
	case OpEqual:
		return valuesEqual(actual, expected)
	case OpNotEqual:
		return !valuesEqual(actual, expected)
	}

	actualNum, aOK := toFloat64(actual)
	expectedNum, eOK := toFloat64(expected)
	if !aOK || !eOK {
		return false
	}

	switch op {
	case OpGreaterEqual:
		return actualNum >= expectedNum
	case OpLessEqual:
		return actualNum <= expectedNum
	case OpGreaterThan:
		return actualNum > expectedNum
	case OpLessThan:
		return actualNum < expectedNum
	default:
		return false
	}
}
