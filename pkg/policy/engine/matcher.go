package engine

import (
	"reflect"

	"polaris-hq/polaris/pkg/policy"
)

// LiveMatcher implements the live engine's condition semantics: condition
// keys are plain context keys, non-numeric expected values require exact
// equality, and numeric expected values match when actual >= expected (a
// threshold semantic for scores and sizes). Missing context keys never
// match.
type LiveMatcher struct{}

// NewLiveMatcher creates the live condition matcher.
func NewLiveMatcher() *LiveMatcher {
	return &LiveMatcher{}
}

// Matches reports whether every condition of the rule is satisfied by the
// context. The live DSL has no operator syntax, so no configuration errors
// are possible.
func (m *LiveMatcher) Matches(rule *policy.PolicyRule, context map[string]interface{}) (bool, error) {
	for key, expected := range rule.Conditions {
		actual, ok := context[key]
		if !ok {
			return false, nil
		}

		if expectedNum, numeric := toFloat64(expected); numeric {
			actualNum, ok := toFloat64(actual)
			if !ok || actualNum < expectedNum {
				return false, nil
			}
			continue
		}

		if !valuesEqual(actual, expected) {
			return false, nil
		}
	}
	return true, nil
}

// ValidateRule is a no-op for the live DSL: any context key is a valid
// condition key.
func (m *LiveMatcher) ValidateRule(rule *policy.PolicyRule) error {
	return nil
}

// valuesEqual compares two values, treating cross-type numerics (int vs
// float64, as produced by YAML vs JSON decoding) as comparable.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == expected
	}

	actualNum, aOK := toFloat64(actual)
	expectedNum, eOK := toFloat64(expected)
	if aOK && eOK {
		return actualNum == expectedNum
	}

	return reflect.DeepEqual(actual, expected)
}

// toFloat64 converts any numeric value to float64. JSON decodes numbers to
// float64 and YAML to int, so both arrive here.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
