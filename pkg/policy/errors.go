package policy

import "fmt"

// RuleValidationError indicates a malformed rule or bundle. Validation
// failures are raised before any matching is attempted, never silently
// skipped.
type RuleValidationError struct {
	RuleID  string
	Message string
}

// Error returns the error message.
func (e *RuleValidationError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("rule %q: %s", e.RuleID, e.Message)
	}
	return e.Message
}

// UnknownOperatorError indicates a simulator condition key carries an
// unrecognized comparison operator. This is a configuration error, not a
// silent non-match: it is surfaced to the caller instead of defaulting to
// any decision.
type UnknownOperatorError struct {
	RuleID string
	Key    string
}

// Error returns the error message.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("rule %q: unknown comparison operator in condition key %q", e.RuleID, e.Key)
}
