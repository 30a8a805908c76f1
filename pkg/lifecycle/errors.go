package lifecycle

import "fmt"

// ActivationReason is the machine-readable reason code on an
// ActivationError. Callers branch on the reason, not just on failure.
type ActivationReason string

const (
	// ReasonApprovalRequired: activation attempted without an approval id.
	ReasonApprovalRequired ActivationReason = "approval_required"

	// ReasonBundleNotFound: the bundle id does not resolve.
	ReasonBundleNotFound ActivationReason = "bundle_not_found"

	// ReasonNotActive: the operation requires the bundle to be active.
	ReasonNotActive ActivationReason = "not_active"

	// ReasonAlreadyAtTarget: promotion to the current canary percentage.
	ReasonAlreadyAtTarget ActivationReason = "already_at_target"

	// ReasonNoPreviousVersion: rollback with no earlier activated bundle.
	ReasonNoPreviousVersion ActivationReason = "no_previous_version"

	// ReasonInvalidPercentage: canary percentage outside 1-100.
	ReasonInvalidPercentage ActivationReason = "invalid_percentage"
)

// ActivationError is a typed lifecycle state error. The Reason field
// distinguishes the failure mode; Message is the human-readable text.
type ActivationError struct {
	Reason   ActivationReason
	BundleID string
	Message  string
}

// Error returns the error message.
func (e *ActivationError) Error() string {
	if e.BundleID != "" {
		return fmt.Sprintf("bundle %s: %s", e.BundleID, e.Message)
	}
	return e.Message
}

func approvalRequiredErr(bundleID string) *ActivationError {
	return &ActivationError{
		Reason:   ReasonApprovalRequired,
		BundleID: bundleID,
		Message:  "Approval required to activate a policy bundle",
	}
}

func bundleNotFoundErr(bundleID string) *ActivationError {
	return &ActivationError{
		Reason:   ReasonBundleNotFound,
		BundleID: bundleID,
		Message:  fmt.Sprintf("bundle %q not found", bundleID),
	}
}

func notActiveErr(bundleID, message string) *ActivationError {
	return &ActivationError{
		Reason:   ReasonNotActive,
		BundleID: bundleID,
		Message:  message,
	}
}

func alreadyAtTargetErr(bundleID string, pct int) *ActivationError {
	return &ActivationError{
		Reason:   ReasonAlreadyAtTarget,
		BundleID: bundleID,
		Message:  fmt.Sprintf("canary already at target percentage %d", pct),
	}
}

func noPreviousVersionErr(bundleID string) *ActivationError {
	return &ActivationError{
		Reason:   ReasonNoPreviousVersion,
		BundleID: bundleID,
		Message:  "no previous version to roll back to",
	}
}

func invalidPercentageErr(bundleID string, pct int) *ActivationError {
	return &ActivationError{
		Reason:   ReasonInvalidPercentage,
		BundleID: bundleID,
		Message:  fmt.Sprintf("canary percentage must be between 1 and 100, got %d", pct),
	}
}
