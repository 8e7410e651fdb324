// Package onboarding implements the approval workflow that takes a salon
// owner from registration to an administrator-approved account.
package onboarding

import (
	"errors"
	"fmt"

	"salon-service/internal/permission"
)

// ErrInvalidTransition is returned when an action is not legal from the
// current account status.
var ErrInvalidTransition = errors.New("invalid onboarding transition")

// SubmitProfile advances an owner who completed their profile and
// verification details. Resubmission while already awaiting approval is a
// no-op; staff accounts are created ACTIVE and keep their status.
func SubmitProfile(status string) (string, error) {
	switch status {
	case permission.StatusPendingDetails:
		return permission.StatusPendingApproval, nil
	case permission.StatusPendingApproval, permission.StatusActive:
		return status, nil
	}
	return "", fmt.Errorf("%w: submit profile from %s", ErrInvalidTransition, status)
}

// Approve activates an account awaiting approval. Approving an already
// active account is idempotent and changes nothing else.
func Approve(status string) (string, error) {
	switch status {
	case permission.StatusPendingApproval, permission.StatusActive:
		return permission.StatusActive, nil
	}
	return "", fmt.Errorf("%w: approve from %s", ErrInvalidTransition, status)
}

// CanReject reports whether an account in the given status may be rejected.
// Rejection hard-deletes the identity and its salon; it is irreversible and
// there is no path back. Active accounts cannot be rejected.
func CanReject(status string) bool {
	switch status {
	case permission.StatusPendingDetails, permission.StatusPendingApproval:
		return true
	}
	return false
}
