// Package approval models the lifecycle of a job posting from submission
// to an administrator's decision.
package approval

import (
	"fmt"
	"strings"

	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// Status is the approval state of a job posting.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusLegacyApproved marks rows created before approval existed (NULL column).
	// They behave as approved for visibility.
	StatusLegacyApproved Status = "legacy_approved"
)

// Decision is an administrator's verdict on a pending job.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// MinRejectionReasonLength is the shortest accepted rejection reason.
const MinRejectionReasonLength = 10

// outcomes maps each decision to the state it produces. Decisions are only
// valid from StatusPending.
var outcomes = map[Decision]Status{
	DecisionApprove: StatusApproved,
	DecisionReject:  StatusRejected,
}

// AllStatuses returns the stored statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected}
}

// ParseStatus converts a query or body value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown approval status %q", s)
}

// FromColumn maps the nullable database column to a Status.
func FromColumn(col *string) Status {
	if col == nil {
		return StatusLegacyApproved
	}
	return Status(*col)
}

// Column maps a Status back to its database representation.
func (s Status) Column() *string {
	if s == StatusLegacyApproved {
		return nil
	}
	v := string(s)
	return &v
}

// IsApproved reports whether the status grants public visibility.
func (s Status) IsApproved() bool {
	return s == StatusApproved || s == StatusLegacyApproved
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// Next returns the state reached by applying decision to from.
// Repeating the decision that produced the current state yields ErrAlreadyInState;
// any other decision on a terminal state yields ErrInvalidTransition.
func Next(from Status, decision Decision) (Status, error) {
	to, ok := outcomes[decision]
	if !ok {
		return from, fmt.Errorf("unknown decision %q", decision)
	}

	switch {
	case from == StatusPending:
		return to, nil
	case from == to, from == StatusLegacyApproved && to == StatusApproved:
		return from, apperrors.ErrAlreadyInState
	default:
		return from, apperrors.ErrInvalidTransition
	}
}

// IsPubliclyVisible is the single rule for the public job listing.
func IsPubliclyVisible(isActive bool, s Status) bool {
	return isActive && s.IsApproved()
}

// ValidateRejectionReason checks a rejection reason before any state change.
func ValidateRejectionReason(reason string) error {
	if len([]rune(strings.TrimSpace(reason))) < MinRejectionReasonLength {
		return apperrors.NewValidationError("Rejection reason is too short", apperrors.FieldError{
			Field:   "rejection_reason",
			Message: fmt.Sprintf("rejection_reason must be at least %d characters", MinRejectionReasonLength),
		})
	}
	return nil
}
