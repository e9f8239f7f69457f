package approval_test

import (
	"errors"
	"testing"

	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// ── Next ──────────────────────────────────────────────────────────────────────

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		from     approval.Status
		decision approval.Decision
		want     approval.Status
		wantErr  error
	}{
		{"pending approve", approval.StatusPending, approval.DecisionApprove, approval.StatusApproved, nil},
		{"pending reject", approval.StatusPending, approval.DecisionReject, approval.StatusRejected, nil},
		{"approve twice", approval.StatusApproved, approval.DecisionApprove, approval.StatusApproved, apperrors.ErrAlreadyInState},
		{"reject twice", approval.StatusRejected, approval.DecisionReject, approval.StatusRejected, apperrors.ErrAlreadyInState},
		{"approved then reject", approval.StatusApproved, approval.DecisionReject, approval.StatusApproved, apperrors.ErrInvalidTransition},
		{"rejected then approve", approval.StatusRejected, approval.DecisionApprove, approval.StatusRejected, apperrors.ErrInvalidTransition},
		{"legacy approve", approval.StatusLegacyApproved, approval.DecisionApprove, approval.StatusLegacyApproved, apperrors.ErrAlreadyInState},
		{"legacy reject", approval.StatusLegacyApproved, approval.DecisionReject, approval.StatusLegacyApproved, apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := approval.Next(tt.from, tt.decision)
			if got != tt.want {
				t.Errorf("Next() state = %q, want %q", got, tt.want)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("Next() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Next() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNext_UnknownDecision(t *testing.T) {
	if _, err := approval.Next(approval.StatusPending, approval.Decision("escalate")); err == nil {
		t.Error("expected error for unknown decision")
	}
}

// ── Column mapping ────────────────────────────────────────────────────────────

func TestColumnRoundTrip(t *testing.T) {
	if got := approval.FromColumn(nil); got != approval.StatusLegacyApproved {
		t.Errorf("FromColumn(nil) = %q, want legacy_approved", got)
	}
	if approval.StatusLegacyApproved.Column() != nil {
		t.Error("legacy status must map back to NULL")
	}
	for _, s := range approval.AllStatuses() {
		col := s.Column()
		if col == nil || approval.FromColumn(col) != s {
			t.Errorf("round trip failed for %q", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := approval.ParseStatus(" Approved "); err != nil || s != approval.StatusApproved {
		t.Errorf("ParseStatus(Approved) = %q, %v", s, err)
	}
	if _, err := approval.ParseStatus("legacy_approved"); err == nil {
		t.Error("legacy status is not a client-facing value")
	}
}

// ── Visibility ────────────────────────────────────────────────────────────────

func TestIsPubliclyVisible(t *testing.T) {
	tests := []struct {
		active bool
		status approval.Status
		want   bool
	}{
		{true, approval.StatusApproved, true},
		{true, approval.StatusLegacyApproved, true},
		{true, approval.StatusPending, false},
		{true, approval.StatusRejected, false},
		{false, approval.StatusApproved, false},
		{false, approval.StatusLegacyApproved, false},
	}
	for _, tt := range tests {
		if got := approval.IsPubliclyVisible(tt.active, tt.status); got != tt.want {
			t.Errorf("IsPubliclyVisible(%v, %q) = %v, want %v", tt.active, tt.status, got, tt.want)
		}
	}
}

// ── Rejection reason ──────────────────────────────────────────────────────────

func TestValidateRejectionReason(t *testing.T) {
	if err := approval.ValidateRejectionReason("Too short"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("9 characters should fail validation, got %v", err)
	}
	if err := approval.ValidateRejectionReason("          x"); err == nil {
		t.Error("whitespace must not count towards the minimum")
	}
	if err := approval.ValidateRejectionReason("Insufficient detail provided"); err != nil {
		t.Errorf("valid reason rejected: %v", err)
	}
}
