package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func newService(secret string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: secret, TokenIssuer: "test"})
}

var employer = models.Identity{ID: 42, Email: "boss@acme.test", Role: models.RoleEmployer}

// ── Issue / Verify ────────────────────────────────────────────────────────────

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := newService("secret")

	issued, err := svc.Issue(employer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.ExpiresIn != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("ExpiresIn = %d, want seven days", issued.ExpiresIn)
	}

	got, err := svc.Verify(issued.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != employer {
		t.Errorf("Verify() = %+v, want %+v", got, employer)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newService("secret").WithClock(func() time.Time {
		return time.Now().Add(-8 * 24 * time.Hour)
	})
	issued, err := svc.Issue(employer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.WithClock(time.Now)
	_, err = svc.Verify(issued.Token)
	if !errors.Is(err, auth.ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
	if !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Error("expired tokens must unwrap to ErrTokenInvalid")
	}
}

func TestVerify_StillValidBeforeExpiry(t *testing.T) {
	svc := newService("secret").WithClock(func() time.Time {
		return time.Now().Add(-6 * 24 * time.Hour)
	})
	issued, err := svc.Issue(employer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.WithClock(time.Now)
	if _, err := svc.Verify(issued.Token); err != nil {
		t.Errorf("six-day-old token should verify, got %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	issued, err := newService("secret").Issue(employer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(issued.Token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		svc   *auth.JWTService
	}{
		{"empty", "", newService("secret")},
		{"malformed", "not-a-token", newService("secret")},
		{"wrong secret", issued.Token, newService("other")},
		{"bad signature", tampered, newService("secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Verify(tt.token)
			if !errors.Is(err, apperrors.ErrTokenInvalid) {
				t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

// ── ExtractBearerToken ────────────────────────────────────────────────────────

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer abc", "abc", nil},
		{"", "", auth.ErrMissingToken},
		{"Basic dXNlcg==", "", auth.ErrInvalidToken},
		{"Bearer ", "", auth.ErrInvalidToken},
		{"abc.def.ghi", "", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		got, err := auth.ExtractBearerToken(tt.header)
		if got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("ExtractBearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
		}
		if tt.wantErr == nil && err != nil {
			t.Errorf("ExtractBearerToken(%q) unexpected error %v", tt.header, err)
		}
	}
}

// ── Passwords ─────────────────────────────────────────────────────────────────

func TestBcryptHasher(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Compare("correct horse", hash) {
		t.Error("matching password rejected")
	}
	if h.Compare("wrong horse", hash) {
		t.Error("wrong password accepted")
	}
}
