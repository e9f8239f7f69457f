package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", apperrors.ErrJobNotFound, http.StatusNotFound, "Job not found"},
		{"wrapped conflict", fmt.Errorf("approve: %w", apperrors.ErrAlreadyInState), http.StatusConflict, "Job is already in the requested state"},
		{"forbidden", apperrors.ErrProtectedAccount, http.StatusForbidden, "Admin accounts cannot be deleted"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"validation", apperrors.NewValidationError("Validation failed", apperrors.FieldError{Field: "rejection_reason", Message: "too short"}), http.StatusBadRequest, "Validation failed"},
		{"internal custom", apperrors.NewInternalError("db down", errors.New("dial tcp")), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { HandleAPIError(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body struct {
				Success bool                   `json:"success"`
				Message string                 `json:"message"`
				Errors  []apperrors.FieldError `json:"errors"`
				Debug   any                    `json:"debug"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Success || body.Message != tt.wantMessage {
				t.Errorf("body = %+v, want message %q", body, tt.wantMessage)
			}
			if body.Debug != nil {
				t.Error("debug info must not be exposed outside debug mode")
			}
			if tt.name == "validation" && (len(body.Errors) != 1 || body.Errors[0].Field != "rejection_reason") {
				t.Errorf("errors = %+v", body.Errors)
			}
		})
	}
}
