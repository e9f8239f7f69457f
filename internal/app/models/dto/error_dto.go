package dto

import (
	"time"

	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// ErrorCode represents standardized error codes, exposed only in development mode
type ErrorCode string

const (
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_002"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_003"
	ErrorCodeForbidden          ErrorCode = "AUTH_004"

	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"

	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeBadRequest       ErrorCode = "VAL_002"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// DebugInfo carries internal detail in development mode
type DebugInfo struct {
	Code  ErrorCode `json:"code"`
	Cause string    `json:"cause,omitempty"`
	Stack string    `json:"stack,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success   bool                   `json:"success" example:"false"`
	Message   string                 `json:"message" example:"Job not found"`
	Errors    []apperrors.FieldError `json:"errors,omitempty"`
	Debug     *DebugInfo             `json:"debug,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewErrorResponse creates a failure envelope
func NewErrorResponse(message string, fields ...apperrors.FieldError) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Message:   message,
		Errors:    fields,
		Timestamp: time.Now(),
	}
}

// WithDebug attaches development-only details
func (r *ErrorResponse) WithDebug(debug *DebugInfo) *ErrorResponse {
	r.Debug = debug
	return r
}
