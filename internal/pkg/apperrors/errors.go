package apperrors

import (
	"errors"

	goerrors "github.com/go-errors/errors"
)

// Taxonomy errors. Every error returned to the HTTP layer unwraps to one of these.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal error")
)

// User errors
var (
	ErrUserNotFound       = NewResourceNotFoundError("User not found")
	ErrEmailAlreadyExists = NewConflictError("Email is already registered")
	ErrProtectedAccount   = NewForbiddenError("Admin accounts cannot be deleted")
	ErrPasswordNotSet     = NewBadRequestError("This account signs in with an external provider and has no password")
)

// Job errors
var (
	ErrJobNotFound       = NewResourceNotFoundError("Job not found")
	ErrAlreadyInState    = NewConflictError("Job is already in the requested state")
	ErrInvalidTransition = NewConflictError("Job approval status cannot change from its current state")
)

// Application errors
var (
	ErrApplicationNotFound = NewResourceNotFoundError("Application not found")
	ErrAlreadyApplied      = NewConflictError("You have already applied for this job")
)

// Notification errors
var (
	ErrNotificationNotFound = NewResourceNotFoundError("Notification not found")
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Fields  []FieldError
	Cause   error
	Stack   []byte
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// PublicMessage returns the message that is safe to show to clients
func (e *CustomError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewResourceNotFoundError creates a not found error with a message
func NewResourceNotFoundError(message string) *CustomError {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

// NewForbiddenError creates a permission denied error with a message
func NewForbiddenError(message string) *CustomError {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewBadRequestError creates a bad request error with a message
func NewBadRequestError(message string) *CustomError {
	return NewCustomError(ErrBadRequest, message)
}

// NewUnauthenticatedError creates an authentication error with a message
func NewUnauthenticatedError(message string) *CustomError {
	return NewCustomError(ErrUnauthenticated, message)
}

// NewValidationError creates a validation error carrying field-level detail
func NewValidationError(message string, fields ...FieldError) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Fields:  fields,
	}
}

// NewInternalError wraps an unexpected failure and records where it happened
func NewInternalError(message string, cause error) *CustomError {
	var stack []byte
	var ge *goerrors.Error
	if errors.As(cause, &ge) {
		stack = ge.Stack()
	} else if cause != nil {
		stack = goerrors.Wrap(cause, 1).Stack()
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &CustomError{
		Err:     ErrInternal,
		Message: message,
		Cause:   cause,
		Stack:   stack,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
