package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: the first matching taxonomy error wins.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrTokenInvalid, http.StatusForbidden, dto.ErrorCodeInvalidToken, "Invalid or expired token"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict"},
}

// HandleAPIError maps an error to its status code and writes the failure envelope.
// Unknown errors become 500 with a generic message; details are only exposed in debug mode.
func HandleAPIError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := dto.ErrorCodeInternalServer
	message := "Internal server error"

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, code, message = m.status, m.code, m.message
			break
		}
	}

	var customErr *apperrors.CustomError
	hasCustom := errors.As(err, &customErr)
	if hasCustom && status != http.StatusInternalServerError {
		if msg := customErr.PublicMessage(); msg != "" {
			message = msg
		}
	}

	resp := dto.NewErrorResponse(message)
	if hasCustom && len(customErr.Fields) > 0 {
		resp.Errors = customErr.Fields
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled request error")
	}

	if gin.Mode() == gin.DebugMode {
		debug := &dto.DebugInfo{Code: code, Cause: err.Error()}
		if hasCustom && len(customErr.Stack) > 0 {
			debug.Stack = string(customErr.Stack)
		}
		resp.WithDebug(debug)
	}

	c.AbortWithStatusJSON(status, resp)
}
