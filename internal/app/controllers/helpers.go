// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/middleware"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// parseIDParam parses a positive ID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("Invalid " + paramName)
	}
	return id, nil
}

// identityOrAbort returns the authenticated identity or writes a 401 envelope
func identityOrAbort(ctx *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
	}
	return identity, ok
}
