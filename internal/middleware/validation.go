package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/pkg/validation"
)

// HandleBindError writes a 400 envelope for a failed ShouldBind call with per-field details
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse("Validation failed", validation.FormatErrors(err)...))
}
