package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/services"
	"github.com/yigit/jobboard/internal/middleware"
)

// AdminController handles the admin console endpoints
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// Dashboard godoc
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.DashboardStats}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	stats, err := c.adminService.Dashboard(ctx.Request.Context(), admin)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Matches name or email"
// @Param role query string false "user, employer or admin"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var query dto.AdminUserQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.adminService.ListUsers(ctx.Request.Context(), admin, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Description Admins cannot demote themselves
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	userID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.adminService.UpdateUserRole(ctx.Request.Context(), admin, userID, models.RoleType(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("adminID", admin.ID).Int64("userID", userID).Str("role", req.Role).Msg("User role changed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Role updated"))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes the account with its jobs, applications and notifications. Admin accounts cannot be deleted.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	userID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.adminService.DeleteUser(ctx.Request.Context(), admin, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("adminID", admin.ID).Int64("userID", userID).Msg("User deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted"))
}

// ListJobs godoc
// @Summary List all jobs
// @Description Every job regardless of approval or activity, with the submitter's email
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Matches title, company or description"
// @Param approval_status query string false "pending, approved or rejected"
// @Param is_active query bool false "Activity filter"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/jobs [get]
func (c *AdminController) ListJobs(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var query dto.AdminJobQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.adminService.ListJobs(ctx.Request.Context(), admin, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// ToggleJob godoc
// @Summary Flip a job's active flag
// @Description Only approved jobs can be activated
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/jobs/{id}/toggle [patch]
func (c *AdminController) ToggleJob(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	jobID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	job, err := c.adminService.ToggleJob(ctx.Request.Context(), admin, jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job updated"))
}
