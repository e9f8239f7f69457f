package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/services"
	"github.com/yigit/jobboard/internal/middleware"
)

// ApprovalController exposes the admin moderation queue
type ApprovalController struct {
	approvalService services.ApprovalService
}

// NewApprovalController creates a new ApprovalController
func NewApprovalController(approvalService services.ApprovalService) *ApprovalController {
	return &ApprovalController{approvalService: approvalService}
}

// ListPending godoc
// @Summary List jobs awaiting approval
// @Tags approval
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Job}
// @Failure 403 {object} dto.ErrorResponse
// @Router /jobs/pending/list [get]
func (c *ApprovalController) ListPending(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	jobs, err := c.approvalService.ListPending(ctx.Request.Context(), admin)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}

// Approve godoc
// @Summary Approve a pending job
// @Description Approves and activates the job, then notifies the owner. Approving an approved job returns 409.
// @Tags approval
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already in state or invalid transition"
// @Router /jobs/{id}/approve [post]
func (c *ApprovalController) Approve(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	job, err := c.approvalService.Approve(ctx.Request.Context(), admin, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job approved"))
}

// Reject godoc
// @Summary Reject a pending job
// @Description Rejects the job with a reason of at least 10 characters, then notifies the owner
// @Tags approval
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.RejectJobRequest true "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse "Reason missing or too short"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /jobs/{id}/reject [post]
func (c *ApprovalController) Reject(ctx *gin.Context) {
	admin, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.RejectJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	job, err := c.approvalService.Reject(ctx.Request.Context(), admin, id, req.RejectionReason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job rejected"))
}
