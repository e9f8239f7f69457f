package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/services"
	"github.com/yigit/jobboard/internal/middleware"
)

// ApplicationController handles job applications
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// Apply godoc
// @Summary Apply for a job
// @Description One application per user and job. The job must be publicly visible.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.ApplyRequest false "Cover letter and resume link"
// @Success 201 {object} dto.APIResponse{data=models.JobApplication}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /jobs/{id}/apply [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	jobID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ApplyRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}
	}

	application, err := c.applicationService.Apply(ctx.Request.Context(), identity, jobID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(application, "Application submitted"))
}

// ListMine godoc
// @Summary List my applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationWithJob}
// @Router /jobs/my-applications [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	applications, err := c.applicationService.ListMine(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(applications, ""))
}

// ListForJob godoc
// @Summary List applications for a job
// @Description Job owner or admin only
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationWithApplicant}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id}/applications [get]
func (c *ApplicationController) ListForJob(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	jobID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	applications, err := c.applicationService.ListForJob(ctx.Request.Context(), identity, jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(applications, ""))
}

// UpdateStatus godoc
// @Summary Change an application's status
// @Description Job owner or admin only
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param applicationId path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.JobApplication}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id}/applications/{applicationId} [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	jobID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	applicationID, err := parseIDParam(ctx, "applicationId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	application, err := c.applicationService.UpdateStatus(ctx.Request.Context(), identity, jobID, applicationID, models.ApplicationStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(application, "Application updated"))
}
