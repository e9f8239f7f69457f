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

// JobController handles job posting operations
type JobController struct {
	jobService services.JobService
	logger     zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService, logger zerolog.Logger) *JobController {
	return &JobController{
		jobService: jobService,
		logger:     logger,
	}
}

// List godoc
// @Summary List public jobs
// @Description Returns active, approved jobs (and legacy rows without an approval status), newest first
// @Tags jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param keyword query string false "Matches title, company or description"
// @Param location query string false "Location substring"
// @Param job_type query string false "full-time, part-time, contract or internship"
// @Param work_style query string false "remote, hybrid or onsite"
// @Param experience_level query string false "entry, mid, senior or executive"
// @Param salary_min query int false "Lower salary bound"
// @Param salary_max query int false "Upper salary bound"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	var query dto.JobListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.jobService.List(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// Get godoc
// @Summary Get a job
// @Description Public callers only see visible jobs. The owner and admins also see pending, rejected and inactive jobs.
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [get]
func (c *JobController) Get(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var viewer *models.Identity
	if identity, ok := middleware.CurrentIdentity(ctx); ok {
		viewer = &identity
	}

	job, err := c.jobService.Get(ctx.Request.Context(), viewer, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, ""))
}

// Create godoc
// @Summary Submit a job
// @Description New jobs start pending and inactive until an admin approves them
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job data"
// @Success 201 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Employer or admin role required"
// @Router /jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	job, err := c.jobService.Create(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("jobID", job.ID).Int64("userID", identity.ID).Msg("Job submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(job, "Job submitted for approval"))
}

// ListMine godoc
// @Summary List my jobs
// @Description Jobs created by the caller in every approval state
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /jobs/my-jobs [get]
func (c *JobController) ListMine(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var query dto.PageQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.jobService.ListMine(ctx.Request.Context(), identity, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// Update godoc
// @Summary Update a job
// @Description Owner or admin only. Approval status cannot be changed here and a job can only be activated once approved.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.UpdateJobRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [put]
func (c *JobController) Update(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	job, err := c.jobService.Update(ctx.Request.Context(), identity, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job updated"))
}

// Delete godoc
// @Summary Delete a job
// @Description Soft delete: the job is deactivated and disappears from public listings
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Job deleted"))
}
