package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
	"github.com/yigit/jobboard/internal/pkg/sanitize"
)

// Job errors
var (
	ErrActivationRequiresApproval = apperrors.NewBadRequestError("Only approved jobs can be activated")
	ErrNothingToUpdate            = apperrors.NewValidationError("No updatable fields were provided")
)

// JobService handles job postings outside the approval decision
type JobService interface {
	Create(ctx context.Context, identity models.Identity, req *dto.CreateJobRequest) (*models.Job, error)
	// Get returns a job visible to viewer; viewer is nil for anonymous requests
	Get(ctx context.Context, viewer *models.Identity, id int64) (*models.Job, error)
	List(ctx context.Context, query *dto.JobListQuery) (*dto.PaginatedResponse, error)
	ListMine(ctx context.Context, identity models.Identity, query *dto.PageQuery) (*dto.PaginatedResponse, error)
	Update(ctx context.Context, identity models.Identity, id int64, req *dto.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, identity models.Identity, id int64) error
}

type jobServiceImpl struct {
	jobRepo      repositories.IJobRepository
	authzService *appauth.AuthorizationService
	logger       zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(jobRepo repositories.IJobRepository, authzService *appauth.AuthorizationService, logger zerolog.Logger) JobService {
	return &jobServiceImpl{
		jobRepo:      jobRepo,
		authzService: authzService,
		logger:       logger,
	}
}

func requiredText(field, value string) (string, *apperrors.FieldError) {
	clean := sanitize.Text(value)
	if clean == "" {
		return "", &apperrors.FieldError{Field: field, Message: field + " is required"}
	}
	return clean, nil
}

func validateSalaryRange(lo, hi *int32) error {
	if lo != nil && hi != nil && *lo > *hi {
		return apperrors.NewValidationError("Invalid salary range", apperrors.FieldError{
			Field:   "salary_min",
			Message: "salary_min must not be greater than salary_max",
		})
	}
	return nil
}

// cleanRequirements sanitizes items and drops the ones left empty
func cleanRequirements(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range sanitize.Texts(items) {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Create stores a submission. New jobs are pending and inactive until an admin approves them.
func (s *jobServiceImpl) Create(ctx context.Context, identity models.Identity, req *dto.CreateJobRequest) (*models.Job, error) {
	job := req.ToModel()

	var fields []apperrors.FieldError
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"title", &job.Title},
		{"company", &job.Company},
		{"location", &job.Location},
		{"description", &job.Description},
	} {
		clean, fe := requiredText(f.name, *f.dst)
		if fe != nil {
			fields = append(fields, *fe)
			continue
		}
		*f.dst = clean
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields...)
	}
	job.Requirements = cleanRequirements(job.Requirements)

	if err := validateSalaryRange(job.SalaryMin, job.SalaryMax); err != nil {
		return nil, err
	}

	created, err := s.jobRepo.Create(ctx, job, identity.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("jobID", created.ID).
		Int64("ownerID", identity.ID).
		Msg("Job submitted for approval")
	return created, nil
}

// Get hides jobs that are not publicly visible from everyone except the owner and admins
func (s *jobServiceImpl) Get(ctx context.Context, viewer *models.Identity, id int64) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	canManage := viewer != nil && s.authzService.CanManageJob(*viewer, job)
	if !job.IsPubliclyVisible() && !canManage {
		return nil, apperrors.ErrJobNotFound
	}
	if viewer == nil || !viewer.IsAdmin() {
		job.SubmitterEmail = ""
	}
	return job, nil
}

// List is the public listing
func (s *jobServiceImpl) List(ctx context.Context, query *dto.JobListQuery) (*dto.PaginatedResponse, error) {
	filter := query.ToFilter()
	filter.PublicOnly = true
	filter.IncludeSubmitter = false

	page := helpers.PageFromQuery(query.PageQuery)
	jobs, total, err := s.jobRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	resp := helpers.NewPaginatedResponse(jobs, total, page)
	return &resp, nil
}

// ListMine returns the caller's jobs in every approval state
func (s *jobServiceImpl) ListMine(ctx context.Context, identity models.Identity, query *dto.PageQuery) (*dto.PaginatedResponse, error) {
	owner := identity.ID
	page := helpers.PageFromQuery(*query)
	jobs, total, err := s.jobRepo.List(ctx, models.JobFilter{CreatedBy: &owner}, page)
	if err != nil {
		return nil, err
	}
	resp := helpers.NewPaginatedResponse(jobs, total, page)
	return &resp, nil
}

func sanitizePatch(patch *models.JobPatch) error {
	var fields []apperrors.FieldError
	for _, f := range []struct {
		name string
		ptr  **string
	}{
		{"title", &patch.Title},
		{"company", &patch.Company},
		{"location", &patch.Location},
		{"description", &patch.Description},
	} {
		if *f.ptr == nil {
			continue
		}
		clean, fe := requiredText(f.name, **f.ptr)
		if fe != nil {
			fields = append(fields, *fe)
			continue
		}
		*f.ptr = &clean
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Validation failed", fields...)
	}
	patch.Requirements = cleanRequirements(patch.Requirements)
	return nil
}

// Update applies the allow-listed patch for the owner or an admin
func (s *jobServiceImpl) Update(ctx context.Context, identity models.Identity, id int64, req *dto.UpdateJobRequest) (*models.Job, error) {
	patch := req.ToPatch()
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if err := sanitizePatch(&patch); err != nil {
		return nil, err
	}

	job, err := s.authzService.AuthorizeJob(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	merged := *job
	patch.ApplyTo(&merged)
	if err := validateSalaryRange(merged.SalaryMin, merged.SalaryMax); err != nil {
		return nil, err
	}
	if patch.IsActive != nil && *patch.IsActive && !job.IsActive && !job.ApprovalStatus.IsApproved() {
		return nil, ErrActivationRequiresApproval
	}

	updated, err := s.jobRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("jobID", id).
		Int64("userID", identity.ID).
		Str("fields", strings.Join(patchFields(patch), ",")).
		Msg("Job updated")
	return updated, nil
}

func patchFields(patch models.JobPatch) []string {
	fields := make([]string, 0, 11)
	for col := range repositories.JobPatchSetMap(patch) {
		fields = append(fields, col)
	}
	sort.Strings(fields)
	return fields
}

// Delete soft-deletes the job for the owner or an admin
func (s *jobServiceImpl) Delete(ctx context.Context, identity models.Identity, id int64) error {
	if _, err := s.authzService.AuthorizeJob(ctx, identity, id); err != nil {
		return err
	}
	if err := s.jobRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("jobID", id).Int64("userID", identity.ID).Msg("Job deactivated")
	return nil
}
