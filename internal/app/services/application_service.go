package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/sanitize"
	"github.com/yigit/jobboard/internal/pkg/validation"
)

var (
	errInvalidResumeURL = apperrors.NewValidationError("Invalid resume URL", apperrors.FieldError{
		Field:   "resume_url",
		Message: "resume_url must be a valid URL",
	})
	errInvalidApplicationStatus = apperrors.NewValidationError("Invalid application status", apperrors.FieldError{
		Field:   "status",
		Message: "status must be one of: pending reviewed accepted rejected",
	})
)

// ApplicationService handles job applications
type ApplicationService interface {
	Apply(ctx context.Context, identity models.Identity, jobID int64, req *dto.ApplyRequest) (*models.JobApplication, error)
	ListMine(ctx context.Context, identity models.Identity) ([]models.ApplicationWithJob, error)
	ListForJob(ctx context.Context, identity models.Identity, jobID int64) ([]models.ApplicationWithApplicant, error)
	UpdateStatus(ctx context.Context, identity models.Identity, jobID, applicationID int64, status models.ApplicationStatus) (*models.JobApplication, error)
}

type applicationServiceImpl struct {
	applicationRepo repositories.IApplicationRepository
	jobRepo         repositories.IJobRepository
	authzService    *appauth.AuthorizationService
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applicationRepo repositories.IApplicationRepository,
	jobRepo repositories.IJobRepository,
	authzService *appauth.AuthorizationService,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		authzService:    authzService,
		logger:          logger,
	}
}

// Apply records the caller's application. Only publicly visible jobs accept applications.
func (s *applicationServiceImpl) Apply(ctx context.Context, identity models.Identity, jobID int64, req *dto.ApplyRequest) (*models.JobApplication, error) {
	var resumeURL *string
	if req.ResumeURL != nil {
		if u := strings.TrimSpace(*req.ResumeURL); u != "" {
			if !validation.IsURL(u) {
				return nil, errInvalidResumeURL
			}
			resumeURL = &u
		}
	}
	var coverLetter *string
	if req.CoverLetter != nil {
		if c := sanitize.Text(*req.CoverLetter); c != "" {
			coverLetter = &c
		}
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsPubliclyVisible() {
		return nil, apperrors.ErrJobNotFound
	}

	app, err := s.applicationRepo.Create(ctx, models.NewApplication{
		JobID:       jobID,
		UserID:      identity.ID,
		CoverLetter: coverLetter,
		ResumeURL:   resumeURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("applicationID", app.ID).Int64("jobID", jobID).Int64("userID", identity.ID).Msg("Application submitted")
	return app, nil
}

// ListMine returns the caller's applications with job summaries
func (s *applicationServiceImpl) ListMine(ctx context.Context, identity models.Identity) ([]models.ApplicationWithJob, error) {
	return s.applicationRepo.ListForUser(ctx, identity.ID)
}

// ListForJob returns the applications of a job to its owner or an admin
func (s *applicationServiceImpl) ListForJob(ctx context.Context, identity models.Identity, jobID int64) ([]models.ApplicationWithApplicant, error) {
	if _, err := s.authzService.AuthorizeJob(ctx, identity, jobID); err != nil {
		return nil, err
	}
	return s.applicationRepo.ListForJob(ctx, jobID)
}

// UpdateStatus moves an application of the job to a new review state
func (s *applicationServiceImpl) UpdateStatus(ctx context.Context, identity models.Identity, jobID, applicationID int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.Valid() {
		return nil, errInvalidApplicationStatus
	}
	if _, err := s.authzService.AuthorizeJob(ctx, identity, jobID); err != nil {
		return nil, err
	}

	app, err := s.applicationRepo.UpdateStatus(ctx, applicationID, jobID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationID", applicationID).
		Int64("jobID", jobID).
		Str("status", string(status)).
		Msg("Application status updated")
	return app, nil
}
