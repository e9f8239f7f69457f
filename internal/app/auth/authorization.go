package auth

import (
	"context"
	"errors"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

// Ownership errors
var (
	ErrNotJobOwner   = apperrors.NewForbiddenError("Only the job owner or an administrator can perform this action")
	ErrAdminRequired = apperrors.NewForbiddenError("Administrator access required")
)

// AuthorizationService answers owner-or-admin questions about jobs
type AuthorizationService struct {
	jobRepo repositories.IJobRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(jobRepo repositories.IJobRepository) *AuthorizationService {
	return &AuthorizationService{jobRepo: jobRepo}
}

// CanManageJob reports whether identity owns the job or is an admin
func (s *AuthorizationService) CanManageJob(identity models.Identity, job *models.Job) bool {
	return job != nil && identity.CanManage(job.CreatedBy)
}

// ValidateAdmin returns ErrAdminRequired unless identity is an admin
func (s *AuthorizationService) ValidateAdmin(identity models.Identity) error {
	if !identity.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// AuthorizeJob loads the job and checks that identity may manage it.
// A missing job is reported before the ownership check.
func (s *AuthorizationService) AuthorizeJob(ctx context.Context, identity models.Identity, jobID int64) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrJobNotFound) {
			logger.Error().Err(err).Int64("jobID", jobID).Msg("Error getting job in AuthorizeJob")
		}
		return nil, err
	}

	if !s.CanManageJob(identity, job) {
		logger.Warn().
			Int64("jobID", jobID).
			Int64("userID", identity.ID).
			Str("role", string(identity.Role)).
			Msg("Job ownership check failed")
		return nil, ErrNotJobOwner
	}
	return job, nil
}
