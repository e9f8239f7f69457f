package services

import (
	"context"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
)

// Admin errors
var (
	ErrSelfDemotion = apperrors.NewBadRequestError("Administrators cannot change their own role")
	ErrSelfDeletion = apperrors.NewBadRequestError("Administrators cannot delete their own account")
)

// AdminService backs the administration endpoints
type AdminService interface {
	Dashboard(ctx context.Context, admin models.Identity) (*models.DashboardStats, error)
	ListUsers(ctx context.Context, admin models.Identity, query *dto.AdminUserQuery) (*dto.PaginatedResponse, error)
	UpdateUserRole(ctx context.Context, admin models.Identity, userID int64, role models.RoleType) (*models.User, error)
	DeleteUser(ctx context.Context, admin models.Identity, userID int64) error
	ListJobs(ctx context.Context, admin models.Identity, query *dto.AdminJobQuery) (*dto.PaginatedResponse, error)
	ToggleJob(ctx context.Context, admin models.Identity, jobID int64) (*models.Job, error)
}

type adminServiceImpl struct {
	userRepo        repositories.IUserRepository
	jobRepo         repositories.IJobRepository
	applicationRepo repositories.IApplicationRepository
	authzService    *appauth.AuthorizationService
	logger          zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo repositories.IUserRepository,
	jobRepo repositories.IJobRepository,
	applicationRepo repositories.IApplicationRepository,
	authzService *appauth.AuthorizationService,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		userRepo:        userRepo,
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		authzService:    authzService,
		logger:          logger,
	}
}

// Dashboard aggregates user, job and application counts
func (s *adminServiceImpl) Dashboard(ctx context.Context, admin models.Identity) (*models.DashboardStats, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}

	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.applicationRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		UsersByRole:          byRole,
		TotalJobs:            jobs.Total,
		ActiveJobs:           jobs.Active,
		PendingJobs:          jobs.ByStatus[string(approval.StatusPending)],
		JobsByStatus:         jobs.ByStatus,
		ApplicationsByStatus: byStatus,
	}
	for _, n := range byRole {
		stats.TotalUsers += n
	}
	for _, n := range byStatus {
		stats.TotalApplications += n
	}
	return stats, nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, admin models.Identity, query *dto.AdminUserQuery) (*dto.PaginatedResponse, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	page := helpers.PageFromQuery(query.PageQuery)
	users, total, err := s.userRepo.List(ctx, query.ToFilter(), page)
	if err != nil {
		return nil, err
	}
	resp := helpers.NewPaginatedResponse(users, total, page)
	return &resp, nil
}

// UpdateUserRole changes another user's role
func (s *adminServiceImpl) UpdateUserRole(ctx context.Context, admin models.Identity, userID int64, role models.RoleType) (*models.User, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", apperrors.FieldError{Field: "role", Message: "role must be one of: user employer admin"})
	}
	if userID == admin.ID && role != models.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Int64("adminID", admin.ID).Str("role", string(role)).Msg("User role changed")
	return user, nil
}

// DeleteUser removes a non-admin account with everything it owns
func (s *adminServiceImpl) DeleteUser(ctx context.Context, admin models.Identity, userID int64) error {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return err
	}
	if userID == admin.ID {
		return ErrSelfDeletion
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return apperrors.ErrProtectedAccount
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Int64("adminID", admin.ID).Msg("User deleted")
	return nil
}

// ListJobs lists jobs in every state with their submitters
func (s *adminServiceImpl) ListJobs(ctx context.Context, admin models.Identity, query *dto.AdminJobQuery) (*dto.PaginatedResponse, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	page := helpers.PageFromQuery(query.PageQuery)
	jobs, total, err := s.jobRepo.List(ctx, query.ToFilter(), page)
	if err != nil {
		return nil, err
	}
	resp := helpers.NewPaginatedResponse(jobs, total, page)
	return &resp, nil
}

// ToggleJob flips is_active. Jobs that were never approved cannot be switched on.
func (s *adminServiceImpl) ToggleJob(ctx context.Context, admin models.Identity, jobID int64) (*models.Job, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	active := !job.IsActive
	if active && !job.ApprovalStatus.IsApproved() {
		return nil, ErrActivationRequiresApproval
	}
	updated, err := s.jobRepo.Update(ctx, jobID, models.JobPatch{IsActive: &active})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("jobID", jobID).Int64("adminID", admin.ID).Bool("active", active).Msg("Job activity toggled")
	return updated, nil
}
