package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/email"
	"github.com/yigit/jobboard/internal/pkg/realtime"
	"github.com/yigit/jobboard/internal/pkg/sanitize"
)

// NotificationAttempts bounds the notification step of a decision
const NotificationAttempts = 3

// EventNotification is the realtime event type carrying a new notification
const EventNotification = "notification"

const publishTimeout = 5 * time.Second

// ApprovalService runs admin decisions on pending jobs
type ApprovalService interface {
	Approve(ctx context.Context, admin models.Identity, jobID int64) (*models.Job, error)
	Reject(ctx context.Context, admin models.Identity, jobID int64, reason string) (*models.Job, error)
	ListPending(ctx context.Context, admin models.Identity) ([]models.Job, error)
}

// ApprovalOption tunes the approval service
type ApprovalOption func(*approvalServiceImpl)

// WithRetryInterval sets the first wait of the notification backoff
func WithRetryInterval(d time.Duration) ApprovalOption {
	return func(s *approvalServiceImpl) { s.retryInterval = d }
}

// WithClock replaces the decision timestamp source
func WithClock(now func() time.Time) ApprovalOption {
	return func(s *approvalServiceImpl) { s.now = now }
}

type approvalServiceImpl struct {
	jobRepo          repositories.IJobRepository
	userRepo         repositories.IUserRepository
	notificationRepo repositories.INotificationRepository
	authzService     *appauth.AuthorizationService
	publisher        realtime.Publisher
	emailService     email.EmailService
	logger           zerolog.Logger

	retryInterval time.Duration
	now           func() time.Time
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	jobRepo repositories.IJobRepository,
	userRepo repositories.IUserRepository,
	notificationRepo repositories.INotificationRepository,
	authzService *appauth.AuthorizationService,
	publisher realtime.Publisher,
	emailService email.EmailService,
	logger zerolog.Logger,
	opts ...ApprovalOption,
) ApprovalService {
	s := &approvalServiceImpl{
		jobRepo:          jobRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		authzService:     authzService,
		publisher:        publisher,
		emailService:     emailService,
		logger:           logger,
		retryInterval:    200 * time.Millisecond,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve moves a pending job to approved and makes it publicly visible
func (s *approvalServiceImpl) Approve(ctx context.Context, admin models.Identity, jobID int64) (*models.Job, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	return s.decide(ctx, admin, jobID, approval.DecisionApprove, nil)
}

// Reject moves a pending job to rejected. The reason is checked before any state change.
func (s *approvalServiceImpl) Reject(ctx context.Context, admin models.Identity, jobID int64, reason string) (*models.Job, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	reason = sanitize.Text(reason)
	if err := approval.ValidateRejectionReason(reason); err != nil {
		return nil, err
	}
	return s.decide(ctx, admin, jobID, approval.DecisionReject, &reason)
}

// ListPending returns every pending job with its submitter
func (s *approvalServiceImpl) ListPending(ctx context.Context, admin models.Identity) ([]models.Job, error) {
	if err := s.authzService.ValidateAdmin(admin); err != nil {
		return nil, err
	}
	return s.jobRepo.ListPending(ctx)
}

// decide is the saga: persist the transition under a row lock, then notify.
// Steps after the commit never undo the decision.
func (s *approvalServiceImpl) decide(ctx context.Context, admin models.Identity, jobID int64, decision approval.Decision, reason *string) (*models.Job, error) {
	decidedAt := s.now().UTC()

	job, err := s.jobRepo.Decide(ctx, jobID, func(current *models.Job) (models.ApprovalUpdate, error) {
		next, err := approval.Next(current.ApprovalStatus, decision)
		if err != nil {
			return models.ApprovalUpdate{}, err
		}
		return models.ApprovalUpdate{
			Status:          next,
			IsActive:        next == approval.StatusApproved,
			ApprovedBy:      admin.ID,
			ApprovedAt:      decidedAt,
			RejectionReason: reason,
		}, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyInState) || errors.Is(err, apperrors.ErrInvalidTransition) {
			s.logger.Info().Err(err).Int64("jobID", jobID).Str("decision", string(decision)).Msg("Approval decision refused")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("jobID", job.ID).
		Int64("adminID", admin.ID).
		Str("status", job.ApprovalStatus.String()).
		Msg("Job approval decided")

	// The request may end before the follow-up steps do
	s.notifyOwner(context.WithoutCancel(ctx), job)
	return job, nil
}

func decisionNotification(job *models.Job) models.NewNotification {
	jobID := job.ID
	n := models.NewNotification{UserID: job.CreatedBy, RelatedJobID: &jobID}
	if job.ApprovalStatus == approval.StatusApproved {
		n.Type = models.NotificationJobApproved
		n.Title = "Job approved"
		n.Message = fmt.Sprintf("Your job posting %q has been approved and is now visible to candidates.", job.Title)
		return n
	}

	reason := ""
	if job.RejectionReason != nil {
		reason = *job.RejectionReason
	}
	n.Type = models.NotificationJobRejected
	n.Title = "Job rejected"
	n.Message = fmt.Sprintf("Your job posting %q was rejected. Reason: %s", job.Title, reason)
	return n
}

func (s *approvalServiceImpl) notificationBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = 10 * s.retryInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, NotificationAttempts-1), ctx)
}

// notifyOwner inserts the notification with bounded retries, then pushes it
// over the realtime channel and emails the owner. Failures are only logged.
func (s *approvalServiceImpl) notifyOwner(ctx context.Context, job *models.Job) {
	record := decisionNotification(job)

	var created *models.Notification
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		n, err := s.notificationRepo.Create(ctx, record)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return backoff.Permanent(err)
			}
			s.logger.Warn().Err(err).Int64("jobID", job.ID).Int("attempt", attempt).Msg("Notification insert failed")
			return err
		}
		created = n
		return nil
	}, s.notificationBackOff(ctx))
	if err != nil {
		s.logger.Error().Err(err).
			Int64("jobID", job.ID).
			Int64("ownerID", job.CreatedBy).
			Str("type", string(record.Type)).
			Int("attempts", attempt).
			Msg("Owner was not notified of the job decision; the decision stands")
		return
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if err := s.publisher.Publish(pubCtx, job.CreatedBy, realtime.NewEvent(EventNotification, created)); err != nil {
			s.logger.Warn().Err(err).Int64("notificationID", created.ID).Msg("Failed to publish notification")
		}
		cancel()
	}

	owner, err := s.userRepo.GetByID(ctx, job.CreatedBy)
	if err != nil {
		s.logger.Warn().Err(err).Int64("ownerID", job.CreatedBy).Msg("Failed to load job owner for decision email")
		return
	}
	decision := email.JobDecision{
		JobID:    job.ID,
		JobTitle: job.Title,
		Approved: job.ApprovalStatus == approval.StatusApproved,
	}
	if job.RejectionReason != nil {
		decision.Reason = *job.RejectionReason
	}
	if err := s.emailService.SendJobDecisionEmail(owner.Email, owner.Name, decision); err != nil {
		s.logger.Warn().Err(err).Int64("jobID", job.ID).Msg("Failed to send decision email")
	}
}
