package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/helpers"
)

// NotificationService serves a user's notification inbox
type NotificationService interface {
	List(ctx context.Context, identity models.Identity, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, identity models.Identity) (int64, error)
	MarkRead(ctx context.Context, identity models.Identity, id int64) error
	MarkAllRead(ctx context.Context, identity models.Identity) (int64, error)
	Delete(ctx context.Context, identity models.Identity, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repositories.INotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, identity models.Identity, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error) {
	page := helpers.PageFromQuery(query.PageQuery)
	items, total, err := s.notificationRepo.List(ctx, identity.ID, query.UnreadOnly, page)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{
		Items:       items,
		UnreadCount: unread,
		Pagination:  helpers.NewPaginationInfo(total, page),
	}, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, identity models.Identity) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, identity.ID)
}

// MarkRead reports ErrNotificationNotFound for notifications of other users
func (s *notificationServiceImpl) MarkRead(ctx context.Context, identity models.Identity, id int64) error {
	return s.notificationRepo.MarkRead(ctx, id, identity.ID)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, identity models.Identity) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, identity.ID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Int64("userID", identity.ID).Int64("updated", n).Msg("Notifications marked read")
	return n, nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, identity models.Identity, id int64) error {
	return s.notificationRepo.Delete(ctx, id, identity.ID)
}
