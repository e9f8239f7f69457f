package memstore

import (
	"context"
	"time"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
)

// NotificationRepository is the in-memory repositories.INotificationRepository
type NotificationRepository struct {
	s *Store

	failures  int
	failErr   error
	createCnt int
}

var _ repositories.INotificationRepository = (*NotificationRepository)(nil)

// FailCreates makes the next n Create calls return err
func (r *NotificationRepository) FailCreates(n int, err error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.failures, r.failErr = n, err
}

// CreateAttempts returns how many times Create has been called, failed or not
func (r *NotificationRepository) CreateAttempts() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createCnt
}

// Create inserts an unread notification
func (r *NotificationRepository) Create(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.createCnt++
	if r.failures > 0 {
		r.failures--
		return nil, r.failErr
	}
	if _, ok := r.s.users[n.UserID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}

	r.s.nextNotification++
	rec := &models.Notification{
		ID:           r.s.nextNotification,
		UserID:       n.UserID,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		RelatedJobID: n.RelatedJobID,
		CreatedAt:    r.s.tick(),
	}
	r.s.notifications[rec.ID] = rec
	c := *rec
	return &c, nil
}

// List returns a page of the user's notifications, newest first, and the total count
func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, page helpers.Page) ([]models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			matched = append(matched, *n)
		}
	}
	newestFirst(matched, func(n models.Notification) (time.Time, int64) { return n.CreatedAt, n.ID })
	return paginate(matched, page.Offset(), page.Limit()), int64(len(matched)), nil
}

// CountUnread returns the number of unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var total int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			total++
		}
	}
	return total, nil
}

// MarkRead flags one of the user's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return apperrors.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

// Delete removes one of the user's notifications
func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return apperrors.ErrNotificationNotFound
	}
	delete(r.s.notifications, id)
	return nil
}
