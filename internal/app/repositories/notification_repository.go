package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

// INotificationRepository defines the interface for notification database operations.
// Every read and write is scoped to the recipient.
type INotificationRepository interface {
	Create(ctx context.Context, n models.NewNotification) (*models.Notification, error)
	List(ctx context.Context, userID int64, unreadOnly bool, page helpers.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error
}

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var notificationColumns = []string{
	"id", "user_id", "type", "title", "message", "related_job_id", "is_read", "created_at",
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedJobID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts an unread notification
func (r *NotificationRepository) Create(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	query, args, err := r.sb.Insert("notifications").
		Columns("user_id", "type", "title", "message", "related_job_id").
		Values(n.UserID, n.Type, n.Title, n.Message, n.RelatedJobID).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create notification query: %w", err)
	}

	created, err := scanNotification(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		logger.Error().Err(err).Int64("userID", n.UserID).Str("type", string(n.Type)).Msg("Error executing create notification query")
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

func notificationPredicate(userID int64, unreadOnly bool) squirrel.And {
	pred := squirrel.And{squirrel.Eq{"user_id": userID}}
	if unreadOnly {
		pred = append(pred, squirrel.Eq{"is_read": false})
	}
	return pred
}

// List returns a page of the user's notifications, newest first, and the total count
func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, page helpers.Page) ([]models.Notification, int64, error) {
	pred := notificationPredicate(userID, unreadOnly)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("notifications").Where(pred).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count notifications query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing count notifications query")
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query, args, err := r.sb.Select(notificationColumns...).From("notifications").Where(pred).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list notifications query")
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	items := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return items, total, nil
}

// CountUnread returns the number of unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("notifications").Where(notificationPredicate(userID, true)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count unread query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing count unread query")
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	query, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error executing mark read query")
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	query, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(notificationPredicate(userID, true)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing mark all read query")
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the user's notifications
func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := r.sb.Delete("notifications").Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete notification query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error executing delete notification query")
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
