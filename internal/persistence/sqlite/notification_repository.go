package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository over SQLite.
type NotificationRepository struct {
	pool *ConnectionPool
}

// NewNotificationRepository creates a SQLite-backed notification repository.
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateNotifications inserts a batch of notifications atomically. Fan-out to
// several recipients either lands completely or not at all.
func (r *NotificationRepository) CreateNotifications(ctx context.Context, notifications []persistence.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, notification := range notifications {
			read := 0
			if notification.Read {
				read = 1
			}
			if _, err := tx.Exec(`
				INSERT INTO notifications (id, user_id, kind, message, read, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				notification.ID,
				notification.UserID,
				notification.Kind,
				notification.Message,
				read,
				formatTimestamp(notification.CreatedAt),
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// ListNotifications returns a user's notifications, unread first, newest first.
func (r *NotificationRepository) ListNotifications(ctx context.Context, userID string) ([]persistence.Notification, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, user_id, kind, message, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY read ASC, created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		var notification persistence.Notification
		var read int
		var createdAt string
		if err := rows.Scan(&notification.ID, &notification.UserID, &notification.Kind, &notification.Message, &read, &createdAt); err != nil {
			return nil, mapError(err)
		}
		notification.Read = read != 0
		if notification.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

// MarkRead flags one notification as read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification for the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.pool.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0", userID)
	return mapError(err)
}
