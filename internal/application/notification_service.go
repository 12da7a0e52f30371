package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/metrics"
)

// NotificationStore captures the persistence operations for user inboxes.
type NotificationStore interface {
	CreateNotifications(ctx context.Context, notifications []NewNotification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService delivers and manages in-app notifications.
type NotificationService struct {
	store       NotificationStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewNotificationService constructs a notification service with the provided dependencies.
func NewNotificationService(store NotificationStore, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(store, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger constructs a notification service with a specified logger.
func NewNotificationServiceWithLogger(store NotificationStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// Notify fans one message out to every listed user in a single write.
func (s *NotificationService) Notify(ctx context.Context, userIDs []string, kind, message string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("notification store not configured")
	}
	message = strings.TrimSpace(message)
	if message == "" || len(userIDs) == 0 {
		return nil
	}

	createdAt := s.now()
	notifications := make([]NewNotification, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		notifications = append(notifications, NewNotification{
			ID:        s.idGenerator(),
			UserID:    userID,
			Kind:      kind,
			Message:   message,
			CreatedAt: createdAt,
		})
	}
	if len(notifications) == 0 {
		return nil
	}

	if err := s.store.CreateNotifications(ctx, notifications); err != nil {
		s.loggerWith(ctx, "Notify", "kind", kind, "recipients", len(notifications)).
			ErrorContext(ctx, "failed to deliver notifications", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	metrics.ObserveNotificationsDelivered(kind, len(notifications))
	return nil
}

// List returns the caller's inbox, unread first, newest first within each group.
func (s *NotificationService) List(ctx context.Context, principal Principal) ([]Notification, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("notification store not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	notifications, err := s.store.ListNotifications(ctx, principal.UserID)
	if err != nil {
		s.loggerWith(ctx, "List", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to list notifications", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags a single notification in the caller's inbox as read.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("notification store not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	if err := s.store.MarkRead(ctx, principal.UserID, strings.TrimSpace(notificationID)); err != nil {
		if isNotFoundError(err) {
			return ErrNotFound
		}
		s.loggerWith(ctx, "MarkRead", "principal_id", principal.UserID, "notification_id", notificationID).
			ErrorContext(ctx, "failed to mark notification read", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	return nil
}

// MarkAllRead flags the caller's whole inbox as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal Principal) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("notification store not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	if err := s.store.MarkAllRead(ctx, principal.UserID); err != nil {
		s.loggerWith(ctx, "MarkAllRead", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to mark notifications read", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	return nil
}
