package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// FriendGraph captures the persistence operations on the mutual friendship graph.
type FriendGraph interface {
	AddFriendship(ctx context.Context, userID, friendID string) error
	RemoveFriendship(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]Friend, error)
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
}

// UserDirectory exposes user lookup operations.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]User, error)
}

// Notifier delivers in-app notifications to a set of users.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, kind, message string) error
}

// FriendService orchestrates the friendship graph and its notifications.
type FriendService struct {
	friends  FriendGraph
	users    UserDirectory
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewFriendService constructs a friend service with the provided dependencies.
func NewFriendService(friends FriendGraph, users UserDirectory, notifier Notifier, now func() time.Time) *FriendService {
	return NewFriendServiceWithLogger(friends, users, notifier, now, nil)
}

// NewFriendServiceWithLogger constructs a friend service with a specified logger.
func NewFriendServiceWithLogger(friends FriendGraph, users UserDirectory, notifier Notifier, now func() time.Time, logger *slog.Logger) *FriendService {
	if now == nil {
		now = time.Now
	}
	return &FriendService{friends: friends, users: users, notifier: notifier, now: now, logger: defaultLogger(logger)}
}

func (s *FriendService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "FriendService", operation, attrs...)
}

// SearchUsers finds accounts matching the query, excluding the caller.
func (s *FriendService) SearchUsers(ctx context.Context, principal Principal, query string) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user directory not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		vErr := &ValidationError{}
		vErr.add("query", "query is required")
		return nil, vErr
	}

	users, err := s.users.SearchUsers(ctx, trimmed, principal.UserID)
	if err != nil {
		err = mapFriendRepoError(err)
		s.loggerWith(ctx, "SearchUsers", "principal_id", principal.UserID).
			ErrorContext(ctx, "user search failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	if len(users) == 0 || s.friends == nil {
		return users, nil
	}

	// Existing friends are dropped; search results only surface accounts
	// the caller could still add.
	friends, err := s.friends.ListFriends(ctx, principal.UserID)
	if err != nil {
		return nil, mapFriendRepoError(err)
	}
	friendIDs := make(map[string]struct{}, len(friends))
	for _, friend := range friends {
		friendIDs[friend.UserID] = struct{}{}
	}
	filtered := users[:0]
	for _, user := range users {
		if _, isFriend := friendIDs[user.ID]; isFriend {
			continue
		}
		filtered = append(filtered, user)
	}
	return filtered, nil
}

// AddFriend records a mutual friendship and notifies the new friend.
func (s *FriendService) AddFriend(ctx context.Context, principal Principal, friendID string) (err error) {
	if s == nil || s.friends == nil || s.users == nil {
		return fmt.Errorf("friend service not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	friendID = strings.TrimSpace(friendID)
	logger := s.loggerWith(ctx, "AddFriend", "principal_id", principal.UserID, "friend_id", friendID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add friend", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "friend added")
	}()

	if friendID == "" {
		vErr := &ValidationError{}
		vErr.add("friend_id", "friend id is required")
		return vErr
	}
	if friendID == principal.UserID {
		vErr := &ValidationError{}
		vErr.add("friend_id", "cannot add yourself as a friend")
		return vErr
	}

	if _, err = s.users.GetUser(ctx, friendID); err != nil {
		return mapFriendRepoError(err)
	}

	already, err := s.friends.AreFriends(ctx, principal.UserID, friendID)
	if err != nil {
		return mapFriendRepoError(err)
	}
	if already {
		return ErrAlreadyExists
	}

	if err = s.friends.AddFriendship(ctx, principal.UserID, friendID); err != nil {
		return mapFriendRepoError(err)
	}

	s.notifyFriendAdded(ctx, principal.UserID, friendID, logger)
	return nil
}

// notifyFriendAdded is best effort; a failed notification never undoes the friendship.
func (s *FriendService) notifyFriendAdded(ctx context.Context, userID, friendID string, logger *slog.Logger) {
	if s.notifier == nil {
		return
	}
	actor, err := s.users.GetUser(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve actor for notification", "error", err)
		return
	}
	message := fmt.Sprintf("%s added you as a friend", actor.Username)
	if err := s.notifier.Notify(ctx, []string{friendID}, NotificationKindFriend, message); err != nil {
		logger.WarnContext(ctx, "failed to deliver friend notification", "error", err)
	}
}

// ListFriends returns the caller's friends ordered by username.
func (s *FriendService) ListFriends(ctx context.Context, principal Principal) ([]Friend, error) {
	if s == nil || s.friends == nil {
		return nil, fmt.Errorf("friend graph not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	friends, err := s.friends.ListFriends(ctx, principal.UserID)
	if err != nil {
		err = mapFriendRepoError(err)
		s.loggerWith(ctx, "ListFriends", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to list friends", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return friends, nil
}

// RemoveFriend deletes the friendship in both directions.
func (s *FriendService) RemoveFriend(ctx context.Context, principal Principal, friendID string) (err error) {
	if s == nil || s.friends == nil {
		return fmt.Errorf("friend graph not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	friendID = strings.TrimSpace(friendID)
	logger := s.loggerWith(ctx, "RemoveFriend", "principal_id", principal.UserID, "friend_id", friendID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove friend", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "friend removed")
	}()

	if friendID == "" {
		vErr := &ValidationError{}
		vErr.add("friend_id", "friend id is required")
		return vErr
	}

	if err = s.friends.RemoveFriendship(ctx, principal.UserID, friendID); err != nil {
		return mapFriendRepoError(err)
	}
	return nil
}

func mapFriendRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("friend_id", "cannot add yourself as a friend")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	return err
}
