package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
}

// UserService orchestrates validation and persistence for profile operations.
type UserService struct {
	users  UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users UserRepository, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, now func() time.Time, logger *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, principal Principal) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	if principal.UserID == "" {
		return User{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		err = mapUserRepoError(err)
		s.loggerWith(ctx, "GetProfile", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to load profile", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}
	return user, nil
}

// UpdateProfile validates and applies changes to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (user User, err error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return User{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	username := strings.TrimSpace(params.Username)
	email := strings.TrimSpace(strings.ToLower(params.Email))

	vErr := &ValidationError{}
	if username == "" {
		vErr.add("username", "username is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, mailErr := mail.ParseAddress(email); mailErr != nil {
		vErr.add("email", "email is invalid")
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	existing, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}

	existing.Username = username
	existing.Email = email
	existing.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapUserRepoError(err)
		if errors.Is(err, ErrAlreadyExists) {
			vErr := &ValidationError{}
			vErr.add("email", "email is already registered")
			return User{}, vErr
		}
		return User{}, err
	}
	return user, nil
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
