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

// GameRepository captures the persistence operations needed by the game service.
type GameRepository interface {
	CreateGame(ctx context.Context, game Game) (Game, error)
	GetGame(ctx context.Context, id string) (Game, error)
	UpdateGame(ctx context.Context, game Game) (Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// GameService orchestrates validation and persistence for the shared game catalog.
type GameService struct {
	games       GameRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGameService constructs a game service with the provided dependencies.
func NewGameService(games GameRepository, idGenerator func() string, now func() time.Time) *GameService {
	return NewGameServiceWithLogger(games, idGenerator, now, nil)
}

// NewGameServiceWithLogger constructs a game service with a specified logger.
func NewGameServiceWithLogger(games GameRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *GameService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &GameService{games: games, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *GameService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GameService", operation, attrs...)
}

// CreateGame validates input and adds a catalog entry.
func (s *GameService) CreateGame(ctx context.Context, principal Principal, input GameInput) (game Game, err error) {
	if s == nil || s.games == nil {
		return Game{}, fmt.Errorf("game repository not configured")
	}
	if principal.UserID == "" {
		return Game{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateGame", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create game", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("game_id", game.ID).InfoContext(ctx, "game created")
	}()

	normalized := normalizeGameInput(input)
	if vErr := validateGameInput(normalized); vErr.HasErrors() {
		return Game{}, vErr
	}

	createdAt := s.now()
	game, err = s.games.CreateGame(ctx, Game{
		ID:                 s.idGenerator(),
		Title:              normalized.Title,
		Genre:              normalized.Genre,
		AverageSessionMins: normalized.AverageSessionMins,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	})
	if err != nil {
		return Game{}, mapGameRepoError(err)
	}
	return game, nil
}

// GetGame returns a single catalog entry.
func (s *GameService) GetGame(ctx context.Context, id string) (Game, error) {
	if s == nil || s.games == nil {
		return Game{}, fmt.Errorf("game repository not configured")
	}
	game, err := s.games.GetGame(ctx, strings.TrimSpace(id))
	if err != nil {
		return Game{}, mapGameRepoError(err)
	}
	return game, nil
}

// UpdateGame validates input and updates a catalog entry.
func (s *GameService) UpdateGame(ctx context.Context, principal Principal, id string, input GameInput) (game Game, err error) {
	if s == nil || s.games == nil {
		return Game{}, fmt.Errorf("game repository not configured")
	}
	if principal.UserID == "" {
		return Game{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateGame", "principal_id", principal.UserID, "game_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update game", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "game updated")
	}()

	normalized := normalizeGameInput(input)
	if vErr := validateGameInput(normalized); vErr.HasErrors() {
		return Game{}, vErr
	}

	existing, err := s.games.GetGame(ctx, strings.TrimSpace(id))
	if err != nil {
		return Game{}, mapGameRepoError(err)
	}

	existing.Title = normalized.Title
	existing.Genre = normalized.Genre
	existing.AverageSessionMins = normalized.AverageSessionMins
	existing.UpdatedAt = s.now()

	game, err = s.games.UpdateGame(ctx, existing)
	if err != nil {
		return Game{}, mapGameRepoError(err)
	}
	return game, nil
}

// ListGames returns the catalog ordered by title.
func (s *GameService) ListGames(ctx context.Context) ([]Game, error) {
	if s == nil || s.games == nil {
		return nil, fmt.Errorf("game repository not configured")
	}
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, mapGameRepoError(err)
	}
	return games, nil
}

// DeleteGame removes a catalog entry. Entries referenced by schedules or
// templates cannot be removed.
func (s *GameService) DeleteGame(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil || s.games == nil {
		return fmt.Errorf("game repository not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteGame", "principal_id", principal.UserID, "game_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete game", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "game deleted")
	}()

	if err = s.games.DeleteGame(ctx, strings.TrimSpace(id)); err != nil {
		return mapGameRepoError(err)
	}
	return nil
}

func normalizeGameInput(input GameInput) GameInput {
	input.Title = strings.TrimSpace(input.Title)
	if input.Genre != nil {
		trimmed := strings.TrimSpace(*input.Genre)
		if trimmed == "" {
			input.Genre = nil
		} else {
			input.Genre = &trimmed
		}
	}
	return input
}

func validateGameInput(input GameInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.AverageSessionMins <= 0 {
		vErr.add("average_session_mins", "average session length must be positive")
	}
	return vErr
}

func mapGameRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("game_id", "game is still referenced by schedules or templates")
		return vErr
	}
	return err
}
