package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// GameRepository implements persistence.GameRepository over SQLite.
type GameRepository struct {
	pool *ConnectionPool
}

// NewGameRepository creates a SQLite-backed game repository.
func NewGameRepository(pool *ConnectionPool) *GameRepository {
	return &GameRepository{pool: pool}
}

// CreateGame inserts a new catalog entry.
func (r *GameRepository) CreateGame(ctx context.Context, game persistence.Game) error {
	if game.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO games (id, title, genre, average_session_mins, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.Title,
		nullString(game.Genre),
		game.AverageSessionMins,
		formatTimestamp(game.CreatedAt),
		formatTimestamp(game.UpdatedAt),
	)
	return mapError(err)
}

// UpdateGame updates an existing catalog entry.
func (r *GameRepository) UpdateGame(ctx context.Context, game persistence.Game) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE games SET title = ?, genre = ?, average_session_mins = ?, updated_at = ?
		WHERE id = ?`,
		game.Title,
		nullString(game.Genre),
		game.AverageSessionMins,
		formatTimestamp(game.UpdatedAt),
		game.ID,
	)
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

// GetGame retrieves a catalog entry by id.
func (r *GameRepository) GetGame(ctx context.Context, id string) (persistence.Game, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, title, genre, average_session_mins, created_at, updated_at
		FROM games WHERE id = ?`, id)

	var game persistence.Game
	var genre sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&game.ID, &game.Title, &genre, &game.AverageSessionMins, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Game{}, persistence.ErrNotFound
		}
		return persistence.Game{}, mapError(err)
	}
	game.Genre = stringPointer(genre)
	if game.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Game{}, err
	}
	if game.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Game{}, err
	}
	return game, nil
}

// ListGames returns the full catalog ordered by title.
func (r *GameRepository) ListGames(ctx context.Context) ([]persistence.Game, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, title, genre, average_session_mins, created_at, updated_at
		FROM games ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var games []persistence.Game
	for rows.Next() {
		var game persistence.Game
		var genre sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&game.ID, &game.Title, &genre, &game.AverageSessionMins, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		game.Genre = stringPointer(genre)
		if game.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if game.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// DeleteGame removes a catalog entry. Referencing schedules block the delete
// through the foreign key, surfaced as ErrForeignKeyViolation.
func (r *GameRepository) DeleteGame(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
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
