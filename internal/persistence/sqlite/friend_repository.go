package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// FriendRepository implements persistence.FriendRepository over SQLite.
type FriendRepository struct {
	pool *ConnectionPool
}

// NewFriendRepository creates a SQLite-backed friend repository.
func NewFriendRepository(pool *ConnectionPool) *FriendRepository {
	return &FriendRepository{pool: pool}
}

// AddFriendship inserts the mutual pair of rows for a new friendship.
func (r *FriendRepository) AddFriendship(ctx context.Context, userID, friendID string, createdAt time.Time) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		ts := formatTimestamp(createdAt)
		for _, pair := range [][2]string{{userID, friendID}, {friendID, userID}} {
			if _, err := tx.Exec(
				"INSERT INTO friends (user_id, friend_id, created_at) VALUES (?, ?, ?)",
				pair[0], pair[1], ts,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// RemoveFriendship deletes both directions of a friendship.
func (r *FriendRepository) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			DELETE FROM friends
			WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
			userID, friendID, friendID, userID)
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
	})
}

// ListFriends returns the user's friends ordered by username.
func (r *FriendRepository) ListFriends(ctx context.Context, userID string) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.username ASC, u.id ASC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var friends []persistence.User
	for rows.Next() {
		var user persistence.User
		var createdAt, updatedAt string
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if user.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		friends = append(friends, user)
	}
	return friends, rows.Err()
}

// AreFriends reports whether a friendship row exists from userID to friendID.
func (r *FriendRepository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friends WHERE user_id = ? AND friend_id = ?",
		userID, friendID).Scan(&count)
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}
