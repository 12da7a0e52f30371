package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the ordered schema versions. Each entry runs at most once;
// applied versions are tracked in schema_migrations.
var migrations = []struct {
	version     string
	description string
	statements  []string
}{
	{
		version:     "001",
		description: "accounts and sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				fingerprint TEXT NOT NULL DEFAULT '',
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
	{
		version:     "002",
		description: "friends graph and game catalog",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS friends (
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				friend_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				PRIMARY KEY (user_id, friend_id),
				CHECK (user_id <> friend_id)
			)`,
			`CREATE TABLE IF NOT EXISTS games (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				genre TEXT,
				average_session_mins INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     "003",
		description: "schedules, events and notifications",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS schedules (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				game_id TEXT NOT NULL REFERENCES games(id),
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				max_participants INTEGER CHECK (max_participants IS NULL OR max_participants > 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS schedule_friends (
				schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
				friend_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				status TEXT NOT NULL DEFAULT 'pending',
				created_at TEXT NOT NULL,
				PRIMARY KEY (schedule_id, friend_id)
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				reminder_time TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS event_friends (
				event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				friend_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				PRIMARY KEY (event_id, friend_id)
			)`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				message TEXT NOT NULL,
				read INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     "004",
		description: "schedule templates and generated occurrences",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS schedule_templates (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				game_id TEXT NOT NULL REFERENCES games(id),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				time_of_day TEXT NOT NULL,
				duration_mins INTEGER NOT NULL CHECK (duration_mins > 0),
				max_participants INTEGER CHECK (max_participants IS NULL OR max_participants > 0),
				pattern TEXT NOT NULL,
				weekdays TEXT NOT NULL DEFAULT '',
				month_day INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS template_invites (
				template_id TEXT NOT NULL REFERENCES schedule_templates(id) ON DELETE CASCADE,
				friend_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				auto_invite INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (template_id, friend_id)
			)`,
			// The UNIQUE(template_id, date) pair is the at-most-once guard
			// for generation; concurrent expanders race to this index, and
			// the loser treats the duplicate as already-generated.
			`CREATE TABLE IF NOT EXISTS template_occurrences (
				template_id TEXT NOT NULL REFERENCES schedule_templates(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				PRIMARY KEY (template_id, date)
			)`,
		},
	},
}

// Migrate applies all pending schema versions in order, recording each in
// schema_migrations. Safe to call on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to initialize schema_migrations: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := cp.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			_ = rows.Close()
			return err
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, migration := range migrations {
		if applied[migration.version] {
			continue
		}
		migration := migration
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, statement := range migration.statements {
				if _, err := tx.Exec(statement); err != nil {
					return fmt.Errorf("migration %s: %w", migration.version, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
				migration.version, migration.description, formatTimestamp(nowUTC()),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
