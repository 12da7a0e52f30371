package testfixtures

import (
	"context"
	"testing"

	"github.com/example/gameplan-scheduler/internal/persistence"
	"github.com/example/gameplan-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by an in-memory SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool          *sqlite.ConnectionPool
	Users         persistence.UserRepository
	Sessions      persistence.SessionRepository
	Friends       persistence.FriendRepository
	Games         persistence.GameRepository
	Schedules     persistence.ScheduleRepository
	Events        persistence.EventRepository
	Notifications persistence.NotificationRepository
	Templates     persistence.TemplateRepository
}

// NewSQLiteHarness opens a fresh migrated in-memory database and returns the
// repositories bound to it. The pool is closed via the test's cleanup hook.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	pool, err := sqlite.Open(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = pool.Close() })

	if err := pool.Migrate(context.Background()); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}

	return &SQLiteHarness{
		Pool:          pool,
		Users:         sqlite.NewUserRepository(pool),
		Sessions:      sqlite.NewSessionRepository(pool),
		Friends:       sqlite.NewFriendRepository(pool),
		Games:         sqlite.NewGameRepository(pool),
		Schedules:     sqlite.NewScheduleRepository(pool),
		Events:        sqlite.NewEventRepository(pool),
		Notifications: sqlite.NewNotificationRepository(pool),
		Templates:     sqlite.NewTemplateRepository(pool),
	}
}

// SeedUser persists a user fixture and returns it.
func (h *SQLiteHarness) SeedUser(tb testing.TB, opts ...UserOption) persistence.User {
	tb.Helper()

	user := NewUserFixture(opts...)
	if err := h.Users.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("seed user %s: %v", user.ID, err)
	}
	return user
}

// SeedGame persists a game fixture and returns it.
func (h *SQLiteHarness) SeedGame(tb testing.TB, opts ...GameOption) persistence.Game {
	tb.Helper()

	game := NewGameFixture(opts...)
	if err := h.Games.CreateGame(context.Background(), game); err != nil {
		tb.Fatalf("seed game %s: %v", game.ID, err)
	}
	return game
}

// SeedSchedule persists a schedule fixture without invites and returns it.
func (h *SQLiteHarness) SeedSchedule(tb testing.TB, opts ...ScheduleOption) persistence.Schedule {
	tb.Helper()

	schedule := NewScheduleFixture(opts...)
	if err := h.Schedules.CreateSchedule(context.Background(), schedule, nil); err != nil {
		tb.Fatalf("seed schedule %s: %v", schedule.ID, err)
	}
	return schedule
}

// SeedTemplate persists a template fixture and returns it.
func (h *SQLiteHarness) SeedTemplate(tb testing.TB, opts ...TemplateOption) persistence.ScheduleTemplate {
	tb.Helper()

	template := NewTemplateFixture(opts...)
	if err := h.Templates.CreateTemplate(context.Background(), template); err != nil {
		tb.Fatalf("seed template %s: %v", template.ID, err)
	}
	return template
}
