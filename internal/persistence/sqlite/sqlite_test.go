package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	require.NoError(t, pool.Migrate(context.Background()))
	return pool
}

func seedUser(t *testing.T, pool *ConnectionPool, id, username string) {
	t.Helper()

	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, NewUserRepository(pool).CreateUser(context.Background(), persistence.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash-" + id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func seedGame(t *testing.T, pool *ConnectionPool, id, title string) {
	t.Helper()

	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, NewGameRepository(pool).CreateGame(context.Background(), persistence.Game{
		ID:                 id,
		Title:              title,
		AverageSessionMins: 60,
		CreatedAt:          now,
		UpdatedAt:          now,
	}))
}

func TestUserRepository_RoundTrip(t *testing.T) {
	pool := newTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1", "alice")

	stored, err := repo.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "alice", stored.Username)
	require.Equal(t, "alice@example.com", stored.Email)

	byEmail, err := repo.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, stored.ID, byEmail.ID)

	_, err = repo.GetUser(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	pool := newTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1", "alice")

	now := time.Now().UTC()
	err := repo.CreateUser(ctx, persistence.User{
		ID:           "user-2",
		Username:     "alice2",
		Email:        "Alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.ErrorIs(t, err, persistence.ErrDuplicate)
}

func TestUserRepository_Search(t *testing.T) {
	pool := newTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1", "alice")
	seedUser(t, pool, "user-2", "alina")
	seedUser(t, pool, "user-3", "bob")

	results, err := repo.SearchUsers(ctx, "ali", "user-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "alina", results[0].Username)
}

func TestFriendRepository_Mutuality(t *testing.T) {
	pool := newTestPool(t)
	repo := NewFriendRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1", "alice")
	seedUser(t, pool, "user-2", "bob")

	require.NoError(t, repo.AddFriendship(ctx, "user-1", "user-2", time.Now().UTC()))

	forward, err := repo.AreFriends(ctx, "user-1", "user-2")
	require.NoError(t, err)
	require.True(t, forward)

	backward, err := repo.AreFriends(ctx, "user-2", "user-1")
	require.NoError(t, err)
	require.True(t, backward)

	friends, err := repo.ListFriends(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, "alice", friends[0].Username)

	require.NoError(t, repo.RemoveFriendship(ctx, "user-2", "user-1"))

	forward, err = repo.AreFriends(ctx, "user-1", "user-2")
	require.NoError(t, err)
	require.False(t, forward)

	require.ErrorIs(t, repo.RemoveFriendship(ctx, "user-1", "user-2"), persistence.ErrNotFound)
}

func TestScheduleRepository_RoundTripWithInvites(t *testing.T) {
	pool := newTestPool(t)
	repo := NewScheduleRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "owner", "alice")
	seedUser(t, pool, "friend", "bob")
	seedGame(t, pool, "game-1", "Helldivers 2")

	now := time.Now().UTC()
	cap := 4
	schedule := persistence.Schedule{
		ID:              "sched-1",
		OwnerID:         "owner",
		GameID:          "game-1",
		Title:           "Friday dive",
		Description:     "bring stratagems",
		Date:            time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		StartTime:       "20:00",
		EndTime:         "22:00",
		MaxParticipants: &cap,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	invites := []persistence.ScheduleFriend{{ScheduleID: "sched-1", FriendID: "friend", CreatedAt: now}}

	require.NoError(t, repo.CreateSchedule(ctx, schedule, invites))

	stored, err := repo.GetSchedule(ctx, "sched-1")
	require.NoError(t, err)
	require.Equal(t, schedule.Date, stored.Date)
	require.Equal(t, "20:00", stored.StartTime)
	require.NotNil(t, stored.MaxParticipants)
	require.Equal(t, 4, *stored.MaxParticipants)

	storedInvites, err := repo.ListInvites(ctx, "sched-1")
	require.NoError(t, err)
	require.Len(t, storedInvites, 1)
	require.Equal(t, persistence.InviteStatusPending, storedInvites[0].Status)

	require.NoError(t, repo.SetInviteStatus(ctx, "sched-1", "friend", persistence.InviteStatusAccepted))
	storedInvites, err = repo.ListInvites(ctx, "sched-1")
	require.NoError(t, err)
	require.Equal(t, persistence.InviteStatusAccepted, storedInvites[0].Status)

	// Listing by the invited user picks up schedules they do not own.
	listed, err := repo.ListSchedules(ctx, persistence.ScheduleFilter{UserID: "friend"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "sched-1", listed[0].ID)
}

func TestTemplateRepository_InviteListReplacedWholesale(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTemplateRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "owner", "alice")
	seedUser(t, pool, "friend-1", "bob")
	seedUser(t, pool, "friend-2", "carol")
	seedGame(t, pool, "game-1", "Baldur's Gate 3")

	now := time.Now().UTC()
	template := persistence.ScheduleTemplate{
		ID:           "tmpl-1",
		OwnerID:      "owner",
		GameID:       "game-1",
		Name:         "Weekly co-op",
		TimeOfDay:    "19:30",
		DurationMins: 120,
		Pattern:      "weekly",
		Weekdays:     []time.Weekday{time.Monday, time.Thursday},
		Invites: []persistence.TemplateInvite{
			{TemplateID: "tmpl-1", FriendID: "friend-1", AutoInvite: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateTemplate(ctx, template))

	stored, err := repo.GetTemplate(ctx, "tmpl-1")
	require.NoError(t, err)
	require.Equal(t, []time.Weekday{time.Monday, time.Thursday}, stored.Weekdays)
	require.Len(t, stored.Invites, 1)

	template.Invites = []persistence.TemplateInvite{
		{TemplateID: "tmpl-1", FriendID: "friend-2", AutoInvite: false},
	}
	require.NoError(t, repo.UpdateTemplate(ctx, template))

	stored, err = repo.GetTemplate(ctx, "tmpl-1")
	require.NoError(t, err)
	require.Len(t, stored.Invites, 1)
	require.Equal(t, "friend-2", stored.Invites[0].FriendID)
	require.False(t, stored.Invites[0].AutoInvite)
}

func TestTemplateRepository_CreateOccurrencesSkipsExistingDates(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTemplateRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "owner", "alice")
	seedUser(t, pool, "friend", "bob")
	seedGame(t, pool, "game-1", "Deep Rock Galactic")

	now := time.Now().UTC()
	template := persistence.ScheduleTemplate{
		ID:           "tmpl-1",
		OwnerID:      "owner",
		GameID:       "game-1",
		Name:         "Nightly dig",
		TimeOfDay:    "21:00",
		DurationMins: 60,
		Pattern:      "daily",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.CreateTemplate(ctx, template))

	occurrence := func(scheduleID string, day int) persistence.NewOccurrence {
		date := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
		return persistence.NewOccurrence{
			Date: date,
			Schedule: persistence.Schedule{
				ID:        scheduleID,
				OwnerID:   "owner",
				GameID:    "game-1",
				Title:     "Nightly dig",
				Date:      date,
				StartTime: "21:00",
				EndTime:   "22:00",
				CreatedAt: now,
				UpdatedAt: now,
			},
			Invites: []persistence.ScheduleFriend{
				{FriendID: "friend", CreatedAt: now},
			},
		}
	}

	created, err := repo.CreateOccurrences(ctx, "tmpl-1", []persistence.NewOccurrence{
		occurrence("sched-1", 1),
		occurrence("sched-2", 2),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"sched-1", "sched-2"}, created)

	// Overlapping second run only materializes the new date.
	created, err = repo.CreateOccurrences(ctx, "tmpl-1", []persistence.NewOccurrence{
		occurrence("sched-1b", 1),
		occurrence("sched-2b", 2),
		occurrence("sched-3", 3),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"sched-3"}, created)

	dates, err := repo.ListOccurrenceDates(ctx, "tmpl-1")
	require.NoError(t, err)
	require.Len(t, dates, 3)

	// Invite rows followed each created schedule.
	invites, err := NewScheduleRepository(pool).ListInvites(ctx, "sched-3")
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.Equal(t, "friend", invites[0].FriendID)
}

func TestTemplateRepository_CreateOccurrencesRollsBackOnFailure(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTemplateRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "owner", "alice")
	seedGame(t, pool, "game-1", "Factorio")

	now := time.Now().UTC()
	require.NoError(t, repo.CreateTemplate(ctx, persistence.ScheduleTemplate{
		ID:           "tmpl-1",
		OwnerID:      "owner",
		GameID:       "game-1",
		Name:         "Factory shift",
		TimeOfDay:    "18:00",
		DurationMins: 90,
		Pattern:      "daily",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	good := func(scheduleID string, day int) persistence.NewOccurrence {
		date := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
		return persistence.NewOccurrence{
			Date: date,
			Schedule: persistence.Schedule{
				ID:        scheduleID,
				OwnerID:   "owner",
				GameID:    "game-1",
				Title:     "Factory shift",
				Date:      date,
				StartTime: "18:00",
				EndTime:   "19:30",
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
	}

	// Third candidate references a missing game, so its schedule insert
	// violates the foreign key and the whole call must roll back.
	broken := good("sched-3", 3)
	broken.Schedule.GameID = "no-such-game"

	_, err := repo.CreateOccurrences(ctx, "tmpl-1", []persistence.NewOccurrence{
		good("sched-1", 1),
		good("sched-2", 2),
		broken,
	})
	require.ErrorIs(t, err, persistence.ErrForeignKeyViolation)

	dates, err := repo.ListOccurrenceDates(ctx, "tmpl-1")
	require.NoError(t, err)
	require.Empty(t, dates)

	_, err = NewScheduleRepository(pool).GetSchedule(ctx, "sched-1")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestNotificationRepository_InboxOrdering(t *testing.T) {
	pool := newTestPool(t)
	repo := NewNotificationRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1", "alice")

	base := time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateNotifications(ctx, []persistence.Notification{
		{ID: "n-1", UserID: "user-1", Kind: "friend", Message: "old unread", CreatedAt: base},
		{ID: "n-2", UserID: "user-1", Kind: "invite", Message: "new unread", CreatedAt: base.Add(time.Hour)},
	}))
	require.NoError(t, repo.MarkRead(ctx, "user-1", "n-1"))

	require.NoError(t, repo.CreateNotifications(ctx, []persistence.Notification{
		{ID: "n-3", UserID: "user-1", Kind: "invite", Message: "newest unread", CreatedAt: base.Add(2 * time.Hour)},
	}))

	inbox, err := repo.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	require.Equal(t, "n-3", inbox[0].ID)
	require.Equal(t, "n-2", inbox[1].ID)
	require.Equal(t, "n-1", inbox[2].ID)
	require.True(t, inbox[2].Read)

	require.NoError(t, repo.MarkAllRead(ctx, "user-1"))
	inbox, err = repo.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	for _, notification := range inbox {
		require.True(t, notification.Read)
	}

	require.ErrorIs(t, repo.MarkRead(ctx, "user-1", "missing"), persistence.ErrNotFound)
}
