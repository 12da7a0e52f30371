package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SearchUsers(ctx context.Context, query string, excludeID string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// FriendRepository stores the mutual friendship graph.
type FriendRepository interface {
	AddFriendship(ctx context.Context, userID, friendID string, createdAt time.Time) error
	RemoveFriendship(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]User, error)
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
}

// GameRepository exposes CRUD operations for the shared game catalog.
type GameRepository interface {
	CreateGame(ctx context.Context, game Game) error
	UpdateGame(ctx context.Context, game Game) error
	GetGame(ctx context.Context, id string) (Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// ScheduleFilter narrows schedule queries.
type ScheduleFilter struct {
	// UserID limits results to schedules owned by or inviting the user.
	UserID string
	// From/Until bound the calendar date range, inclusive, when non-nil.
	From  *time.Time
	Until *time.Time
}

// ScheduleRepository stores gaming sessions and their invited friends.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule, invites []ScheduleFriend) error
	UpdateSchedule(ctx context.Context, schedule Schedule, invites []ScheduleFriend) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	ListInvites(ctx context.Context, scheduleID string) ([]ScheduleFriend, error)
	SetInviteStatus(ctx context.Context, scheduleID, friendID, status string) error
	DeleteSchedule(ctx context.Context, id string) error
}

// EventRepository stores one-off calendar events and their shares.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, userID string, from, until *time.Time) ([]Event, error)
	ShareEvent(ctx context.Context, eventID, friendID string, createdAt time.Time) error
	DeleteEvent(ctx context.Context, id string) error
}

// NotificationRepository stores per-user notification inboxes.
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// TemplateRepository stores schedule templates, their invite lists and the
// occurrences generated from them.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template ScheduleTemplate) error
	// UpdateTemplate replaces the template fields and its invite list
	// wholesale inside one transaction.
	UpdateTemplate(ctx context.Context, template ScheduleTemplate) error
	GetTemplate(ctx context.Context, id string) (ScheduleTemplate, error)
	ListTemplates(ctx context.Context, ownerID string) ([]ScheduleTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	// ListOccurrenceDates returns the calendar dates already generated for
	// the template, ascending.
	ListOccurrenceDates(ctx context.Context, templateID string) ([]time.Time, error)
	// CreateOccurrences materializes schedule, occurrence-link and invite
	// rows for each candidate inside a single transaction. Candidates whose
	// (template_id, date) pair already exists are skipped; any other failure
	// rolls back every row written by the call. Returns the schedule ids
	// actually created, in candidate order.
	CreateOccurrences(ctx context.Context, templateID string, candidates []NewOccurrence) ([]string, error)
}
