package application

import (
	"time"

	"github.com/example/gameplan-scheduler/internal/recurrence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// User represents a player account exposed by the application services.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// RegisterParams captures the data required to create an account.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// UpdateProfileParams captures the mutable profile fields.
type UpdateProfileParams struct {
	Principal Principal
	Username  string
	Email     string
}

// Friend pairs a friend's account with when the friendship formed.
type Friend struct {
	UserID   string
	Username string
}

// Game represents a catalog entry players schedule sessions for.
type Game struct {
	ID                 string
	Title              string
	Genre              *string
	AverageSessionMins int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GameInput captures caller provided game fields.
type GameInput struct {
	Title              string
	Genre              *string
	AverageSessionMins int
}

// Schedule represents one gaming session on a calendar date.
type Schedule struct {
	ID              string
	OwnerID         string
	GameID          string
	Title           string
	Description     string
	Date            time.Time
	StartTime       string
	EndTime         string
	MaxParticipants *int
	Invites         []ScheduleInvite
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleInvite attaches an invited friend and their response to a schedule.
type ScheduleInvite struct {
	FriendID string
	Status   string
}

// ScheduleInput captures caller provided schedule fields.
type ScheduleInput struct {
	GameID          string
	Title           string
	Description     string
	Date            time.Time
	StartTime       string
	DurationMins    int
	MaxParticipants *int
	FriendIDs       []string
}

// CreateScheduleParams wraps the data required to create a schedule.
type CreateScheduleParams struct {
	Principal Principal
	Input     ScheduleInput
}

// UpdateScheduleParams wraps the data required to update an existing schedule.
type UpdateScheduleParams struct {
	Principal  Principal
	ScheduleID string
	Input      ScheduleInput
}

// ListSchedulesParams wraps the data required to list schedules.
type ListSchedulesParams struct {
	Principal Principal
	From      *time.Time
	Until     *time.Time
}

// RespondInviteParams wraps an invitee's response to a schedule invite.
type RespondInviteParams struct {
	Principal  Principal
	ScheduleID string
	Accept     bool
}

// Event represents a one-off calendar entry.
type Event struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	Date         time.Time
	StartTime    string
	EndTime      string
	ReminderTime *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title        string
	Description  string
	Date         time.Time
	StartTime    string
	EndTime      string
	ReminderTime *string
}

// Notification represents one message in a user's inbox.
type Notification struct {
	ID        string
	Kind      string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// NewNotification carries one inbox entry to deliver.
type NewNotification struct {
	ID        string
	UserID    string
	Kind      string
	Message   string
	CreatedAt time.Time
}

// Notification kinds used by the services.
const (
	NotificationKindFriend   = "friend"
	NotificationKindInvite   = "invite"
	NotificationKindEvent    = "event"
	NotificationKindSchedule = "schedule"
)

// Template represents a recurring session definition.
type Template struct {
	ID              string
	OwnerID         string
	GameID          string
	Name            string
	Description     string
	TimeOfDay       string
	DurationMins    int
	MaxParticipants *int
	Pattern         recurrence.Pattern
	Weekdays        []time.Weekday
	MonthDay        int
	Invites         []TemplateInvite
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TemplateInvite marks a friend as part of a template's invite list.
type TemplateInvite struct {
	FriendID   string
	AutoInvite bool
}

// TemplateInput captures caller provided template fields.
type TemplateInput struct {
	GameID          string
	Name            string
	Description     string
	TimeOfDay       string
	DurationMins    int
	MaxParticipants *int
	Pattern         string
	Weekdays        []string
	MonthDay        int
	Invites         []TemplateInvite
}

// CreateTemplateParams wraps the data required to create a template.
type CreateTemplateParams struct {
	Principal Principal
	Input     TemplateInput
}

// UpdateTemplateParams wraps the data required to update a template.
type UpdateTemplateParams struct {
	Principal  Principal
	TemplateID string
	Input      TemplateInput
}

// GenerateParams wraps the data required to expand a template over a range.
type GenerateParams struct {
	Principal  Principal
	TemplateID string
	StartDate  time.Time
	EndDate    time.Time
}
