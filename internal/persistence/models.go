package persistence

import "time"

// User represents a player account in the GamePlan domain.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
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

// Friendship links two users. Rows are stored in both directions so that
// listing by user_id never needs a union query.
type Friendship struct {
	UserID    string
	FriendID  string
	CreatedAt time.Time
}

// Game represents a catalog entry players can schedule sessions for.
type Game struct {
	ID                 string
	Title              string
	Genre              *string
	AverageSessionMins int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Schedule represents one concrete gaming session on a calendar date.
//
// Date carries only the calendar day (midnight UTC); StartTime and EndTime
// are wall-clock "HH:MM" strings, matching the owner's local convention.
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
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleFriend attaches an invited friend to a schedule.
type ScheduleFriend struct {
	ScheduleID string
	FriendID   string
	Status     string
	CreatedAt  time.Time
}

// Invite statuses recorded on schedule_friends rows.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// Event represents a one-off calendar entry outside the game catalog.
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

// Notification represents a message delivered to a user's in-app inbox.
type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// ScheduleTemplate describes a recurring session definition.
//
// Weekdays is meaningful for weekly/biweekly patterns, MonthDay for monthly;
// the unused selector is ignored. Weekday names are comma-joined lowercase
// text at the storage boundary only.
type ScheduleTemplate struct {
	ID              string
	OwnerID         string
	GameID          string
	Name            string
	Description     string
	TimeOfDay       string
	DurationMins    int
	MaxParticipants *int
	Pattern         string
	Weekdays        []time.Weekday
	MonthDay        int
	Invites         []TemplateInvite
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TemplateInvite marks a friend as part of a template's invite list.
type TemplateInvite struct {
	TemplateID string
	FriendID   string
	AutoInvite bool
}

// GeneratedOccurrence links a template to the schedule materialized for one
// calendar date. (TemplateID, Date) is the natural key.
type GeneratedOccurrence struct {
	TemplateID string
	Date       time.Time
	ScheduleID string
	CreatedAt  time.Time
}

// NewOccurrence carries the rows to materialize for one candidate date when
// generating from a template.
type NewOccurrence struct {
	Date     time.Time
	Schedule Schedule
	Invites  []ScheduleFriend
}
