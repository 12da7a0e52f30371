package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
	"github.com/example/gameplan-scheduler/internal/recurrence"
)

var (
	userCounter     uint64
	gameCounter     uint64
	scheduleCounter uint64
	templateCounter uint64
)

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional overrides.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           id,
		Username:     fmt.Sprintf("player%03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user id.
func WithUserID(id string) UserOption {
	return func(user *persistence.User) { user.ID = id }
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(user *persistence.User) { user.Username = username }
}

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(user *persistence.User) { user.Email = email }
}

// GameOption configures a generated game fixture.
type GameOption func(*persistence.Game)

// NewGameFixture returns a deterministic game catalog entry.
func NewGameFixture(opts ...GameOption) persistence.Game {
	idx := atomic.AddUint64(&gameCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	genre := "Co-op"
	game := persistence.Game{
		ID:                 fmt.Sprintf("game-%03d", idx),
		Title:              fmt.Sprintf("Game %03d", idx),
		Genre:              &genre,
		AverageSessionMins: 90,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	for _, opt := range opts {
		opt(&game)
	}
	return game
}

// WithGameID overrides the generated game id.
func WithGameID(id string) GameOption {
	return func(game *persistence.Game) { game.ID = id }
}

// ScheduleOption configures a generated schedule fixture.
type ScheduleOption func(*persistence.Schedule)

// NewScheduleFixture returns a deterministic schedule. OwnerID and GameID
// default to placeholder ids; tests that persist the fixture must override
// them with ids of seeded rows.
func NewScheduleFixture(opts ...ScheduleOption) persistence.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	schedule := persistence.Schedule{
		ID:        fmt.Sprintf("schedule-%03d", idx),
		OwnerID:   "user-000",
		GameID:    "game-000",
		Title:     fmt.Sprintf("Session %03d", idx),
		Date:      recurrence.Midnight(referenceTime.AddDate(0, 0, int(idx))),
		StartTime: "20:00",
		EndTime:   "21:30",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// WithScheduleOwner overrides the schedule owner id.
func WithScheduleOwner(ownerID string) ScheduleOption {
	return func(schedule *persistence.Schedule) { schedule.OwnerID = ownerID }
}

// WithScheduleGame overrides the schedule game id.
func WithScheduleGame(gameID string) ScheduleOption {
	return func(schedule *persistence.Schedule) { schedule.GameID = gameID }
}

// WithScheduleDate overrides the calendar date, normalised to midnight UTC.
func WithScheduleDate(date time.Time) ScheduleOption {
	return func(schedule *persistence.Schedule) { schedule.Date = recurrence.Midnight(date) }
}

// TemplateOption configures a generated template fixture.
type TemplateOption func(*persistence.ScheduleTemplate)

// NewTemplateFixture returns a deterministic weekly template. OwnerID and
// GameID default to placeholder ids; override them for persisted fixtures.
func NewTemplateFixture(opts ...TemplateOption) persistence.ScheduleTemplate {
	idx := atomic.AddUint64(&templateCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	template := persistence.ScheduleTemplate{
		ID:           fmt.Sprintf("template-%03d", idx),
		OwnerID:      "user-000",
		GameID:       "game-000",
		Name:         fmt.Sprintf("Template %03d", idx),
		TimeOfDay:    "20:00",
		DurationMins: 90,
		Pattern:      string(recurrence.PatternWeekly),
		Weekdays:     []time.Weekday{time.Monday, time.Thursday},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&template)
	}
	return template
}

// WithTemplateOwner overrides the template owner id.
func WithTemplateOwner(ownerID string) TemplateOption {
	return func(template *persistence.ScheduleTemplate) { template.OwnerID = ownerID }
}

// WithTemplateGame overrides the template game id.
func WithTemplateGame(gameID string) TemplateOption {
	return func(template *persistence.ScheduleTemplate) { template.GameID = gameID }
}

// WithTemplatePattern overrides the recurrence selectors wholesale.
func WithTemplatePattern(pattern recurrence.Pattern, weekdays []time.Weekday, monthDay int) TemplateOption {
	return func(template *persistence.ScheduleTemplate) {
		template.Pattern = string(pattern)
		template.Weekdays = weekdays
		template.MonthDay = monthDay
	}
}
