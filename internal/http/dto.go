package http

import (
	"fmt"
	"time"

	"github.com/example/gameplan-scheduler/internal/application"
	"github.com/example/gameplan-scheduler/internal/recurrence"
)

const dateLayout = "2006-01-02"

type userDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type friendDTO struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type gameDTO struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Genre              *string `json:"genre,omitempty"`
	AverageSessionMins int     `json:"average_session_mins"`
}

func toGameDTO(game application.Game) gameDTO {
	return gameDTO{
		ID:                 game.ID,
		Title:              game.Title,
		Genre:              game.Genre,
		AverageSessionMins: game.AverageSessionMins,
	}
}

type scheduleInviteDTO struct {
	FriendID string `json:"friend_id"`
	Status   string `json:"status"`
}

type scheduleDTO struct {
	ID              string              `json:"id"`
	OwnerID         string              `json:"owner_id"`
	GameID          string              `json:"game_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Date            string              `json:"date"`
	StartTime       string              `json:"start_time"`
	EndTime         string              `json:"end_time"`
	MaxParticipants *int                `json:"max_participants,omitempty"`
	Invites         []scheduleInviteDTO `json:"invites,omitempty"`
}

func toScheduleDTO(schedule application.Schedule) scheduleDTO {
	dto := scheduleDTO{
		ID:              schedule.ID,
		OwnerID:         schedule.OwnerID,
		GameID:          schedule.GameID,
		Title:           schedule.Title,
		Description:     schedule.Description,
		Date:            schedule.Date.Format(dateLayout),
		StartTime:       schedule.StartTime,
		EndTime:         schedule.EndTime,
		MaxParticipants: schedule.MaxParticipants,
	}
	for _, invite := range schedule.Invites {
		dto.Invites = append(dto.Invites, scheduleInviteDTO{FriendID: invite.FriendID, Status: invite.Status})
	}
	return dto
}

type eventDTO struct {
	ID           string  `json:"id"`
	OwnerID      string  `json:"owner_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	ReminderTime *string `json:"reminder_time,omitempty"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:           event.ID,
		OwnerID:      event.OwnerID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date.Format(dateLayout),
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		ReminderTime: event.ReminderTime,
	}
}

type notificationDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationDTO(notification application.Notification) notificationDTO {
	return notificationDTO{
		ID:        notification.ID,
		Kind:      notification.Kind,
		Message:   notification.Message,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type templateInviteDTO struct {
	FriendID   string `json:"friend_id"`
	AutoInvite bool   `json:"auto_invite"`
}

type templateDTO struct {
	ID              string              `json:"id"`
	GameID          string              `json:"game_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	TimeOfDay       string              `json:"time_of_day"`
	DurationMins    int                 `json:"duration_mins"`
	MaxParticipants *int                `json:"max_participants,omitempty"`
	Pattern         string              `json:"pattern"`
	Weekdays        []string            `json:"weekdays,omitempty"`
	MonthDay        int                 `json:"month_day,omitempty"`
	Invites         []templateInviteDTO `json:"invites,omitempty"`
}

func toTemplateDTO(template application.Template) templateDTO {
	dto := templateDTO{
		ID:              template.ID,
		GameID:          template.GameID,
		Name:            template.Name,
		Description:     template.Description,
		TimeOfDay:       template.TimeOfDay,
		DurationMins:    template.DurationMins,
		MaxParticipants: template.MaxParticipants,
		Pattern:         string(template.Pattern),
		MonthDay:        template.MonthDay,
	}
	for _, day := range template.Weekdays {
		dto.Weekdays = append(dto.Weekdays, recurrence.WeekdayName(day))
	}
	for _, invite := range template.Invites {
		dto.Invites = append(dto.Invites, templateInviteDTO{FriendID: invite.FriendID, AutoInvite: invite.AutoInvite})
	}
	return dto
}

func parseDateField(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must use the YYYY-MM-DD format", field)
	}
	return parsed, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("dates must use the YYYY-MM-DD format")
	}
	return &parsed, nil
}
