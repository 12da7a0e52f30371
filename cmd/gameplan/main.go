package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/gameplan-scheduler/internal/application"
	"github.com/example/gameplan-scheduler/internal/config"
	httptransport "github.com/example/gameplan-scheduler/internal/http"
	"github.com/example/gameplan-scheduler/internal/logging"
	"github.com/example/gameplan-scheduler/internal/persistence"
	"github.com/example/gameplan-scheduler/internal/persistence/sqlite"
	"github.com/example/gameplan-scheduler/internal/recurrence"
)

func main() {
	bootLogger := logging.New(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	users := newUserStoreAdapter(sqlite.NewUserRepository(storage))
	sessions := newSessionRepositoryAdapter(sqlite.NewSessionRepository(storage))
	friends := newFriendGraphAdapter(sqlite.NewFriendRepository(storage), now)
	games := newGameRepositoryAdapter(sqlite.NewGameRepository(storage))
	schedules := newScheduleStoreAdapter(sqlite.NewScheduleRepository(storage))
	events := newEventStoreAdapter(sqlite.NewEventRepository(storage), now)
	notifications := newNotificationStoreAdapter(sqlite.NewNotificationRepository(storage))
	templates := newTemplateStoreAdapter(sqlite.NewTemplateRepository(storage))

	notificationService := application.NewNotificationServiceWithLogger(notifications, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(users, sessions, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)
	userService := application.NewUserServiceWithLogger(users, now, logger)
	friendService := application.NewFriendServiceWithLogger(friends, users, notificationService, now, logger)
	gameService := application.NewGameServiceWithLogger(games, idGenerator, now, logger)
	scheduleService := application.NewScheduleServiceWithLogger(schedules, friends, games, users, notificationService, idGenerator, now, logger)
	eventService := application.NewEventServiceWithLogger(events, friends, users, notificationService, idGenerator, now, logger)
	templateService := application.NewTemplateServiceWithLogger(templates, games, friends, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Users:         httptransport.NewUserHandler(userService, logger),
		Friends:       httptransport.NewFriendHandler(friendService, logger),
		Games:         httptransport.NewGameHandler(gameService, logger),
		Schedules:     httptransport.NewScheduleHandler(scheduleService, logger),
		Events:        httptransport.NewEventHandler(eventService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Templates:     httptransport.NewTemplateHandler(templateService, logger),
		Sessions:      authService,
		Store:         storage,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("gameplan API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// ----------------------------- user adapter ------------------------------

// userStoreAdapter bridges the persistence user repository to the
// application's UserStore, UserRepository and UserDirectory interfaces.
type userStoreAdapter struct {
	repo persistence.UserRepository
}

func newUserStoreAdapter(repo persistence.UserRepository) *userStoreAdapter {
	return &userStoreAdapter{repo: repo}
}

func (a *userStoreAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	record := persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := a.repo.CreateUser(ctx, record); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *userStoreAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	record := persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: current.PasswordHash,
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := a.repo.UpdateUser(ctx, record); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) SearchUsers(ctx context.Context, query, excludeID string) ([]application.User, error) {
	stored, err := a.repo.SearchUsers(ctx, query, excludeID)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(stored))
	for _, user := range stored {
		users = append(users, toApplicationUser(user))
	}
	return users, nil
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ---------------------------- session adapter ----------------------------

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   session.RevokedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   session.RevokedAt,
	}
}

// ----------------------------- friend adapter ----------------------------

type friendGraphAdapter struct {
	repo persistence.FriendRepository
	now  func() time.Time
}

func newFriendGraphAdapter(repo persistence.FriendRepository, now func() time.Time) *friendGraphAdapter {
	if now == nil {
		now = time.Now
	}
	return &friendGraphAdapter{repo: repo, now: now}
}

func (a *friendGraphAdapter) AddFriendship(ctx context.Context, userID, friendID string) error {
	return a.repo.AddFriendship(ctx, userID, friendID, a.now().UTC())
}

func (a *friendGraphAdapter) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	return a.repo.RemoveFriendship(ctx, userID, friendID)
}

func (a *friendGraphAdapter) ListFriends(ctx context.Context, userID string) ([]application.Friend, error) {
	stored, err := a.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends := make([]application.Friend, 0, len(stored))
	for _, user := range stored {
		friends = append(friends, application.Friend{UserID: user.ID, Username: user.Username})
	}
	return friends, nil
}

func (a *friendGraphAdapter) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	return a.repo.AreFriends(ctx, userID, friendID)
}

// ------------------------------ game adapter -----------------------------

// gameRepositoryAdapter serves both the catalog CRUD interface and the
// existence checks issued by the schedule and template services.
type gameRepositoryAdapter struct {
	repo persistence.GameRepository
}

func newGameRepositoryAdapter(repo persistence.GameRepository) *gameRepositoryAdapter {
	return &gameRepositoryAdapter{repo: repo}
}

func (a *gameRepositoryAdapter) CreateGame(ctx context.Context, game application.Game) (application.Game, error) {
	if err := a.repo.CreateGame(ctx, toPersistenceGame(game)); err != nil {
		return application.Game{}, err
	}
	stored, err := a.repo.GetGame(ctx, game.ID)
	if err != nil {
		return application.Game{}, err
	}
	return toApplicationGame(stored), nil
}

func (a *gameRepositoryAdapter) GetGame(ctx context.Context, id string) (application.Game, error) {
	stored, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return application.Game{}, err
	}
	return toApplicationGame(stored), nil
}

func (a *gameRepositoryAdapter) UpdateGame(ctx context.Context, game application.Game) (application.Game, error) {
	if err := a.repo.UpdateGame(ctx, toPersistenceGame(game)); err != nil {
		return application.Game{}, err
	}
	stored, err := a.repo.GetGame(ctx, game.ID)
	if err != nil {
		return application.Game{}, err
	}
	return toApplicationGame(stored), nil
}

func (a *gameRepositoryAdapter) ListGames(ctx context.Context) ([]application.Game, error) {
	stored, err := a.repo.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	games := make([]application.Game, 0, len(stored))
	for _, game := range stored {
		games = append(games, toApplicationGame(game))
	}
	return games, nil
}

func (a *gameRepositoryAdapter) DeleteGame(ctx context.Context, id string) error {
	return a.repo.DeleteGame(ctx, id)
}

func (a *gameRepositoryAdapter) GameExists(ctx context.Context, id string) (bool, error) {
	_, err := a.repo.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toPersistenceGame(game application.Game) persistence.Game {
	return persistence.Game{
		ID:                 game.ID,
		Title:              game.Title,
		Genre:              game.Genre,
		AverageSessionMins: game.AverageSessionMins,
		CreatedAt:          game.CreatedAt,
		UpdatedAt:          game.UpdatedAt,
	}
}

func toApplicationGame(game persistence.Game) application.Game {
	return application.Game{
		ID:                 game.ID,
		Title:              game.Title,
		Genre:              game.Genre,
		AverageSessionMins: game.AverageSessionMins,
		CreatedAt:          game.CreatedAt,
		UpdatedAt:          game.UpdatedAt,
	}
}

// ---------------------------- schedule adapter ---------------------------

type scheduleStoreAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleStoreAdapter(repo persistence.ScheduleRepository) *scheduleStoreAdapter {
	return &scheduleStoreAdapter{repo: repo}
}

func (a *scheduleStoreAdapter) CreateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	if err := a.repo.CreateSchedule(ctx, toPersistenceSchedule(schedule), toPersistenceInvites(schedule)); err != nil {
		return application.Schedule{}, err
	}
	return a.GetSchedule(ctx, schedule.ID)
}

func (a *scheduleStoreAdapter) GetSchedule(ctx context.Context, id string) (application.Schedule, error) {
	stored, err := a.repo.GetSchedule(ctx, id)
	if err != nil {
		return application.Schedule{}, err
	}
	invites, err := a.repo.ListInvites(ctx, id)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored, invites), nil
}

func (a *scheduleStoreAdapter) UpdateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	if err := a.repo.UpdateSchedule(ctx, toPersistenceSchedule(schedule), toPersistenceInvites(schedule)); err != nil {
		return application.Schedule{}, err
	}
	return a.GetSchedule(ctx, schedule.ID)
}

func (a *scheduleStoreAdapter) ListSchedules(ctx context.Context, filter application.ScheduleStoreFilter) ([]application.Schedule, error) {
	stored, err := a.repo.ListSchedules(ctx, persistence.ScheduleFilter{
		UserID: filter.UserID,
		From:   filter.From,
		Until:  filter.Until,
	})
	if err != nil {
		return nil, err
	}
	schedules := make([]application.Schedule, 0, len(stored))
	for _, schedule := range stored {
		invites, err := a.repo.ListInvites(ctx, schedule.ID)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, toApplicationSchedule(schedule, invites))
	}
	return schedules, nil
}

func (a *scheduleStoreAdapter) SetInviteStatus(ctx context.Context, scheduleID, friendID, status string) error {
	return a.repo.SetInviteStatus(ctx, scheduleID, friendID, status)
}

func (a *scheduleStoreAdapter) DeleteSchedule(ctx context.Context, id string) error {
	return a.repo.DeleteSchedule(ctx, id)
}

func toPersistenceSchedule(schedule application.Schedule) persistence.Schedule {
	return persistence.Schedule{
		ID:              schedule.ID,
		OwnerID:         schedule.OwnerID,
		GameID:          schedule.GameID,
		Title:           schedule.Title,
		Description:     schedule.Description,
		Date:            schedule.Date,
		StartTime:       schedule.StartTime,
		EndTime:         schedule.EndTime,
		MaxParticipants: schedule.MaxParticipants,
		CreatedAt:       schedule.CreatedAt,
		UpdatedAt:       schedule.UpdatedAt,
	}
}

func toPersistenceInvites(schedule application.Schedule) []persistence.ScheduleFriend {
	invites := make([]persistence.ScheduleFriend, 0, len(schedule.Invites))
	for _, invite := range schedule.Invites {
		invites = append(invites, persistence.ScheduleFriend{
			ScheduleID: schedule.ID,
			FriendID:   invite.FriendID,
			Status:     invite.Status,
			CreatedAt:  schedule.UpdatedAt,
		})
	}
	return invites
}

func toApplicationSchedule(schedule persistence.Schedule, invites []persistence.ScheduleFriend) application.Schedule {
	converted := application.Schedule{
		ID:              schedule.ID,
		OwnerID:         schedule.OwnerID,
		GameID:          schedule.GameID,
		Title:           schedule.Title,
		Description:     schedule.Description,
		Date:            schedule.Date,
		StartTime:       schedule.StartTime,
		EndTime:         schedule.EndTime,
		MaxParticipants: schedule.MaxParticipants,
		CreatedAt:       schedule.CreatedAt,
		UpdatedAt:       schedule.UpdatedAt,
	}
	for _, invite := range invites {
		converted.Invites = append(converted.Invites, application.ScheduleInvite{
			FriendID: invite.FriendID,
			Status:   invite.Status,
		})
	}
	return converted
}

// ----------------------------- event adapter -----------------------------

type eventStoreAdapter struct {
	repo persistence.EventRepository
	now  func() time.Time
}

func newEventStoreAdapter(repo persistence.EventRepository, now func() time.Time) *eventStoreAdapter {
	if now == nil {
		now = time.Now
	}
	return &eventStoreAdapter{repo: repo, now: now}
}

func (a *eventStoreAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventStoreAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventStoreAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventStoreAdapter) ListEvents(ctx context.Context, userID string, from, until *time.Time) ([]application.Event, error) {
	stored, err := a.repo.ListEvents(ctx, userID, from, until)
	if err != nil {
		return nil, err
	}
	events := make([]application.Event, 0, len(stored))
	for _, event := range stored {
		events = append(events, toApplicationEvent(event))
	}
	return events, nil
}

func (a *eventStoreAdapter) ShareEvent(ctx context.Context, eventID, friendID string) error {
	return a.repo.ShareEvent(ctx, eventID, friendID, a.now().UTC())
}

func (a *eventStoreAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:           event.ID,
		OwnerID:      event.OwnerID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		ReminderTime: event.ReminderTime,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func toApplicationEvent(event persistence.Event) application.Event {
	return application.Event{
		ID:           event.ID,
		OwnerID:      event.OwnerID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		ReminderTime: event.ReminderTime,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

// -------------------------- notification adapter -------------------------

type notificationStoreAdapter struct {
	repo persistence.NotificationRepository
}

func newNotificationStoreAdapter(repo persistence.NotificationRepository) *notificationStoreAdapter {
	return &notificationStoreAdapter{repo: repo}
}

func (a *notificationStoreAdapter) CreateNotifications(ctx context.Context, notifications []application.NewNotification) error {
	records := make([]persistence.Notification, 0, len(notifications))
	for _, notification := range notifications {
		records = append(records, persistence.Notification{
			ID:        notification.ID,
			UserID:    notification.UserID,
			Kind:      notification.Kind,
			Message:   notification.Message,
			CreatedAt: notification.CreatedAt,
		})
	}
	return a.repo.CreateNotifications(ctx, records)
}

func (a *notificationStoreAdapter) ListNotifications(ctx context.Context, userID string) ([]application.Notification, error) {
	stored, err := a.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications := make([]application.Notification, 0, len(stored))
	for _, notification := range stored {
		notifications = append(notifications, application.Notification{
			ID:        notification.ID,
			Kind:      notification.Kind,
			Message:   notification.Message,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		})
	}
	return notifications, nil
}

func (a *notificationStoreAdapter) MarkRead(ctx context.Context, userID, notificationID string) error {
	return a.repo.MarkRead(ctx, userID, notificationID)
}

func (a *notificationStoreAdapter) MarkAllRead(ctx context.Context, userID string) error {
	return a.repo.MarkAllRead(ctx, userID)
}

// ---------------------------- template adapter ---------------------------

type templateStoreAdapter struct {
	repo persistence.TemplateRepository
}

func newTemplateStoreAdapter(repo persistence.TemplateRepository) *templateStoreAdapter {
	return &templateStoreAdapter{repo: repo}
}

func (a *templateStoreAdapter) CreateTemplate(ctx context.Context, template application.Template) (application.Template, error) {
	if err := a.repo.CreateTemplate(ctx, toPersistenceTemplate(template)); err != nil {
		return application.Template{}, err
	}
	return a.GetTemplate(ctx, template.ID)
}

func (a *templateStoreAdapter) GetTemplate(ctx context.Context, id string) (application.Template, error) {
	stored, err := a.repo.GetTemplate(ctx, id)
	if err != nil {
		return application.Template{}, err
	}
	return toApplicationTemplate(stored)
}

func (a *templateStoreAdapter) UpdateTemplate(ctx context.Context, template application.Template) (application.Template, error) {
	if err := a.repo.UpdateTemplate(ctx, toPersistenceTemplate(template)); err != nil {
		return application.Template{}, err
	}
	return a.GetTemplate(ctx, template.ID)
}

func (a *templateStoreAdapter) ListTemplates(ctx context.Context, ownerID string) ([]application.Template, error) {
	stored, err := a.repo.ListTemplates(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	templates := make([]application.Template, 0, len(stored))
	for _, template := range stored {
		converted, err := toApplicationTemplate(template)
		if err != nil {
			return nil, err
		}
		templates = append(templates, converted)
	}
	return templates, nil
}

func (a *templateStoreAdapter) DeleteTemplate(ctx context.Context, id string) error {
	return a.repo.DeleteTemplate(ctx, id)
}

func (a *templateStoreAdapter) ListOccurrenceDates(ctx context.Context, templateID string) ([]time.Time, error) {
	return a.repo.ListOccurrenceDates(ctx, templateID)
}

func (a *templateStoreAdapter) CreateOccurrences(ctx context.Context, templateID string, candidates []application.OccurrenceCandidate) ([]string, error) {
	converted := make([]persistence.NewOccurrence, 0, len(candidates))
	for _, candidate := range candidates {
		converted = append(converted, persistence.NewOccurrence{
			Date:     candidate.Date,
			Schedule: toPersistenceSchedule(candidate.Schedule),
			Invites:  toPersistenceInvites(candidate.Schedule),
		})
	}
	return a.repo.CreateOccurrences(ctx, templateID, converted)
}

func toPersistenceTemplate(template application.Template) persistence.ScheduleTemplate {
	converted := persistence.ScheduleTemplate{
		ID:              template.ID,
		OwnerID:         template.OwnerID,
		GameID:          template.GameID,
		Name:            template.Name,
		Description:     template.Description,
		TimeOfDay:       template.TimeOfDay,
		DurationMins:    template.DurationMins,
		MaxParticipants: template.MaxParticipants,
		Pattern:         string(template.Pattern),
		Weekdays:        template.Weekdays,
		MonthDay:        template.MonthDay,
		CreatedAt:       template.CreatedAt,
		UpdatedAt:       template.UpdatedAt,
	}
	for _, invite := range template.Invites {
		converted.Invites = append(converted.Invites, persistence.TemplateInvite{
			TemplateID: template.ID,
			FriendID:   invite.FriendID,
			AutoInvite: invite.AutoInvite,
		})
	}
	return converted
}

func toApplicationTemplate(template persistence.ScheduleTemplate) (application.Template, error) {
	pattern, err := recurrence.ParsePattern(template.Pattern)
	if err != nil {
		return application.Template{}, err
	}
	converted := application.Template{
		ID:              template.ID,
		OwnerID:         template.OwnerID,
		GameID:          template.GameID,
		Name:            template.Name,
		Description:     template.Description,
		TimeOfDay:       template.TimeOfDay,
		DurationMins:    template.DurationMins,
		MaxParticipants: template.MaxParticipants,
		Pattern:         pattern,
		Weekdays:        template.Weekdays,
		MonthDay:        template.MonthDay,
		CreatedAt:       template.CreatedAt,
		UpdatedAt:       template.UpdatedAt,
	}
	for _, invite := range template.Invites {
		converted.Invites = append(converted.Invites, application.TemplateInvite{
			FriendID:   invite.FriendID,
			AutoInvite: invite.AutoInvite,
		})
	}
	return converted, nil
}
