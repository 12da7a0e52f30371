package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
	"github.com/example/gameplan-scheduler/internal/recurrence"
)

// ScheduleStore captures the persistence interactions needed by the schedule service.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleStoreFilter) ([]Schedule, error)
	SetInviteStatus(ctx context.Context, scheduleID, friendID, status string) error
	DeleteSchedule(ctx context.Context, id string) error
}

// ScheduleStoreFilter narrows queries issued to the schedule store.
type ScheduleStoreFilter struct {
	// UserID limits results to schedules owned by or inviting the user.
	UserID string
	From   *time.Time
	Until  *time.Time
}

// FriendChecker answers friendship membership queries.
type FriendChecker interface {
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
}

// GameCatalog exposes game lookup operations.
type GameCatalog interface {
	GameExists(ctx context.Context, id string) (bool, error)
}

// ScheduleService orchestrates validation, authorization and persistence for
// gaming sessions.
type ScheduleService struct {
	schedules   ScheduleStore
	friends     FriendChecker
	games       GameCatalog
	users       UserDirectory
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService constructs a schedule service with the provided dependencies.
func NewScheduleService(schedules ScheduleStore, friends FriendChecker, games GameCatalog, users UserDirectory, notifier Notifier, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, friends, games, users, notifier, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger constructs a schedule service with a specified logger.
func NewScheduleServiceWithLogger(schedules ScheduleStore, friends FriendChecker, games GameCatalog, users UserDirectory, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		friends:     friends,
		games:       games,
		users:       users,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// CreateSchedule validates the request before delegating to persistence, then
// notifies the invited friends.
func (s *ScheduleService) CreateSchedule(ctx context.Context, params CreateScheduleParams) (schedule Schedule, err error) {
	if s == nil || s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return Schedule{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateSchedule", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", schedule.ID).InfoContext(ctx, "schedule created")
	}()

	input := normalizeScheduleInput(params.Input)
	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		return Schedule{}, vErr
	}

	if err = s.ensureGameExists(ctx, input.GameID); err != nil {
		return Schedule{}, err
	}
	if err = s.ensureAllFriends(ctx, principal.UserID, input.FriendIDs); err != nil {
		return Schedule{}, err
	}

	endTime, err := endTimeAfter(input.StartTime, input.DurationMins)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("start_time", "start time must be in HH:MM format")
		return Schedule{}, vErr
	}

	createdAt := s.now()
	schedule = Schedule{
		ID:              s.idGenerator(),
		OwnerID:         principal.UserID,
		GameID:          input.GameID,
		Title:           input.Title,
		Description:     input.Description,
		Date:            recurrence.Midnight(input.Date),
		StartTime:       input.StartTime,
		EndTime:         endTime,
		MaxParticipants: input.MaxParticipants,
		Invites:         pendingInvites(input.FriendIDs),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	schedule, err = s.schedules.CreateSchedule(ctx, schedule)
	if err != nil {
		return Schedule{}, mapScheduleRepoError(err)
	}

	s.notifyInvited(ctx, principal.UserID, schedule, input.FriendIDs, logger)
	return schedule, nil
}

// UpdateSchedule applies validation and authorization before updating the
// stored session. Invite statuses survive for friends kept on the list; newly
// added friends start out pending.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, params UpdateScheduleParams) (schedule Schedule, err error) {
	if s == nil || s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return Schedule{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateSchedule", "principal_id", principal.UserID, "schedule_id", params.ScheduleID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated")
	}()

	existing, err := s.schedules.GetSchedule(ctx, params.ScheduleID)
	if err != nil {
		return Schedule{}, mapScheduleRepoError(err)
	}
	if existing.OwnerID != principal.UserID {
		return Schedule{}, ErrNotFound
	}

	input := normalizeScheduleInput(params.Input)
	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		return Schedule{}, vErr
	}

	if err = s.ensureGameExists(ctx, input.GameID); err != nil {
		return Schedule{}, err
	}
	if err = s.ensureAllFriends(ctx, principal.UserID, input.FriendIDs); err != nil {
		return Schedule{}, err
	}

	endTime, err := endTimeAfter(input.StartTime, input.DurationMins)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("start_time", "start time must be in HH:MM format")
		return Schedule{}, vErr
	}

	previousStatus := make(map[string]string, len(existing.Invites))
	for _, invite := range existing.Invites {
		previousStatus[invite.FriendID] = invite.Status
	}
	invites := make([]ScheduleInvite, 0, len(input.FriendIDs))
	newlyInvited := make([]string, 0)
	for _, friendID := range input.FriendIDs {
		status, kept := previousStatus[friendID]
		if !kept {
			status = persistence.InviteStatusPending
			newlyInvited = append(newlyInvited, friendID)
		}
		invites = append(invites, ScheduleInvite{FriendID: friendID, Status: status})
	}

	existing.GameID = input.GameID
	existing.Title = input.Title
	existing.Description = input.Description
	existing.Date = recurrence.Midnight(input.Date)
	existing.StartTime = input.StartTime
	existing.EndTime = endTime
	existing.MaxParticipants = input.MaxParticipants
	existing.Invites = invites
	existing.UpdatedAt = s.now()

	schedule, err = s.schedules.UpdateSchedule(ctx, existing)
	if err != nil {
		return Schedule{}, mapScheduleRepoError(err)
	}

	s.notifyInvited(ctx, principal.UserID, schedule, newlyInvited, logger)
	return schedule, nil
}

// GetSchedule returns one session to its owner or an invited friend.
func (s *ScheduleService) GetSchedule(ctx context.Context, principal Principal, id string) (Schedule, error) {
	if s == nil || s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule store not configured")
	}
	if principal.UserID == "" {
		return Schedule{}, ErrUnauthorized
	}

	schedule, err := s.schedules.GetSchedule(ctx, strings.TrimSpace(id))
	if err != nil {
		return Schedule{}, mapScheduleRepoError(err)
	}
	if !scheduleVisibleTo(schedule, principal.UserID) {
		return Schedule{}, ErrNotFound
	}
	return schedule, nil
}

// ListSchedules returns sessions the caller owns or is invited to, ascending
// by date and start time.
func (s *ScheduleService) ListSchedules(ctx context.Context, params ListSchedulesParams) ([]Schedule, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule store not configured")
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if params.From != nil && params.Until != nil && params.From.After(*params.Until) {
		return nil, ErrInvalidRange
	}

	schedules, err := s.schedules.ListSchedules(ctx, ScheduleStoreFilter{
		UserID: params.Principal.UserID,
		From:   normalizeDatePointer(params.From),
		Until:  normalizeDatePointer(params.Until),
	})
	if err != nil {
		return nil, mapScheduleRepoError(err)
	}
	return schedules, nil
}

// ListUpcoming returns the caller's sessions from today onward.
func (s *ScheduleService) ListUpcoming(ctx context.Context, principal Principal) ([]Schedule, error) {
	today := recurrence.Midnight(s.now())
	return s.ListSchedules(ctx, ListSchedulesParams{Principal: principal, From: &today})
}

// DeleteSchedule removes a session the caller owns.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil || s.schedules == nil {
		return fmt.Errorf("schedule store not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteSchedule", "principal_id", principal.UserID, "schedule_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule deleted")
	}()

	existing, err := s.schedules.GetSchedule(ctx, strings.TrimSpace(id))
	if err != nil {
		return mapScheduleRepoError(err)
	}
	if existing.OwnerID != principal.UserID {
		return ErrNotFound
	}

	if err = s.schedules.DeleteSchedule(ctx, existing.ID); err != nil {
		return mapScheduleRepoError(err)
	}
	return nil
}

// RespondInvite records the caller's answer to a session invite and notifies
// the owner.
func (s *ScheduleService) RespondInvite(ctx context.Context, params RespondInviteParams) (err error) {
	if s == nil || s.schedules == nil {
		return fmt.Errorf("schedule store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "RespondInvite", "principal_id", principal.UserID, "schedule_id", params.ScheduleID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to respond to invite", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "invite response recorded")
	}()

	schedule, err := s.schedules.GetSchedule(ctx, strings.TrimSpace(params.ScheduleID))
	if err != nil {
		return mapScheduleRepoError(err)
	}

	invited := false
	for _, invite := range schedule.Invites {
		if invite.FriendID == principal.UserID {
			invited = true
			break
		}
	}
	if !invited {
		return ErrNotFound
	}

	status := persistence.InviteStatusDeclined
	verb := "declined"
	if params.Accept {
		status = persistence.InviteStatusAccepted
		verb = "accepted"
	}

	if err = s.schedules.SetInviteStatus(ctx, schedule.ID, principal.UserID, status); err != nil {
		return mapScheduleRepoError(err)
	}

	if s.notifier != nil && s.users != nil {
		responder, lookupErr := s.users.GetUser(ctx, principal.UserID)
		if lookupErr != nil {
			logger.WarnContext(ctx, "failed to resolve responder for notification", "error", lookupErr)
			return nil
		}
		message := fmt.Sprintf("%s %s your invite to %s", responder.Username, verb, schedule.Title)
		if notifyErr := s.notifier.Notify(ctx, []string{schedule.OwnerID}, NotificationKindInvite, message); notifyErr != nil {
			logger.WarnContext(ctx, "failed to deliver invite response notification", "error", notifyErr)
		}
	}
	return nil
}

func (s *ScheduleService) ensureGameExists(ctx context.Context, gameID string) error {
	if s.games == nil {
		return nil
	}
	exists, err := s.games.GameExists(ctx, gameID)
	if err != nil {
		return err
	}
	if !exists {
		vErr := &ValidationError{}
		vErr.add("game_id", "game does not exist")
		return vErr
	}
	return nil
}

func (s *ScheduleService) ensureAllFriends(ctx context.Context, userID string, friendIDs []string) error {
	if s.friends == nil || len(friendIDs) == 0 {
		return nil
	}
	for _, friendID := range friendIDs {
		ok, err := s.friends.AreFriends(ctx, userID, friendID)
		if err != nil {
			return err
		}
		if !ok {
			vErr := &ValidationError{}
			vErr.add("friend_ids", "only friends can be invited")
			return vErr
		}
	}
	return nil
}

// notifyInvited is best effort; schedule writes never roll back on a failed
// notification.
func (s *ScheduleService) notifyInvited(ctx context.Context, ownerID string, schedule Schedule, friendIDs []string, logger *slog.Logger) {
	if s.notifier == nil || len(friendIDs) == 0 {
		return
	}
	ownerName := ownerID
	if s.users != nil {
		if owner, err := s.users.GetUser(ctx, ownerID); err == nil {
			ownerName = owner.Username
		}
	}
	message := fmt.Sprintf("%s invited you to %s on %s", ownerName, schedule.Title, schedule.Date.Format("2006-01-02"))
	if err := s.notifier.Notify(ctx, friendIDs, NotificationKindInvite, message); err != nil {
		logger.WarnContext(ctx, "failed to deliver invite notifications", "error", err)
	}
}

func scheduleVisibleTo(schedule Schedule, userID string) bool {
	if schedule.OwnerID == userID {
		return true
	}
	for _, invite := range schedule.Invites {
		if invite.FriendID == userID {
			return true
		}
	}
	return false
}

func normalizeScheduleInput(input ScheduleInput) ScheduleInput {
	input.GameID = strings.TrimSpace(input.GameID)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.FriendIDs = uniqueStrings(input.FriendIDs)
	return input
}

func validateScheduleInput(input ScheduleInput) *ValidationError {
	vErr := &ValidationError{}
	if input.GameID == "" {
		vErr.add("game_id", "game is required")
	}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if _, err := parseClock(input.StartTime); err != nil {
		vErr.add("start_time", "start time must be in HH:MM format")
	}
	if input.DurationMins <= 0 {
		vErr.add("duration_mins", "duration must be positive")
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		vErr.add("max_participants", "max participants must be positive")
	}
	return vErr
}

func pendingInvites(friendIDs []string) []ScheduleInvite {
	if len(friendIDs) == 0 {
		return nil
	}
	invites := make([]ScheduleInvite, 0, len(friendIDs))
	for _, friendID := range friendIDs {
		invites = append(invites, ScheduleInvite{FriendID: friendID, Status: persistence.InviteStatusPending})
	}
	return invites
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}

func normalizeDatePointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := recurrence.Midnight(*value)
	return &normalized
}

// parseClock converts a wall-clock "HH:MM" string to minutes after midnight.
func parseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// endTimeAfter returns the "HH:MM" wall-clock time durationMins after start,
// wrapping past midnight.
func endTimeAfter(start string, durationMins int) (string, error) {
	minutes, err := parseClock(start)
	if err != nil {
		return "", err
	}
	total := (minutes + durationMins) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

func mapScheduleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("game_id", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("schedule", "schedule violates a storage constraint")
		return vErr
	}
	return err
}
