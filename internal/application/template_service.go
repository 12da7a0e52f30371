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

// OccurrenceCandidate carries the schedule to materialize for one candidate
// date of a generation run.
type OccurrenceCandidate struct {
	Date     time.Time
	Schedule Schedule
}

// TemplateStore captures the persistence interactions needed by the template
// service.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, template Template) (Template, error)
	GetTemplate(ctx context.Context, id string) (Template, error)
	// UpdateTemplate replaces the template and its invite list wholesale in
	// one transaction.
	UpdateTemplate(ctx context.Context, template Template) (Template, error)
	ListTemplates(ctx context.Context, ownerID string) ([]Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	// ListOccurrenceDates returns the dates already generated for the
	// template, ascending.
	ListOccurrenceDates(ctx context.Context, templateID string) ([]time.Time, error)
	// CreateOccurrences writes every candidate in a single transaction.
	// Candidates whose (template, date) pair was already generated are
	// skipped; any other failure rolls the whole call back. Returns the
	// schedule ids actually created, in candidate order.
	CreateOccurrences(ctx context.Context, templateID string, candidates []OccurrenceCandidate) ([]string, error)
}

// TemplateService orchestrates recurring session templates and their
// expansion into concrete schedules.
type TemplateService struct {
	templates   TemplateStore
	games       GameCatalog
	friends     FriendChecker
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTemplateService constructs a template service with the provided dependencies.
func NewTemplateService(templates TemplateStore, games GameCatalog, friends FriendChecker, idGenerator func() string, now func() time.Time) *TemplateService {
	return NewTemplateServiceWithLogger(templates, games, friends, idGenerator, now, nil)
}

// NewTemplateServiceWithLogger constructs a template service with a specified logger.
func NewTemplateServiceWithLogger(templates TemplateStore, games GameCatalog, friends FriendChecker, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TemplateService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TemplateService{
		templates:   templates,
		games:       games,
		friends:     friends,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TemplateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TemplateService", operation, attrs...)
}

// CreateTemplate validates input and records a recurring session template.
func (s *TemplateService) CreateTemplate(ctx context.Context, params CreateTemplateParams) (template Template, err error) {
	if s == nil || s.templates == nil {
		return Template{}, fmt.Errorf("template store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return Template{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateTemplate", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("template_id", template.ID).InfoContext(ctx, "template created")
	}()

	input := normalizeTemplateInput(params.Input)
	pattern, weekdays, vErr := validateTemplateInput(input)
	if vErr.HasErrors() {
		return Template{}, vErr
	}

	if err = s.ensureGameExists(ctx, input.GameID); err != nil {
		return Template{}, err
	}
	if err = s.ensureInvitesAreFriends(ctx, principal.UserID, input.Invites); err != nil {
		return Template{}, err
	}

	createdAt := s.now()
	template, err = s.templates.CreateTemplate(ctx, Template{
		ID:              s.idGenerator(),
		OwnerID:         principal.UserID,
		GameID:          input.GameID,
		Name:            input.Name,
		Description:     input.Description,
		TimeOfDay:       input.TimeOfDay,
		DurationMins:    input.DurationMins,
		MaxParticipants: input.MaxParticipants,
		Pattern:         pattern,
		Weekdays:        weekdays,
		MonthDay:        input.MonthDay,
		Invites:         input.Invites,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	})
	if err != nil {
		return Template{}, mapTemplateRepoError(err)
	}
	return template, nil
}

// GetTemplate returns one template to its owner.
func (s *TemplateService) GetTemplate(ctx context.Context, principal Principal, id string) (Template, error) {
	if s == nil || s.templates == nil {
		return Template{}, fmt.Errorf("template store not configured")
	}
	if principal.UserID == "" {
		return Template{}, ErrUnauthorized
	}

	template, err := s.templates.GetTemplate(ctx, strings.TrimSpace(id))
	if err != nil {
		return Template{}, mapTemplateRepoError(err)
	}
	if template.OwnerID != principal.UserID {
		return Template{}, ErrNotFound
	}
	return template, nil
}

// ListGeneratedDates returns the dates already expanded from a template the
// caller owns, ascending.
func (s *TemplateService) ListGeneratedDates(ctx context.Context, principal Principal, id string) ([]time.Time, error) {
	template, err := s.GetTemplate(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	dates, err := s.templates.ListOccurrenceDates(ctx, template.ID)
	if err != nil {
		return nil, mapTemplateRepoError(err)
	}
	return dates, nil
}

// ListTemplates returns the caller's templates.
func (s *TemplateService) ListTemplates(ctx context.Context, principal Principal) ([]Template, error) {
	if s == nil || s.templates == nil {
		return nil, fmt.Errorf("template store not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	templates, err := s.templates.ListTemplates(ctx, principal.UserID)
	if err != nil {
		return nil, mapTemplateRepoError(err)
	}
	return templates, nil
}

// UpdateTemplate applies validation and authorization before replacing the
// stored template and its invite list.
func (s *TemplateService) UpdateTemplate(ctx context.Context, params UpdateTemplateParams) (template Template, err error) {
	if s == nil || s.templates == nil {
		return Template{}, fmt.Errorf("template store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return Template{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateTemplate", "principal_id", principal.UserID, "template_id", params.TemplateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template updated")
	}()

	existing, err := s.templates.GetTemplate(ctx, strings.TrimSpace(params.TemplateID))
	if err != nil {
		return Template{}, mapTemplateRepoError(err)
	}
	if existing.OwnerID != principal.UserID {
		return Template{}, ErrNotFound
	}

	input := normalizeTemplateInput(params.Input)
	pattern, weekdays, vErr := validateTemplateInput(input)
	if vErr.HasErrors() {
		return Template{}, vErr
	}

	if err = s.ensureGameExists(ctx, input.GameID); err != nil {
		return Template{}, err
	}
	if err = s.ensureInvitesAreFriends(ctx, principal.UserID, input.Invites); err != nil {
		return Template{}, err
	}

	existing.GameID = input.GameID
	existing.Name = input.Name
	existing.Description = input.Description
	existing.TimeOfDay = input.TimeOfDay
	existing.DurationMins = input.DurationMins
	existing.MaxParticipants = input.MaxParticipants
	existing.Pattern = pattern
	existing.Weekdays = weekdays
	existing.MonthDay = input.MonthDay
	existing.Invites = input.Invites
	existing.UpdatedAt = s.now()

	template, err = s.templates.UpdateTemplate(ctx, existing)
	if err != nil {
		return Template{}, mapTemplateRepoError(err)
	}
	return template, nil
}

// DeleteTemplate removes a template the caller owns. Schedules already
// generated from it are kept.
func (s *TemplateService) DeleteTemplate(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil || s.templates == nil {
		return fmt.Errorf("template store not configured")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteTemplate", "principal_id", principal.UserID, "template_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template deleted")
	}()

	existing, err := s.templates.GetTemplate(ctx, strings.TrimSpace(id))
	if err != nil {
		return mapTemplateRepoError(err)
	}
	if existing.OwnerID != principal.UserID {
		return ErrNotFound
	}

	if err = s.templates.DeleteTemplate(ctx, existing.ID); err != nil {
		return mapTemplateRepoError(err)
	}
	return nil
}

// Generate expands a template over an inclusive date range into concrete
// schedules. Dates already generated for the template are skipped, so
// overlapping runs never duplicate sessions; everything a single run writes
// commits or rolls back together. Returns the ids of the schedules created
// by this run, ascending by date.
func (s *TemplateService) Generate(ctx context.Context, params GenerateParams) (created []string, err error) {
	if s == nil || s.templates == nil {
		return nil, fmt.Errorf("template store not configured")
	}
	principal := params.Principal
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Generate",
		"principal_id", principal.UserID,
		"template_id", params.TemplateID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate schedules", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("created", len(created)).InfoContext(ctx, "schedules generated")
	}()

	if params.StartDate.IsZero() || params.EndDate.IsZero() {
		vErr := &ValidationError{}
		if params.StartDate.IsZero() {
			vErr.add("start_date", "start date is required")
		}
		if params.EndDate.IsZero() {
			vErr.add("end_date", "end date is required")
		}
		return nil, vErr
	}

	start := recurrence.Midnight(params.StartDate)
	end := recurrence.Midnight(params.EndDate)
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	template, err := s.templates.GetTemplate(ctx, strings.TrimSpace(params.TemplateID))
	if err != nil {
		return nil, mapTemplateRepoError(err)
	}
	if template.OwnerID != principal.UserID {
		return nil, ErrNotFound
	}

	rule := recurrence.Rule{
		Pattern:  template.Pattern,
		Weekdays: template.Weekdays,
		MonthDay: template.MonthDay,
	}
	dates := rule.DatesBetween(start, end)
	if len(dates) == 0 {
		return nil, nil
	}

	endTime, err := endTimeAfter(template.TimeOfDay, template.DurationMins)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("time_of_day", "time of day must be in HH:MM format")
		return nil, vErr
	}

	autoInvites := make([]ScheduleInvite, 0, len(template.Invites))
	for _, invite := range template.Invites {
		if !invite.AutoInvite {
			continue
		}
		autoInvites = append(autoInvites, ScheduleInvite{
			FriendID: invite.FriendID,
			Status:   persistence.InviteStatusPending,
		})
	}

	runAt := s.now()
	candidates := make([]OccurrenceCandidate, 0, len(dates))
	for _, date := range dates {
		candidates = append(candidates, OccurrenceCandidate{
			Date: date,
			Schedule: Schedule{
				ID:              s.idGenerator(),
				OwnerID:         template.OwnerID,
				GameID:          template.GameID,
				Title:           template.Name,
				Description:     template.Description,
				Date:            date,
				StartTime:       template.TimeOfDay,
				EndTime:         endTime,
				MaxParticipants: template.MaxParticipants,
				Invites:         autoInvites,
				CreatedAt:       runAt,
				UpdatedAt:       runAt,
			},
		})
	}

	created, err = s.templates.CreateOccurrences(ctx, template.ID, candidates)
	if err != nil {
		return nil, mapTemplateRepoError(err)
	}
	return created, nil
}

func (s *TemplateService) ensureGameExists(ctx context.Context, gameID string) error {
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

func (s *TemplateService) ensureInvitesAreFriends(ctx context.Context, userID string, invites []TemplateInvite) error {
	if s.friends == nil || len(invites) == 0 {
		return nil
	}
	for _, invite := range invites {
		ok, err := s.friends.AreFriends(ctx, userID, invite.FriendID)
		if err != nil {
			return err
		}
		if !ok {
			vErr := &ValidationError{}
			vErr.add("invites", "only friends can be invited")
			return vErr
		}
	}
	return nil
}

func normalizeTemplateInput(input TemplateInput) TemplateInput {
	input.GameID = strings.TrimSpace(input.GameID)
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.TimeOfDay = strings.TrimSpace(input.TimeOfDay)
	input.Pattern = strings.ToLower(strings.TrimSpace(input.Pattern))

	seen := make(map[string]struct{}, len(input.Invites))
	invites := make([]TemplateInvite, 0, len(input.Invites))
	for _, invite := range input.Invites {
		invite.FriendID = strings.TrimSpace(invite.FriendID)
		if invite.FriendID == "" {
			continue
		}
		if _, dup := seen[invite.FriendID]; dup {
			continue
		}
		seen[invite.FriendID] = struct{}{}
		invites = append(invites, invite)
	}
	if len(invites) == 0 {
		invites = nil
	}
	input.Invites = invites
	return input
}

func validateTemplateInput(input TemplateInput) (recurrence.Pattern, []time.Weekday, *ValidationError) {
	vErr := &ValidationError{}
	if input.GameID == "" {
		vErr.add("game_id", "game is required")
	}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if _, err := parseClock(input.TimeOfDay); err != nil {
		vErr.add("time_of_day", "time of day must be in HH:MM format")
	}
	if input.DurationMins <= 0 {
		vErr.add("duration_mins", "duration must be positive")
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		vErr.add("max_participants", "max participants must be positive")
	}

	pattern, err := recurrence.ParsePattern(input.Pattern)
	if err != nil {
		vErr.add("pattern", "pattern must be daily, weekly, biweekly or monthly")
		return pattern, nil, vErr
	}

	var weekdays []time.Weekday
	switch pattern {
	case recurrence.PatternWeekly, recurrence.PatternBiweekly:
		if len(input.Weekdays) == 0 {
			vErr.add("weekdays", "at least one weekday is required")
		}
		seen := make(map[time.Weekday]struct{}, len(input.Weekdays))
		for _, name := range input.Weekdays {
			day, ok := recurrence.ParseWeekday(name)
			if !ok {
				vErr.add("weekdays", fmt.Sprintf("unknown weekday %q", name))
				continue
			}
			if _, dup := seen[day]; dup {
				continue
			}
			seen[day] = struct{}{}
			weekdays = append(weekdays, day)
		}
	case recurrence.PatternMonthly:
		if input.MonthDay < 1 || input.MonthDay > 31 {
			vErr.add("month_day", "day of month must be between 1 and 31")
		}
	}

	return pattern, weekdays, vErr
}

func mapTemplateRepoError(err error) error {
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
		vErr.add("template", "template violates a storage constraint")
		return vErr
	}
	return err
}
