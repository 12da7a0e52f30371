package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/gameplan-scheduler/internal/application"
)

type scheduleService interface {
	CreateSchedule(ctx context.Context, params application.CreateScheduleParams) (application.Schedule, error)
	GetSchedule(ctx context.Context, principal application.Principal, id string) (application.Schedule, error)
	UpdateSchedule(ctx context.Context, params application.UpdateScheduleParams) (application.Schedule, error)
	ListSchedules(ctx context.Context, params application.ListSchedulesParams) ([]application.Schedule, error)
	DeleteSchedule(ctx context.Context, principal application.Principal, id string) error
	RespondInvite(ctx context.Context, params application.RespondInviteParams) error
}

// ScheduleHandler serves planned gaming sessions and their invites.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), application.CreateScheduleParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("schedule_id", schedule.ID).InfoContext(r.Context(), "schedule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.GetSchedule(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "failed to load schedule", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	scheduleID := chi.URLParam(r, "id")

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "schedule_id", scheduleID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	schedule, err := h.service.UpdateSchedule(r.Context(), application.UpdateScheduleParams{
		Principal:  principal,
		ScheduleID: scheduleID,
		Input:      input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	from, err := parseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}
	until, err := parseOptionalDate(r.URL.Query().Get("until"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	schedules, err := h.service.ListSchedules(r.Context(), application.ListSchedulesParams{
		Principal: principal,
		From:      from,
		Until:     until,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list schedules", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]scheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		results = append(results, toScheduleDTO(schedule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]scheduleDTO{"schedules": results})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	scheduleID := chi.URLParam(r, "id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "schedule_id", scheduleID)

	if err := h.service.DeleteSchedule(r.Context(), principal, scheduleID); err != nil {
		logger.ErrorContext(r.Context(), "schedule deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	scheduleID := chi.URLParam(r, "id")

	var req respondInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Respond", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode invite response", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Respond", "principal_id", principal.UserID, "schedule_id", scheduleID)

	err := h.service.RespondInvite(r.Context(), application.RespondInviteParams{
		Principal:  principal,
		ScheduleID: scheduleID,
		Accept:     req.Accept,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "invite response failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("accept", req.Accept).InfoContext(r.Context(), "invite response recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type scheduleRequest struct {
	GameID          string   `json:"game_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	DurationMins    int      `json:"duration_mins"`
	MaxParticipants *int     `json:"max_participants"`
	FriendIDs       []string `json:"friend_ids"`
}

func (r scheduleRequest) toInput() (application.ScheduleInput, error) {
	date, err := parseDateField(r.Date, "date")
	if err != nil {
		return application.ScheduleInput{}, err
	}
	return application.ScheduleInput{
		GameID:          r.GameID,
		Title:           r.Title,
		Description:     r.Description,
		Date:            date,
		StartTime:       r.StartTime,
		DurationMins:    r.DurationMins,
		MaxParticipants: r.MaxParticipants,
		FriendIDs:       r.FriendIDs,
	}, nil
}

type respondInviteRequest struct {
	Accept bool `json:"accept"`
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}
