package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/gameplan-scheduler/internal/application"
)

type eventService interface {
	CreateEvent(ctx context.Context, principal application.Principal, input application.EventInput) (application.Event, error)
	GetEvent(ctx context.Context, principal application.Principal, id string) (application.Event, error)
	UpdateEvent(ctx context.Context, principal application.Principal, id string, input application.EventInput) (application.Event, error)
	ListEvents(ctx context.Context, principal application.Principal, from, until *time.Time) ([]application.Event, error)
	ShareEvent(ctx context.Context, principal application.Principal, eventID, friendID string) error
	DeleteEvent(ctx context.Context, principal application.Principal, id string) error
}

// EventHandler serves personal calendar events.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "event request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), principal, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	event, err := h.service.GetEvent(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "failed to load event", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "event request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), principal, eventID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.service.ListEvents(r.Context(), principal, from, until)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list events", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]eventDTO, 0, len(events))
	for _, event := range events {
		results = append(results, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]eventDTO{"events": results})
}

func (h *EventHandler) Share(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	var req shareEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Share", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode share request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Share", "principal_id", principal.UserID, "event_id", eventID, "friend_id", req.FriendID)

	if err := h.service.ShareEvent(r.Context(), principal, eventID, req.FriendID); err != nil {
		logger.ErrorContext(r.Context(), "event sharing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event shared")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type eventRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	ReminderTime *string `json:"reminder_time"`
}

func (r eventRequest) toInput() (application.EventInput, error) {
	date, err := parseDateField(r.Date, "date")
	if err != nil {
		return application.EventInput{}, err
	}
	return application.EventInput{
		Title:        r.Title,
		Description:  r.Description,
		Date:         date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		ReminderTime: r.ReminderTime,
	}, nil
}

type shareEventRequest struct {
	FriendID string `json:"friend_id"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}
