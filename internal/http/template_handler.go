package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/gameplan-scheduler/internal/application"
	"github.com/example/gameplan-scheduler/internal/metrics"
)

type templateService interface {
	CreateTemplate(ctx context.Context, params application.CreateTemplateParams) (application.Template, error)
	GetTemplate(ctx context.Context, principal application.Principal, id string) (application.Template, error)
	UpdateTemplate(ctx context.Context, params application.UpdateTemplateParams) (application.Template, error)
	ListTemplates(ctx context.Context, principal application.Principal) ([]application.Template, error)
	DeleteTemplate(ctx context.Context, principal application.Principal, id string) error
	Generate(ctx context.Context, params application.GenerateParams) ([]string, error)
	ListGeneratedDates(ctx context.Context, principal application.Principal, id string) ([]time.Time, error)
}

// TemplateHandler serves recurring schedule templates and their expansion.
type TemplateHandler struct {
	service   templateService
	responder responder
	logger    *slog.Logger
}

func NewTemplateHandler(service templateService, logger *slog.Logger) *TemplateHandler {
	base := defaultLogger(logger)
	return &TemplateHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TemplateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TemplateHandler", operation, attrs...)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode template request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	template, err := h.service.CreateTemplate(r.Context(), application.CreateTemplateParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "template creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("template_id", template.ID).InfoContext(r.Context(), "template created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, templateResponse{Template: toTemplateDTO(template)})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	template, err := h.service.GetTemplate(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "failed to load template", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{Template: toTemplateDTO(template)})
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	templateID := chi.URLParam(r, "id")

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode template request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "template_id", templateID)

	template, err := h.service.UpdateTemplate(r.Context(), application.UpdateTemplateParams{
		Principal:  principal,
		TemplateID: templateID,
		Input:      req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "template update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "template updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{Template: toTemplateDTO(template)})
}

// Occurrences lists the dates a template has already been expanded into.
func (h *TemplateHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	templateID := chi.URLParam(r, "id")

	dates, err := h.service.ListGeneratedDates(r.Context(), principal, templateID)
	if err != nil {
		h.log(r.Context(), "Occurrences", "principal_id", principal.UserID, "template_id", templateID).
			ErrorContext(r.Context(), "failed to list generated dates", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]string, 0, len(dates))
	for _, date := range dates {
		results = append(results, date.Format(dateLayout))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]string{"dates": results})
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	templates, err := h.service.ListTemplates(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "failed to list templates", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]templateDTO, 0, len(templates))
	for _, template := range templates {
		results = append(results, toTemplateDTO(template))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]templateDTO{"templates": results})
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	templateID := chi.URLParam(r, "id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "template_id", templateID)

	if err := h.service.DeleteTemplate(r.Context(), principal, templateID); err != nil {
		logger.ErrorContext(r.Context(), "template deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "template deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Generate expands a template into concrete schedules over a date range.
// Ranges longer than six months are rejected here so a single request
// cannot fan out into an unbounded number of inserts.
func (h *TemplateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	templateID := chi.URLParam(r, "id")

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Generate", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode generation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Generate", "principal_id", principal.UserID, "template_id", templateID)

	startDate, err := parseDateField(req.StartDate, "start_date")
	if err != nil {
		logger.ErrorContext(r.Context(), "generation request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}
	endDate, err := parseDateField(req.EndDate, "end_date")
	if err != nil {
		logger.ErrorContext(r.Context(), "generation request rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	if endDate.After(startDate.AddDate(0, 6, 0)) {
		logger.ErrorContext(r.Context(), "generation request rejected", "error", errRangeTooLong,
			"start_date", req.StartDate, "end_date", req.EndDate)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, errRangeTooLong)
		return
	}

	created, err := h.service.Generate(r.Context(), application.GenerateParams{
		Principal:  principal,
		TemplateID: templateID,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.ObserveSchedulesGenerated(len(created))
	logger.With("created", len(created)).InfoContext(r.Context(), "schedules generated")
	if created == nil {
		created = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, generateResponse{Created: created})
}

type templateRequest struct {
	GameID          string              `json:"game_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	TimeOfDay       string              `json:"time_of_day"`
	DurationMins    int                 `json:"duration_mins"`
	MaxParticipants *int                `json:"max_participants"`
	Pattern         string              `json:"pattern"`
	Weekdays        []string            `json:"weekdays"`
	MonthDay        int                 `json:"month_day"`
	Invites         []templateInviteDTO `json:"invites"`
}

func (r templateRequest) toInput() application.TemplateInput {
	input := application.TemplateInput{
		GameID:          r.GameID,
		Name:            r.Name,
		Description:     r.Description,
		TimeOfDay:       r.TimeOfDay,
		DurationMins:    r.DurationMins,
		MaxParticipants: r.MaxParticipants,
		Pattern:         r.Pattern,
		Weekdays:        r.Weekdays,
		MonthDay:        r.MonthDay,
	}
	for _, invite := range r.Invites {
		input.Invites = append(input.Invites, application.TemplateInvite{
			FriendID:   invite.FriendID,
			AutoInvite: invite.AutoInvite,
		})
	}
	return input
}

type generateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type generateResponse struct {
	Created []string `json:"created"`
}

type templateResponse struct {
	Template templateDTO `json:"template"`
}
