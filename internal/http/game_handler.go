package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/gameplan-scheduler/internal/application"
)

type gameService interface {
	CreateGame(ctx context.Context, principal application.Principal, input application.GameInput) (application.Game, error)
	GetGame(ctx context.Context, id string) (application.Game, error)
	UpdateGame(ctx context.Context, principal application.Principal, id string, input application.GameInput) (application.Game, error)
	ListGames(ctx context.Context) ([]application.Game, error)
	DeleteGame(ctx context.Context, principal application.Principal, id string) error
}

// GameHandler serves the shared game catalog.
type GameHandler struct {
	service   gameService
	responder responder
	logger    *slog.Logger
}

func NewGameHandler(service gameService, logger *slog.Logger) *GameHandler {
	base := defaultLogger(logger)
	return &GameHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *GameHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GameHandler", operation, attrs...)
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode game request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	game, err := h.service.CreateGame(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "game creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("game_id", game.ID).InfoContext(r.Context(), "game created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, gameResponse{Game: toGameDTO(game)})
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	game, err := h.service.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log(r.Context(), "Get").ErrorContext(r.Context(), "failed to load game", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, gameResponse{Game: toGameDTO(game)})
}

func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	gameID := chi.URLParam(r, "id")

	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode game request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "game_id", gameID)

	game, err := h.service.UpdateGame(r.Context(), principal, gameID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "game update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "game updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, gameResponse{Game: toGameDTO(game)})
}

func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	games, err := h.service.ListGames(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list games", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]gameDTO, 0, len(games))
	for _, game := range games {
		results = append(results, toGameDTO(game))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]gameDTO{"games": results})
}

func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	gameID := chi.URLParam(r, "id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "game_id", gameID)

	if err := h.service.DeleteGame(r.Context(), principal, gameID); err != nil {
		logger.ErrorContext(r.Context(), "game deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "game deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type gameRequest struct {
	Title              string  `json:"title"`
	Genre              *string `json:"genre"`
	AverageSessionMins int     `json:"average_session_mins"`
}

func (r gameRequest) toInput() application.GameInput {
	return application.GameInput{
		Title:              r.Title,
		Genre:              r.Genre,
		AverageSessionMins: r.AverageSessionMins,
	}
}

type gameResponse struct {
	Game gameDTO `json:"game"`
}
