package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/gameplan-scheduler/internal/application"
)

type friendService interface {
	SearchUsers(ctx context.Context, principal application.Principal, query string) ([]application.User, error)
	AddFriend(ctx context.Context, principal application.Principal, friendID string) error
	ListFriends(ctx context.Context, principal application.Principal) ([]application.Friend, error)
	RemoveFriend(ctx context.Context, principal application.Principal, friendID string) error
}

// FriendHandler serves the friendship graph.
type FriendHandler struct {
	service   friendService
	responder responder
	logger    *slog.Logger
}

func NewFriendHandler(service friendService, logger *slog.Logger) *FriendHandler {
	base := defaultLogger(logger)
	return &FriendHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FriendHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FriendHandler", operation, attrs...)
}

func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query().Get("q")

	users, err := h.service.SearchUsers(r.Context(), principal, query)
	if err != nil {
		h.log(r.Context(), "Search", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "user search failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]userDTO, 0, len(users))
	for _, user := range users {
		results = append(results, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]userDTO{"users": results})
}

func (h *FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Add", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode friend request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Add", "principal_id", principal.UserID, "friend_id", req.FriendID)

	if err := h.service.AddFriend(r.Context(), principal, req.FriendID); err != nil {
		logger.ErrorContext(r.Context(), "failed to add friend", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "friend added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, nil)
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	friends, err := h.service.ListFriends(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "failed to list friends", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	results := make([]friendDTO, 0, len(friends))
	for _, friend := range friends {
		results = append(results, friendDTO{UserID: friend.UserID, Username: friend.Username})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]friendDTO{"friends": results})
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	friendID := chi.URLParam(r, "id")

	logger := h.log(r.Context(), "Remove", "principal_id", principal.UserID, "friend_id", friendID)

	if err := h.service.RemoveFriend(r.Context(), principal, friendID); err != nil {
		logger.ErrorContext(r.Context(), "failed to remove friend", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "friend removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type addFriendRequest struct {
	FriendID string `json:"friend_id"`
}
