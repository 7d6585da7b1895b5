package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/conversation"
	"github.com/swellyo/matching-platform/internal/middleware"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/internal/store"
	"github.com/swellyo/matching-platform/pkg/logger"
)

// MatchHandler receives match results from the matching engine.
type MatchHandler struct {
	controller *conversation.Controller
	logger     *logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(ctrl *conversation.Controller, log *logger.Logger) *MatchHandler {
	return &MatchHandler{
		controller: ctrl,
		logger:     log,
	}
}

// Attach handles POST /api/v1/chats/{id}/matches
func (h *MatchHandler) Attach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.AttachMatchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Matches) == 0 {
		writeError(w, http.StatusBadRequest, "matches cannot be empty")
		return
	}

	err := h.controller.AttachMatches(ctx, conversationID, req.Matches, req.DestinationLabel)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "chat not found")
	case errors.Is(err, conversation.ErrDecisionPending):
		writeError(w, http.StatusConflict, "a filter decision is still pending")
	case errors.Is(err, conversation.ErrNoFinishedTurn):
		writeError(w, http.StatusConflict, "no finished turn to attach matches to")
	default:
		h.logger.Error("failed to attach matches",
			zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to attach matches")
	}
}
