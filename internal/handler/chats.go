// Package handler provides HTTP handlers for the API.
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

// ChatHandler handles conversation endpoints.
type ChatHandler struct {
	controller *conversation.Controller
	logger     *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(ctrl *conversation.Controller, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		controller: ctrl,
		logger:     log,
	}
}

// Start handles POST /api/v1/chats
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	groupID := middleware.GetGroupID(ctx)

	var req model.StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GroupID != "" {
		if err := middleware.ValidateGroupID(req.GroupID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		groupID = req.GroupID
	}

	resp, err := h.controller.Start(ctx, userID, groupID, req.Message)
	if err != nil {
		h.logger.Error("failed to start chat", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start chat")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Continue handles POST /api/v1/chats/{id}/messages
func (h *ChatHandler) Continue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.ContinueChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.controller.Continue(ctx, conversationID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		h.logger.Error("failed to continue chat",
			zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to continue chat")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/v1/chats/{id}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.controller.History(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		h.logger.Error("failed to load chat history",
			zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	writeJSON(w, http.StatusOK, &model.ChatHistoryResponse{
		ConversationID: conv.ID,
		Phase:          conv.Phase,
		Turns:          conv.Turns,
		Filters:        conv.Filters,
	})
}
