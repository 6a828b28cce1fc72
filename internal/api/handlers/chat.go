package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lingotutor/internal/conversation"
	"lingotutor/internal/models"
)

// ChatService generates a tutor reply for a conversation.
type ChatService interface {
	Send(ctx context.Context, conversationID int64, text string) (*models.Message, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID int64  `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ConversationID == 0 || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversation_id and message required"})
		return
	}

	reply, err := h.svc.Send(r.Context(), req.ConversationID, req.Message)
	if errors.Is(err, conversation.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
