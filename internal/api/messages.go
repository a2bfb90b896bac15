package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gumanista/hate-2-action/internal/pipeline"
)

// Processor runs the message pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// MessageHandler exposes the message-processing endpoint.
type MessageHandler struct {
	pipeline Processor
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(p Processor) *MessageHandler {
	return &MessageHandler{pipeline: p}
}

// ProcessRequest is the request body for processing a message.
type ProcessRequest struct {
	Text      string `json:"text"`
	UserID    int64  `json:"user_id,omitempty"`
	Username  string `json:"user_username,omitempty"`
	ChatTitle string `json:"chat_title,omitempty"`
}

// Process handles POST /api/v1/messages/process.
func (h *MessageHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Text is required")
		return
	}

	result, err := h.pipeline.Process(r.Context(), pipeline.Request{
		UserID:    req.UserID,
		Username:  req.Username,
		ChatTitle: req.ChatTitle,
		Text:      req.Text,
	})
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
