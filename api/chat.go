package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/navassist/docbot/internal/chat"
	"github.com/navassist/docbot/internal/log"
)

// Chatter is the free-chat behavior the handler depends on.
type Chatter interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// ChatHandler handles the free-chat endpoint.
//
// Endpoint:
//   - POST /api/chat - free chat with per-user conversation history
type ChatHandler struct {
	chat   Chatter
	logger log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat Chatter, logger log.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

// ChatRequest is the free-chat request payload.
type ChatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// ChatResponse is the free-chat response payload.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	reply, err := h.chat.Reply(r.Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "MISSING_MESSAGE", "message is required")
			return
		}
		h.logger.Error("chat failed", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "the assistant is unavailable, please try again")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
