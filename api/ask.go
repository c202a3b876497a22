package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/navassist/docbot/internal/answer"
	"github.com/navassist/docbot/internal/log"
	"github.com/navassist/docbot/internal/scope"
)

// Answerer is the docs-only behavior the handler depends on.
type Answerer interface {
	Answer(ctx context.Context, question string) (*answer.Result, error)
}

// AskHandler handles the docs-only grounded answering endpoint.
//
// Endpoint:
//   - POST /api/ask - answer a question from the indexed documentation
//
// Clients may send a sources list; it is validated against the fixed
// whitelist and never used to widen retrieval. Any out-of-scope entry
// rejects the whole request before the model or the index is touched.
type AskHandler struct {
	answerer Answerer
	scope    *scope.Scope
	logger   log.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(answerer Answerer, sc *scope.Scope, logger log.Logger) *AskHandler {
	return &AskHandler{answerer: answerer, scope: sc, logger: logger}
}

// RegisterRoutes registers ask routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.handleAsk)
}

// AskRequest is the docs-only request payload.
type AskRequest struct {
	Question string   `json:"question"`
	Sources  []string `json:"sources,omitempty"`
}

// AskResponse is the docs-only response payload.
type AskResponse struct {
	Reply     string            `json:"reply"`
	Citations []answer.Citation `json:"citations"`
}

func (h *AskHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.scope.Validate(req.Sources); err != nil {
		h.logger.Warn("rejected out-of-scope sources", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusForbidden, "SOURCE_NOT_ALLOWED", err.Error())
		return
	}

	result, err := h.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, answer.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "MISSING_QUESTION", "question is required")
			return
		}
		h.logger.Error("ask failed", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "the assistant is unavailable, please try again")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Reply: result.Reply, Citations: result.Citations})
}
