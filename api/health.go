package api

import (
	"net/http"

	"github.com/navassist/docbot/internal/log"
)

// IndexStatus reports the index lifecycle for the readiness probe.
type IndexStatus interface {
	State() string
	Stats() (chunks, dimension int)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	index  IndexStatus
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
// index supplies the state reported by the readiness probe.
func NewHealthHandler(index IndexStatus, logger log.Logger) *HealthHandler {
	return &HealthHandler{index: index, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadyResponse is the readiness probe payload.
type ReadyResponse struct {
	Index     string `json:"index"`
	Chunks    int    `json:"chunks"`
	Dimension int    `json:"dimension"`
}

// readiness reports whether the service can answer grounded questions
// without building the index first. The service is still usable in free
// chat before the index exists, so an empty index reports 200 with its
// state rather than 503; a probe that needs the distinction reads the
// body.
func (h *HealthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	if h.index == nil {
		http.Error(w, "index not configured", http.StatusServiceUnavailable)
		return
	}
	chunks, dim := h.index.Stats()
	writeJSON(w, http.StatusOK, ReadyResponse{
		Index:     h.index.State(),
		Chunks:    chunks,
		Dimension: dim,
	})
}
