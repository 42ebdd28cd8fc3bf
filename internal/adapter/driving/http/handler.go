// Package httphandler serves the MCP streamable-HTTP endpoint and the health
// API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// healthTimeout bounds the upstream probe made by the health endpoint.
const healthTimeout = 5 * time.Second

// UpstreamChecker probes the n8n instance.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) (*model.HealthStatus, error)
}

// Handler is the HTTP driving adapter for the health API.
type Handler struct {
	upstream UpstreamChecker
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. upstream may be nil when no n8n API is
// configured.
func NewHandler(upstream UpstreamChecker, logger *slog.Logger) *Handler {
	return &Handler{
		upstream: upstream,
		logger:   logger,
		now:      time.Now,
	}
}

// NewServeMux creates an http.Handler with the MCP endpoint mounted at /mcp
// and the health API, wrapped with logging and recovery middleware.
func NewServeMux(mcpHandler http.Handler, h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/mcp", mcpHandler)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness together with the reachability of n8n. The server
// itself stays healthy when n8n is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
		N8N:    UpstreamNotConfigured,
	}

	if h.upstream != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp.N8N = UpstreamOK
		if _, err := h.upstream.HealthCheck(ctx); err != nil {
			h.logger.Warn("n8n health check failed", "error", err)
			resp.N8N = UpstreamUnreachable
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
