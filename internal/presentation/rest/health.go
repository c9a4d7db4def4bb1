package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// readinessTimeout bounds the dependency checks of one /readyz probe.
const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes and, when configured,
// the Prometheus scrape endpoint.
type HealthHandler struct {
	service string
	db      pgutil.Pinger
	metrics http.Handler
	logger  *slog.Logger
}

// NewHealthHandler creates a health check HTTP handler. metrics may be nil.
func NewHealthHandler(service string, db pgutil.Pinger, metrics http.Handler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		db:      db,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes attaches health-check routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := pgutil.HealthCheck(ctx, h.db); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"service":  h.service,
			"database": "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"service":  h.service,
		"database": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
