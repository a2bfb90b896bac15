package api

import (
	"net/http"
	"time"

	"github.com/gumanista/hate-2-action/internal/store"
)

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	db        *store.DB
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *store.DB) *HealthHandler {
	return &HealthHandler{db: db, startTime: time.Now()}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	overall := "ok"
	dbStatus := "connected"
	status := http.StatusOK
	if err := h.db.HealthCheck(r.Context()); err != nil {
		overall = "degraded"
		dbStatus = "disconnected"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.startTime).String(),
	})
}
