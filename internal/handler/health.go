package handler

import (
	"net/http"
)

// ReadinessChecker is implemented by store backends with a live connection.
type ReadinessChecker interface {
	Connected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	readiness ReadinessChecker
}

// NewHealthHandler creates a new health handler. readiness may be nil for
// backends without a connection to check.
func NewHealthHandler(readiness ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil && !h.readiness.Connected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "store not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
