package handlers

import (
	"net/http"

	"github.com/jasim8799/api/internal/services/system"
	"github.com/jasim8799/api/internal/utils"
)

// HealthHandler handles HTTP requests related to system health.
type HealthHandler struct {
	healthSvc *system.HealthService
	logger    *utils.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(healthSvc *system.HealthService, logger *utils.Logger) *HealthHandler {
	return &HealthHandler{
		healthSvc: healthSvc,
		logger:    logger.Named("health_handler"),
	}
}

// Live answers the root path the way the service always has.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("API is live"))
}

// Check handles requests to check the health of the system.
// Degraded still answers 200; only a down dependency turns it into 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	health := h.healthSvc.GetHealth(r.Context())

	statusCode := http.StatusOK
	if health.Status == system.StatusDown {
		statusCode = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, statusCode, health)
}
