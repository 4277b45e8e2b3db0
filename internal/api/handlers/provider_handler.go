package handlers

import (
	"context"
	"net/http"

	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/utils"
)

// ProviderStatus is the provider health cache as seen by the API.
type ProviderStatus interface {
	GetStatus(ctx context.Context) map[delivery.ProviderID]bool
	ForceRefresh(ctx context.Context) map[delivery.ProviderID]bool
	Snapshot() *delivery.Snapshot
}

// ProviderHandler exposes provider health.
type ProviderHandler struct {
	cache  ProviderStatus
	policy delivery.Policy
	logger *utils.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(cache ProviderStatus, policy delivery.Policy, logger *utils.Logger) *ProviderHandler {
	return &ProviderHandler{
		cache:  cache,
		policy: policy,
		logger: logger.Named("provider_handler"),
	}
}

// providerStatusResponse is the body of both provider endpoints.
type providerStatusResponse struct {
	Policy   delivery.Policy    `json:"policy"`
	Snapshot *delivery.Snapshot `json:"snapshot"`
}

// Status handles GET /api/providers/status. An expired snapshot is refreshed first.
func (h *ProviderHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.cache.GetStatus(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, providerStatusResponse{
		Policy:   h.policy,
		Snapshot: h.cache.Snapshot(),
	})
}

// Refresh handles POST /api/providers/refresh, probing every provider now.
func (h *ProviderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	status := h.cache.ForceRefresh(r.Context())
	h.logger.Info("Provider health refreshed on request", "status", status)

	utils.RespondWithJSON(w, http.StatusOK, providerStatusResponse{
		Policy:   h.policy,
		Snapshot: h.cache.Snapshot(),
	})
}
