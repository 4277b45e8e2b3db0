package handlers

import (
	"net/http"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/app"
	"github.com/jasim8799/api/internal/utils"
)

// AppHandler handles HTTP requests sent by the client app.
type AppHandler struct {
	svc    *app.Service
	logger *utils.Logger
}

// NewAppHandler creates a new app handler.
func NewAppHandler(svc *app.Service, logger *utils.Logger) *AppHandler {
	return &AppHandler{
		svc:    svc,
		logger: logger.Named("app_handler"),
	}
}

// Version handles GET /api/app/version?platform=.
func (h *AppHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.svc.LatestVersion(r.Context(), r.URL.Query().Get("platform"))
	if err != nil {
		respondError(w, h.logger, err, "Server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, version)
}

// PublishVersion handles POST /api/app/version.
func (h *AppHandler) PublishVersion(w http.ResponseWriter, r *http.Request, data *models.AppVersionCreateRequest) {
	if !validateRequest(w, data) {
		return
	}

	version, err := h.svc.PublishVersion(r.Context(), data)
	if err != nil {
		respondError(w, h.logger, err, "Failed to publish version")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, version)
}

// ReportCrash handles POST /api/crashes.
func (h *AppHandler) ReportCrash(w http.ResponseWriter, r *http.Request, data *models.CrashReportRequest) {
	if !validateRequest(w, data) {
		return
	}

	if err := h.svc.ReportCrash(r.Context(), data); err != nil {
		respondError(w, h.logger, err, "Failed to save crash report.")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ListCrashes handles GET /api/crashes.
func (h *AppHandler) ListCrashes(w http.ResponseWriter, r *http.Request) {
	crashes, err := h.svc.ListCrashes(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch crash reports.")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, crashes)
}

// Track handles POST /api/analytics/track.
func (h *AppHandler) Track(w http.ResponseWriter, r *http.Request, data *models.EventRequest) {
	if !validateRequest(w, data) {
		return
	}

	if err := h.svc.TrackEvent(r.Context(), data); err != nil {
		respondError(w, h.logger, err, "Failed to track event.")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Analytics event tracked successfully."})
}

// Summary handles GET /api/analytics/summary.
func (h *AppHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.AnalyticsSummary(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch analytics summary.")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// LogProxyEvent handles POST /api/proxy-analytics.
func (h *AppHandler) LogProxyEvent(w http.ResponseWriter, r *http.Request, data *models.EventRequest) {
	if !validateRequest(w, data) {
		return
	}

	if err := h.svc.LogProxyEvent(r.Context(), data); err != nil {
		respondError(w, h.logger, err, "Failed to log analytics event")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Analytics event logged"})
}

// Stats handles GET /api/appstats.
func (h *AppHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch app stats.")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// Record returns the handler for POST /api/appstats/{visit,install,play}.
func (h *AppHandler) Record(counter models.StatCounter, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Record(r.Context(), counter); err != nil {
			respondError(w, h.logger, err, "Failed to update app stats.")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}
