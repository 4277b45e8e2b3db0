package handlers

import (
	"net/http"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/utils"
)

// EpisodeHandler handles HTTP requests for episodes.
type EpisodeHandler struct {
	svc    *catalog.Service
	logger *utils.Logger
}

// NewEpisodeHandler creates a new episode handler.
func NewEpisodeHandler(svc *catalog.Service, logger *utils.Logger) *EpisodeHandler {
	return &EpisodeHandler{
		svc:    svc,
		logger: logger.Named("episode_handler"),
	}
}

// List handles GET /api/episodes?seriesId=.
func (h *EpisodeHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("seriesId")
	if raw == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "seriesId query param required")
		return
	}

	seriesID, err := catalog.ParseID(raw)
	if err != nil {
		utils.RespondWithAppError(w, err, "Invalid ID format")
		return
	}

	episodes, err := h.svc.ListEpisodes(r.Context(), seriesID)
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch episodes")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, episodes)
}

// Create handles POST /api/episodes.
func (h *EpisodeHandler) Create(w http.ResponseWriter, r *http.Request, data *models.EpisodeCreateRequest) {
	if !validateRequest(w, data) {
		return
	}

	episode, err := h.svc.CreateEpisode(r.Context(), data)
	if err != nil {
		respondError(w, h.logger, err, "Failed to add episode")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Episode added",
		"episode": episode,
	})
}
