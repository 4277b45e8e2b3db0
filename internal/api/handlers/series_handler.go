package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/utils"
)

// SeriesHandler handles HTTP requests for series.
type SeriesHandler struct {
	svc    *catalog.Service
	logger *utils.Logger
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(svc *catalog.Service, logger *utils.Logger) *SeriesHandler {
	return &SeriesHandler{
		svc:    svc,
		logger: logger.Named("series_handler"),
	}
}

func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, q.Get("category"), q.Get("region"))
}

// ByCategory handles GET /api/series/category/{category}.
func (h *SeriesHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "category"), r.URL.Query().Get("region"))
}

func (h *SeriesHandler) list(w http.ResponseWriter, r *http.Request, category, region string) {
	series, err := h.svc.ListSeries(r.Context(), category, region)
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch series")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, series)
}

func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	series, err := h.svc.GetSeries(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch series")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, series)
}

func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request, data *models.SeriesCreateRequest) {
	if !validateRequest(w, data) {
		return
	}

	series, err := h.svc.CreateSeries(r.Context(), data)
	if err != nil {
		respondError(w, h.logger, err, "Failed to upload series")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Series uploaded successfully",
		"series":  series,
	})
}

func (h *SeriesHandler) Update(w http.ResponseWriter, r *http.Request, id bson.ObjectID, data *models.SeriesUpdateRequest) {
	if !validateRequest(w, data) {
		return
	}

	series, err := h.svc.UpdateSeries(r.Context(), id, data)
	if err != nil {
		respondError(w, h.logger, err, "Failed to update series")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, series)
}

func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	if err := h.svc.DeleteSeries(r.Context(), id); err != nil {
		respondError(w, h.logger, err, "Failed to delete series")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Series deleted"})
}
