package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/utils"
)

// MovieHandler handles HTTP requests for movies.
type MovieHandler struct {
	svc    *catalog.Service
	logger *utils.Logger
}

// NewMovieHandler creates a new movie handler.
func NewMovieHandler(svc *catalog.Service, logger *utils.Logger) *MovieHandler {
	return &MovieHandler{
		svc:    svc,
		logger: logger.Named("movie_handler"),
	}
}

// List handles GET /api/movies with type, category, region, page and limit filters.
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(r, "page", models.DefaultPage, 1, math.MaxInt32)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, ok := intQuery(r, "limit", models.DefaultLimit, 1, models.MaxLimit)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", models.MaxLimit))
		return
	}

	q := r.URL.Query()
	result, err := h.svc.ListMovies(r.Context(), models.MovieListQuery{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Region:   q.Get("region"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(w, h.logger, err, "Failed to list movies")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// Get handles GET /api/movies/{id}.
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	movie, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch movie")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, movie)
}

// Create handles POST /api/movies.
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request, data *models.MovieCreateRequest) {
	if !validateRequest(w, data) {
		return
	}

	movie, err := h.svc.CreateMovie(r.Context(), data)
	if err != nil {
		respondError(w, h.logger, err, "Failed to upload movie")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Movie uploaded successfully",
		"movie":   movie,
	})
}

// AddSource handles PUT /api/movies/{id}/add-source.
func (h *MovieHandler) AddSource(w http.ResponseWriter, r *http.Request, id bson.ObjectID, data *models.AddSourceRequest) {
	if !validateRequest(w, data) {
		return
	}

	movie, err := h.svc.AddMovieSource(r.Context(), id, *data.VideoSource)
	if err != nil {
		respondError(w, h.logger, err, "Failed to add video source")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Video source added",
		"movie":   movie,
	})
}

// IncrementViews handles PUT /api/movies/{id}/increment-views.
func (h *MovieHandler) IncrementViews(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	movie, err := h.svc.IncrementViews(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err, "Failed to increment views")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Views incremented",
		"movie":   movie,
	})
}

// Delete handles DELETE /api/movies/{id}.
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	if err := h.svc.DeleteMovie(r.Context(), id); err != nil {
		respondError(w, h.logger, err, "Failed to delete movie")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Movie deleted"})
}

// Titles handles GET /api/movies/titles and /api/movies/all.
func (h *MovieHandler) Titles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.svc.MovieTitles(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Failed to fetch movie titles")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, titles)
}

// Search handles GET /api/movies/search?title=.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	movies, err := h.svc.SearchMovies(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to search movies")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, movies)
}

// ByCategory handles the retired GET /api/movies/category/{category}.
func (h *MovieHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	err := h.svc.MoviesByCategory(r.Context(), chi.URLParam(r, "category"))
	respondError(w, h.logger, err, catalog.DeprecatedCategoryMessage)
}

// Stream handles GET /api/movies/{id}/stream/{index} by redirecting to the decrypted link.
func (h *MovieHandler) Stream(w http.ResponseWriter, r *http.Request, id bson.ObjectID) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid link index")
		return
	}

	target, err := h.svc.MovieStreamURL(r.Context(), id, index)
	if err != nil {
		respondError(w, h.logger, err, "Failed to resolve stream")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}
