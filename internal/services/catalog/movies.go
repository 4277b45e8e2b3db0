package catalog

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
)

// DeprecatedCategoryMessage is returned by the retired category listing.
const DeprecatedCategoryMessage = "This endpoint is deprecated. Please use GET /api/movies with category and region query parameters."

// ListMovies returns one page of movies with their links resolved.
func (s *Service) ListMovies(ctx context.Context, q models.MovieListQuery) (*models.MoviePage, error) {
	if q.Page < 1 {
		q.Page = models.DefaultPage
	}
	if q.Limit < 1 || q.Limit > models.MaxLimit {
		q.Limit = models.DefaultLimit
	}

	s.logger.Debug("Listing movies", "type", q.Type, "category", q.Category, "region", q.Region, "page", q.Page, "limit", q.Limit)

	movies, total, err := s.movies.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, movies); err != nil {
		return nil, err
	}

	return &models.MoviePage{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: (total + q.Limit - 1) / q.Limit,
		Movies:     movies,
	}, nil
}

// GetMovie returns one movie with its links resolved.
func (s *Service) GetMovie(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, []*models.Movie{movie}); err != nil {
		return nil, err
	}
	return movie, nil
}

// CreateMovie stores a new movie with every link URL encrypted.
func (s *Service) CreateMovie(ctx context.Context, req *models.MovieCreateRequest) (*models.Movie, error) {
	links, err := s.encryptInputs(req.VideoLinks)
	if err != nil {
		return nil, err
	}

	movieType := string(models.KindMovie)
	if req.Type != "" {
		movieType = strings.ToLower(req.Type)
	}

	movie := &models.Movie{
		Title:       req.Title,
		Overview:    req.Overview,
		PosterPath:  req.PosterPath,
		ReleaseDate: req.ReleaseDate,
		VoteAverage: req.VoteAverage,
		VideoLinks:  links,
		Category:    req.Category,
		Region:      req.Region,
		Type:        movieType,
		Provider:    req.Provider,
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}

	s.logger.Info("Movie uploaded", "id", movie.ID.Hex(), "title", movie.Title, "links", len(links))
	return movie, nil
}

// AddMovieSource appends one encrypted link to a movie.
func (s *Service) AddMovieSource(ctx context.Context, id bson.ObjectID, source models.LinkInput) (*models.Movie, error) {
	links, err := s.encryptInputs([]models.LinkInput{source})
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.PushLink(ctx, id, links[0])
	if err != nil {
		return nil, err
	}
	return resolveWritten(ctx, s, movie)
}

// IncrementViews records one playback of a movie.
func (s *Service) IncrementViews(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	movie, err := s.movies.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	return resolveWritten(ctx, s, movie)
}

// DeleteMovie removes a movie.
func (s *Service) DeleteMovie(ctx context.Context, id bson.ObjectID) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Movie deleted", "id", id.Hex())
	return nil
}

// MovieTitles returns the id and title of every movie.
func (s *Service) MovieTitles(ctx context.Context) ([]*models.MovieTitle, error) {
	return s.movies.Titles(ctx)
}

// SearchMovies finds movies by title fragment, links resolved.
func (s *Service) SearchMovies(ctx context.Context, title string) ([]*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewCatalogError(models.ErrMissingRequiredField, "title query parameter is required", http.StatusBadRequest)
	}

	movies, err := s.movies.SearchByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// MovieStreamURL returns the plaintext URL of the movie's stored link at index.
// It fails when that link's provider is known to be down.
func (s *Service) MovieStreamURL(ctx context.Context, id bson.ObjectID, index int) (string, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	if index < 0 || index >= len(movie.VideoLinks) {
		return "", models.NewNotFoundError(models.ErrLinkNotFound, "Video link not found")
	}

	url, err := s.resolver.ServableURL(ctx, movie.VideoLinks[index], movie.Provider)
	if err != nil {
		s.logger.Warn("Refusing to stream link", "id", id.Hex(), "index", index, "error", err)
		return "", deliveryError(err)
	}
	return url, nil
}

// MoviesByCategory is the retired category listing.
func (s *Service) MoviesByCategory(context.Context, string) error {
	return models.NewCatalogError(models.ErrEndpointGone, DeprecatedCategoryMessage, http.StatusGone)
}
