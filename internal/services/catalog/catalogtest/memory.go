// Package catalogtest provides in-memory repositories for catalog tests.
package catalogtest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
)

// Store holds movies, series and episodes in memory.
// Err, when set, is returned by every operation.
type Store struct {
	mu       sync.Mutex
	movies   []*models.Movie
	series   []*models.Series
	episodes []*models.Episode

	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Movies returns the movie repository view of the store.
func (s *Store) Movies() *MovieRepo { return &MovieRepo{s} }

// Series returns the series repository view of the store.
func (s *Store) Series() *SeriesRepo { return &SeriesRepo{s} }

// Episodes returns the episode repository view of the store.
func (s *Store) Episodes() *EpisodeRepo { return &EpisodeRepo{s} }

func movieNotFound() error {
	return models.NewNotFoundError(models.ErrMovieNotFound, "Movie not found")
}

func seriesNotFound() error {
	return models.NewNotFoundError(models.ErrSeriesNotFound, "Series not found")
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

// MovieRepo implements repositories.MovieRepository.
type MovieRepo struct{ s *Store }

func (r *MovieRepo) Create(_ context.Context, movie *models.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if movie.ID.IsZero() {
		movie.ID = bson.NewObjectID()
	}
	if movie.Type == "" {
		movie.Type = string(models.KindMovie)
	}
	movie.TimeCreate(time.Now())
	r.s.movies = append(r.s.movies, clone(movie))
	return nil
}

func (r *MovieRepo) find(id bson.ObjectID) (*models.Movie, error) {
	for _, m := range r.s.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, movieNotFound()
}

func (r *MovieRepo) FindByID(_ context.Context, id bson.ObjectID) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	m, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return clone(m), nil
}

// List applies the same filters as the MongoDB repository. Movies are returned newest first.
func (r *MovieRepo) List(_ context.Context, q models.MovieListQuery) ([]*models.Movie, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var matched []*models.Movie
	for i := len(r.s.movies) - 1; i >= 0; i-- {
		m := r.s.movies[i]
		if q.Type != "" && m.Type != strings.ToLower(q.Type) {
			continue
		}
		switch q.Category {
		case "", models.FilterAll, models.CategoryTrending, models.CategoryRecent:
		default:
			if !strings.EqualFold(m.Category, q.Category) {
				continue
			}
		}
		if q.Region != "" && q.Region != models.FilterAll && !strings.EqualFold(m.Region, q.Region) {
			continue
		}
		matched = append(matched, m)
	}

	if q.Category == models.CategoryTrending {
		slices.SortStableFunc(matched, func(a, b *models.Movie) int {
			return int(b.Views - a.Views)
		})
	}

	total := int64(len(matched))
	start := min((q.Page-1)*q.Limit, total)
	end := min(start+q.Limit, total)

	page := make([]*models.Movie, 0, end-start)
	for _, m := range matched[start:end] {
		page = append(page, clone(m))
	}
	return page, total, nil
}

func (r *MovieRepo) PushLink(_ context.Context, id bson.ObjectID, link models.DeliveryLink) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	m, err := r.find(id)
	if err != nil {
		return nil, err
	}
	m.VideoLinks = append(slices.Clone(m.VideoLinks), link)
	return clone(m), nil
}

func (r *MovieRepo) IncrementViews(_ context.Context, id bson.ObjectID) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	m, err := r.find(id)
	if err != nil {
		return nil, err
	}
	m.Views++
	return clone(m), nil
}

func (r *MovieRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i, m := range r.s.movies {
		if m.ID == id {
			r.s.movies = slices.Delete(r.s.movies, i, i+1)
			return nil
		}
	}
	return movieNotFound()
}

func (r *MovieRepo) Titles(_ context.Context) ([]*models.MovieTitle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	titles := make([]*models.MovieTitle, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		titles = append(titles, &models.MovieTitle{ID: m.ID, Title: m.Title})
	}
	return titles, nil
}

func (r *MovieRepo) SearchByTitle(_ context.Context, title string) ([]*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	movies := []*models.Movie{}
	for _, m := range r.s.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(title)) {
			movies = append(movies, clone(m))
		}
	}
	return movies, nil
}

// SeriesRepo implements repositories.SeriesRepository.
type SeriesRepo struct{ s *Store }

func (r *SeriesRepo) Create(_ context.Context, series *models.Series) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if series.ID.IsZero() {
		series.ID = bson.NewObjectID()
	}
	if series.Type == "" {
		series.Type = string(models.KindSeries)
	}
	series.TimeCreate(time.Now())
	r.s.series = append(r.s.series, clone(series))
	return nil
}

func (r *SeriesRepo) FindByID(_ context.Context, id bson.ObjectID) (*models.Series, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, s := range r.s.series {
		if s.ID == id {
			return clone(s), nil
		}
	}
	return nil, seriesNotFound()
}

func (r *SeriesRepo) List(_ context.Context, category, region string) ([]*models.Series, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []*models.Series{}
	for i := len(r.s.series) - 1; i >= 0; i-- {
		s := r.s.series[i]
		if category != "" && category != models.FilterAll && s.Category != category {
			continue
		}
		if region != "" && region != models.FilterAll && !strings.EqualFold(s.Region, region) {
			continue
		}
		out = append(out, clone(s))
	}
	return out, nil
}

// Update supports the fields the catalog service sets.
func (r *SeriesRepo) Update(_ context.Context, id bson.ObjectID, fields bson.M) (*models.Series, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, s := range r.s.series {
		if s.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "title":
				s.Title = v.(string)
			case "overview":
				s.Overview = v.(string)
			case "posterPath":
				s.PosterPath = v.(string)
			case "releaseDate":
				s.ReleaseDate = v.(string)
			case "category":
				s.Category = v.(string)
			case "region":
				s.Region = v.(string)
			case "provider":
				s.Provider = v.(string)
			case "voteAverage":
				s.VoteAverage = v.(float64)
			case "videoSources":
				s.VideoSources = v.([]models.DeliveryLink)
			}
		}
		s.TimeUpdate(time.Now())
		return clone(s), nil
	}
	return nil, seriesNotFound()
}

func (r *SeriesRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i, s := range r.s.series {
		if s.ID == id {
			r.s.series = slices.Delete(r.s.series, i, i+1)
			return nil
		}
	}
	return seriesNotFound()
}

// EpisodeRepo implements repositories.EpisodeRepository.
type EpisodeRepo struct{ s *Store }

func (r *EpisodeRepo) Create(_ context.Context, episode *models.Episode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if episode.ID.IsZero() {
		episode.ID = bson.NewObjectID()
	}
	r.s.episodes = append(r.s.episodes, clone(episode))
	return nil
}

func (r *EpisodeRepo) ListBySeries(_ context.Context, seriesID bson.ObjectID) ([]*models.Episode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []*models.Episode{}
	for _, e := range r.s.episodes {
		if e.SeriesID == seriesID {
			out = append(out, clone(e))
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Episode) int {
		return a.EpisodeNumber - b.EpisodeNumber
	})
	return out, nil
}
