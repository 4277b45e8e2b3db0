// Package repositories contains MongoDB repository implementations.
package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

const moviesCollection = "movies"

// MovieRepository defines the interface for movie data access operations.
type MovieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Movie, error)
	List(ctx context.Context, q models.MovieListQuery) ([]*models.Movie, int64, error)
	PushLink(ctx context.Context, id bson.ObjectID, link models.DeliveryLink) (*models.Movie, error)
	IncrementViews(ctx context.Context, id bson.ObjectID) (*models.Movie, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Titles(ctx context.Context) ([]*models.MovieTitle, error)
	SearchByTitle(ctx context.Context, title string) ([]*models.Movie, error)
}

// movieRepository is the MongoDB implementation of MovieRepository.
type movieRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewMovieRepository creates a new instance of MovieRepository.
func NewMovieRepository(db *mongo.Database, logger *utils.Logger) MovieRepository {
	return &movieRepository{
		collection: db.Collection(moviesCollection),
		logger:     logger.Named("movie_repository"),
	}
}

func movieNotFound() error {
	return models.NewNotFoundError(models.ErrMovieNotFound, "Movie not found")
}

// Create inserts a new movie.
func (r *movieRepository) Create(ctx context.Context, movie *models.Movie) error {
	if movie.ID.IsZero() {
		movie.ID = bson.NewObjectID()
	}
	if movie.Type == "" {
		movie.Type = string(models.KindMovie)
	}
	movie.TimeCreate(time.Now())

	if _, err := r.collection.InsertOne(ctx, movie); err != nil {
		r.logger.Error("Failed to create movie", err, "title", movie.Title)
		return models.NewInternalError(err, "Failed to upload movie")
	}
	return nil
}

// FindByID finds a movie by its ID.
func (r *movieRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	var movie models.Movie

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movie)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, movieNotFound()
		}
		r.logger.Error("Failed to find movie by ID", err, "id", id.Hex())
		return nil, models.NewInternalError(err, "Failed to find movie")
	}

	return &movie, nil
}

// List returns one page of movies matching q and the total number of matches.
func (r *movieRepository) List(ctx context.Context, q models.MovieListQuery) ([]*models.Movie, int64, error) {
	filter := movieListFilter(q)

	opts := options.Find().
		SetSort(movieListSort(q.Category)).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list movies", err, "filter", filter)
		return nil, 0, models.NewInternalError(err, "Failed to list movies")
	}
	defer cursor.Close(ctx)

	movies := []*models.Movie{}
	if err := cursor.All(ctx, &movies); err != nil {
		r.logger.Error("Failed to decode movies", err)
		return nil, 0, models.NewInternalError(err, "Failed to list movies")
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count movies", err, "filter", filter)
		return nil, 0, models.NewInternalError(err, "Failed to count movies")
	}

	return movies, total, nil
}

// movieListFilter builds the listing filter. Trending and Recent are orderings, not categories.
func movieListFilter(q models.MovieListQuery) bson.M {
	filter := bson.M{}

	if q.Type != "" {
		filter["type"] = strings.ToLower(q.Type)
	}

	switch q.Category {
	case "", models.FilterAll, models.CategoryTrending, models.CategoryRecent:
	default:
		filter["category"] = exactInsensitive(q.Category)
	}

	if q.Region != "" && q.Region != models.FilterAll {
		filter["region"] = exactInsensitive(q.Region)
	}

	return filter
}

func movieListSort(category string) bson.D {
	if category == models.CategoryTrending {
		return bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// PushLink appends an already encrypted link and returns the updated movie.
func (r *movieRepository) PushLink(ctx context.Context, id bson.ObjectID, link models.DeliveryLink) (*models.Movie, error) {
	update := bson.D{
		cmdPush(bson.M{"videoLinks": link}),
		cmdSet(bson.M{"updatedAt": time.Now()}),
	}
	return r.findOneAndUpdate(ctx, id, update, "Failed to add video source")
}

// IncrementViews adds one view and returns the updated movie.
func (r *movieRepository) IncrementViews(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	update := bson.D{cmdInc(bson.M{"views": 1})}
	return r.findOneAndUpdate(ctx, id, update, "Failed to increment views")
}

func (r *movieRepository) findOneAndUpdate(ctx context.Context, id bson.ObjectID, update bson.D, failure string) (*models.Movie, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var movie models.Movie
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&movie)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, movieNotFound()
		}
		r.logger.Error(failure, err, "id", id.Hex())
		return nil, models.NewInternalError(err, failure)
	}

	return &movie, nil
}

// Delete deletes a movie by its ID.
func (r *movieRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete movie", err, "id", id.Hex())
		return models.NewInternalError(err, "Failed to delete movie")
	}

	if result.DeletedCount == 0 {
		return movieNotFound()
	}
	return nil
}

// Titles returns the id and title of every movie.
func (r *movieRepository) Titles(ctx context.Context) ([]*models.MovieTitle, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "title": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to fetch movie titles", err)
		return nil, models.NewInternalError(err, "Failed to fetch movie titles")
	}
	defer cursor.Close(ctx)

	titles := []*models.MovieTitle{}
	if err := cursor.All(ctx, &titles); err != nil {
		r.logger.Error("Failed to decode movie titles", err)
		return nil, models.NewInternalError(err, "Failed to fetch movie titles")
	}
	return titles, nil
}

// SearchByTitle finds movies whose title contains title, ignoring case.
func (r *movieRepository) SearchByTitle(ctx context.Context, title string) ([]*models.Movie, error) {
	filter := bson.M{"title": containsInsensitive(title)}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to search movies", err, "title", title)
		return nil, models.NewInternalError(err, "Failed to search movies")
	}
	defer cursor.Close(ctx)

	movies := []*models.Movie{}
	if err := cursor.All(ctx, &movies); err != nil {
		r.logger.Error("Failed to decode movies", err)
		return nil, models.NewInternalError(err, "Failed to search movies")
	}
	return movies, nil
}
