package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

const seriesCollection = "series"

// SeriesRepository defines the interface for series data access operations.
type SeriesRepository interface {
	Create(ctx context.Context, series *models.Series) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Series, error)
	List(ctx context.Context, category, region string) ([]*models.Series, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.Series, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type seriesRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewSeriesRepository creates a new instance of SeriesRepository.
func NewSeriesRepository(db *mongo.Database, logger *utils.Logger) SeriesRepository {
	return &seriesRepository{
		collection: db.Collection(seriesCollection),
		logger:     logger.Named("series_repository"),
	}
}

func seriesNotFound() error {
	return models.NewNotFoundError(models.ErrSeriesNotFound, "Series not found")
}

// Create inserts a new series.
func (r *seriesRepository) Create(ctx context.Context, series *models.Series) error {
	if series.ID.IsZero() {
		series.ID = bson.NewObjectID()
	}
	if series.Type == "" {
		series.Type = string(models.KindSeries)
	}
	if series.VideoSources == nil {
		series.VideoSources = []models.DeliveryLink{}
	}
	series.TimeCreate(time.Now())

	if _, err := r.collection.InsertOne(ctx, series); err != nil {
		r.logger.Error("Failed to create series", err, "title", series.Title)
		return models.NewInternalError(err, "Failed to upload series")
	}
	return nil
}

// FindByID finds a series by its ID.
func (r *seriesRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Series, error) {
	var series models.Series

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&series)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seriesNotFound()
		}
		r.logger.Error("Failed to find series by ID", err, "id", id.Hex())
		return nil, models.NewInternalError(err, "Failed to find series")
	}

	return &series, nil
}

// List returns the series in category and region, newest first. Empty or All disables a filter.
func (r *seriesRepository) List(ctx context.Context, category, region string) ([]*models.Series, error) {
	filter := seriesListFilter(category, region)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list series", err, "filter", filter)
		return nil, models.NewInternalError(err, "Failed to fetch series")
	}
	defer cursor.Close(ctx)

	series := []*models.Series{}
	if err := cursor.All(ctx, &series); err != nil {
		r.logger.Error("Failed to decode series", err)
		return nil, models.NewInternalError(err, "Failed to fetch series")
	}
	return series, nil
}

// seriesListFilter matches category exactly and region ignoring case.
func seriesListFilter(category, region string) bson.M {
	filter := bson.M{}
	if category != "" && category != models.FilterAll {
		filter["category"] = category
	}
	if region != "" && region != models.FilterAll {
		filter["region"] = exactInsensitive(region)
	}
	return filter
}

// Update sets fields on a series and returns the updated document.
func (r *seriesRepository) Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.Series, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var series models.Series
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.D{cmdSet(set)}, opts).Decode(&series)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seriesNotFound()
		}
		r.logger.Error("Failed to update series", err, "id", id.Hex())
		return nil, models.NewInternalError(err, "Failed to update series")
	}

	return &series, nil
}

// Delete deletes a series by its ID.
func (r *seriesRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete series", err, "id", id.Hex())
		return models.NewInternalError(err, "Failed to delete series")
	}

	if result.DeletedCount == 0 {
		return seriesNotFound()
	}
	return nil
}
