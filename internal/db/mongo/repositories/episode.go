package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

const episodesCollection = "episodes"

// EpisodeRepository defines the interface for episode data access operations.
type EpisodeRepository interface {
	Create(ctx context.Context, episode *models.Episode) error
	ListBySeries(ctx context.Context, seriesID bson.ObjectID) ([]*models.Episode, error)
}

type episodeRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewEpisodeRepository creates a new instance of EpisodeRepository.
func NewEpisodeRepository(db *mongo.Database, logger *utils.Logger) EpisodeRepository {
	return &episodeRepository{
		collection: db.Collection(episodesCollection),
		logger:     logger.Named("episode_repository"),
	}
}

// Create inserts a new episode.
func (r *episodeRepository) Create(ctx context.Context, episode *models.Episode) error {
	if episode.ID.IsZero() {
		episode.ID = bson.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, episode); err != nil {
		r.logger.Error("Failed to create episode", err, "seriesId", episode.SeriesID.Hex(), "episode", episode.EpisodeNumber)
		return models.NewInternalError(err, "Failed to add episode")
	}
	return nil
}

// ListBySeries returns the episodes of a series in episode order.
func (r *episodeRepository) ListBySeries(ctx context.Context, seriesID bson.ObjectID) ([]*models.Episode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "episodeNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"seriesId": seriesID}, opts)
	if err != nil {
		r.logger.Error("Failed to list episodes", err, "seriesId", seriesID.Hex())
		return nil, models.NewInternalError(err, "Failed to fetch episodes")
	}
	defer cursor.Close(ctx)

	episodes := []*models.Episode{}
	if err := cursor.All(ctx, &episodes); err != nil {
		r.logger.Error("Failed to decode episodes", err)
		return nil, models.NewInternalError(err, "Failed to fetch episodes")
	}
	return episodes, nil
}
