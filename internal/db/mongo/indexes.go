// Package mongo provides MongoDB database connectivity and repositories.
package mongo

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jasim8799/api/internal/utils"
)

// Collection name constants for use throughout the application.
// The names match the collections the catalog has always been stored in.
const (
	MoviesCollection   = "movies"
	SeriesCollection   = "series"
	EpisodesCollection = "episodes"

	AppVersionsCollection  = "appversions"
	CrashReportsCollection = "crashreports"
	AnalyticsCollection    = "analytics"
	ProxyEventsCollection  = "proxyanalytics"
)

// IndexCreator defines a function type for index creation
type IndexCreator func(context.Context, *Client) error

var indexCreators = map[string]IndexCreator{
	MoviesCollection:   ensureMovieIndexes,
	SeriesCollection:   ensureSeriesIndexes,
	EpisodesCollection: ensureEpisodeIndexes,

	AppVersionsCollection:  ensureAppVersionIndexes,
	CrashReportsCollection: ensureCrashReportIndexes,
	AnalyticsCollection:    ensureEventIndexes(AnalyticsCollection),
	ProxyEventsCollection:  ensureEventIndexes(ProxyEventsCollection),
}

// EnsureIndexes creates all necessary indexes, one collection per goroutine.
func EnsureIndexes(ctx context.Context, client *Client) error {
	logger := client.Logger().With("operation", "EnsureIndexes")
	logger.Info("Starting index creation for all collections")

	p := pool.New().WithErrors().WithContext(ctx)
	for collection, creator := range indexCreators {
		p.Go(func(ctx context.Context) error {
			if err := creator(ctx, client); err != nil {
				return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		logger.Error("Index creation failed", err)
		return err
	}

	logger.Info("Successfully created all indexes")
	return nil
}

// createIndexes is a helper function to create multiple indexes for a collection
func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel, logger *utils.Logger, collectionName string) error {
	if len(indexes) == 0 {
		return nil
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Error("Failed to create indexes", err, "collection", collectionName)
		return err
	}

	logger.Info("Successfully created indexes", "collection", collectionName, "count", len(indexes))
	return nil
}

// ensureMovieIndexes creates indexes for the movies collection
func ensureMovieIndexes(ctx context.Context, client *Client) error {
	indexes := []mongo.IndexModel{
		// Listing filters, newest first
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "category", Value: 1}, {Key: "region", Value: 1}, {Key: "createdAt", Value: -1}}},
		// Default sort
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		// Trending sort
		{Keys: bson.D{{Key: "views", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}
	return createIndexes(ctx, client.Collection(MoviesCollection), indexes, client.Logger(), MoviesCollection)
}

// ensureSeriesIndexes creates indexes for the series collection
func ensureSeriesIndexes(ctx context.Context, client *Client) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "region", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	return createIndexes(ctx, client.Collection(SeriesCollection), indexes, client.Logger(), SeriesCollection)
}

// ensureEpisodeIndexes creates indexes for the episodes collection
func ensureEpisodeIndexes(ctx context.Context, client *Client) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seriesId", Value: 1}, {Key: "episodeNumber", Value: 1}}},
	}
	return createIndexes(ctx, client.Collection(EpisodesCollection), indexes, client.Logger(), EpisodesCollection)
}

// ensureAppVersionIndexes serves the latest-version lookup
func ensureAppVersionIndexes(ctx context.Context, client *Client) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "platform", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	return createIndexes(ctx, client.Collection(AppVersionsCollection), indexes, client.Logger(), AppVersionsCollection)
}

func ensureCrashReportIndexes(ctx context.Context, client *Client) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	return createIndexes(ctx, client.Collection(CrashReportsCollection), indexes, client.Logger(), CrashReportsCollection)
}

// ensureEventIndexes serves the per-event counts of the analytics summary
func ensureEventIndexes(collection string) IndexCreator {
	return func(ctx context.Context, client *Client) error {
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "event", Value: 1}, {Key: "timestamp", Value: -1}}},
		}
		return createIndexes(ctx, client.Collection(collection), indexes, client.Logger(), collection)
	}
}
