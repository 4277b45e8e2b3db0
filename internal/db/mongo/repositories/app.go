package repositories

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

const (
	appVersionsCollection  = "appversions"
	crashReportsCollection = "crashreports"
	appStatsCollection     = "appstats"
)

// AppVersionRepository stores released client builds.
type AppVersionRepository interface {
	Create(ctx context.Context, version *models.AppVersion) error
	Latest(ctx context.Context, platform string) (*models.AppVersion, error)
}

type appVersionRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewAppVersionRepository creates a new instance of AppVersionRepository.
func NewAppVersionRepository(db *mongo.Database, logger *utils.Logger) AppVersionRepository {
	return &appVersionRepository{
		collection: db.Collection(appVersionsCollection),
		logger:     logger.Named("app_version_repository"),
	}
}

// Create inserts a new version.
func (r *appVersionRepository) Create(ctx context.Context, version *models.AppVersion) error {
	if version.ID.IsZero() {
		version.ID = bson.NewObjectID()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, version); err != nil {
		r.logger.Error("Failed to create app version", err, "version", version.Version, "platform", version.Platform)
		return models.NewInternalError(err, "Failed to publish version")
	}
	return nil
}

// Latest returns the newest version for platform.
func (r *appVersionRepository) Latest(ctx context.Context, platform string) (*models.AppVersion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var version models.AppVersion
	err := r.collection.FindOne(ctx, bson.M{"platform": platform}, opts).Decode(&version)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewAppError(models.ErrVersionNotFound, "Version not found", http.StatusNotFound)
		}
		r.logger.Error("Failed to find latest app version", err, "platform", platform)
		return nil, models.NewInternalError(err, "Server error")
	}
	return &version, nil
}

// CrashRepository stores client crash reports.
type CrashRepository interface {
	Create(ctx context.Context, report *models.CrashReport) error
	List(ctx context.Context) ([]*models.CrashReport, error)
}

type crashRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewCrashRepository creates a new instance of CrashRepository.
func NewCrashRepository(db *mongo.Database, logger *utils.Logger) CrashRepository {
	return &crashRepository{
		collection: db.Collection(crashReportsCollection),
		logger:     logger.Named("crash_repository"),
	}
}

// Create inserts a crash report.
func (r *crashRepository) Create(ctx context.Context, report *models.CrashReport) error {
	if report.ID.IsZero() {
		report.ID = bson.NewObjectID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		r.logger.Error("Failed to save crash report", err, "platform", report.Platform, "appVersion", report.AppVersion)
		return models.NewInternalError(err, "Failed to save crash report.")
	}
	return nil
}

// List returns every crash report, newest first.
func (r *crashRepository) List(ctx context.Context) ([]*models.CrashReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list crash reports", err)
		return nil, models.NewInternalError(err, "Failed to fetch crash reports")
	}
	defer cursor.Close(ctx)

	reports := []*models.CrashReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		r.logger.Error("Failed to decode crash reports", err)
		return nil, models.NewInternalError(err, "Failed to fetch crash reports")
	}
	return reports, nil
}

// StatsRepository stores the single app-wide counters document.
type StatsRepository interface {
	Get(ctx context.Context, now time.Time) (*models.AppStats, error)
	Record(ctx context.Context, counter models.StatCounter, now time.Time) error
}

type statsRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *mongo.Database, logger *utils.Logger) StatsRepository {
	return &statsRepository{
		collection: db.Collection(appStatsCollection),
		logger:     logger.Named("stats_repository"),
	}
}

// Get returns the counters, creating the document on first use.
func (r *statsRepository) Get(ctx context.Context, now time.Time) (*models.AppStats, error) {
	update := bson.D{{Key: "$setOnInsert", Value: bson.M{
		"totalInstalls":   0,
		"totalVisits":     0,
		"todayVisits":     0,
		"totalMoviePlays": 0,
		"lastUpdated":     now,
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stats models.AppStats
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&stats); err != nil {
		r.logger.Error("Failed to load app stats", err)
		return nil, models.NewInternalError(err, "Failed to load app stats")
	}
	return &stats, nil
}

// Record bumps one counter atomically, creating the document when missing.
func (r *statsRepository) Record(ctx context.Context, counter models.StatCounter, now time.Time) error {
	opts := options.UpdateOne().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{}, statsUpdate(counter, now), opts); err != nil {
		r.logger.Error("Failed to record app stat", err, "counter", string(counter))
		return models.NewInternalError(err, "Failed to record app stat")
	}
	return nil
}

// statsUpdate builds the aggregation-pipeline update for counter.
// A visit restarts todayVisits when the last update happened before today.
func statsUpdate(counter models.StatCounter, now time.Time) bson.A {
	inc := func(field string) bson.M {
		return bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + field, 0}}, 1}}
	}

	set := bson.M{"lastUpdated": now}
	switch counter {
	case models.StatVisit:
		set["totalVisits"] = inc("totalVisits")
		set["todayVisits"] = bson.M{"$cond": bson.A{
			bson.M{"$gte": bson.A{"$lastUpdated", models.StartOfDay(now)}},
			inc("todayVisits"),
			1,
		}}
	case models.StatInstall:
		set["totalInstalls"] = inc("totalInstalls")
	case models.StatMoviePlay:
		set["totalMoviePlays"] = inc("totalMoviePlays")
	}
	return bson.A{bson.M{"$set": set}}
}
