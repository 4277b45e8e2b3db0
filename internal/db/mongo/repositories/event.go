package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

const (
	analyticsCollection   = "analytics"
	proxyEventsCollection = "proxyanalytics"
)

// EventRepository stores tracked events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	// Count counts events named name, from since onwards when since is set.
	Count(ctx context.Context, name string, since time.Time) (int64, error)
}

type eventRepository struct {
	collection *mongo.Collection
	logger     *utils.Logger
}

// NewAnalyticsRepository returns the repository of app analytics events.
func NewAnalyticsRepository(db *mongo.Database, logger *utils.Logger) EventRepository {
	return newEventRepository(db, analyticsCollection, logger)
}

// NewProxyEventRepository returns the repository of events logged by the proxies.
func NewProxyEventRepository(db *mongo.Database, logger *utils.Logger) EventRepository {
	return newEventRepository(db, proxyEventsCollection, logger)
}

func newEventRepository(db *mongo.Database, collection string, logger *utils.Logger) *eventRepository {
	return &eventRepository{
		collection: db.Collection(collection),
		logger:     logger.Named("event_repository").With("collection", collection),
	}
}

// Create inserts an event.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		r.logger.Error("Failed to log event", err, "event", event.Event)
		return models.NewInternalError(err, "Failed to log analytics event")
	}
	return nil
}

// Count counts matching events.
func (r *eventRepository) Count(ctx context.Context, name string, since time.Time) (int64, error) {
	filter := eventFilter(name, since)

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count events", err, "event", name)
		return 0, models.NewInternalError(err, "Failed to get analytics summary")
	}
	return n, nil
}

func eventFilter(name string, since time.Time) bson.M {
	filter := bson.M{"event": name}
	if !since.IsZero() {
		filter["timestamp"] = bson.M{"$gte": since}
	}
	return filter
}
