// Package catalog implements the movie, series and episode operations of the API.
// Every read passes the records through the delivery resolver so only servable
// links reach clients.
package catalog

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/db/mongo/repositories"
	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

// LinkResolver is the part of the delivery layer the catalog depends on.
type LinkResolver interface {
	Resolve(ctx context.Context, records []*models.MediaRecord) ([]*models.MediaRecord, error)
	ServableURL(ctx context.Context, link models.DeliveryLink, hint string) (string, error)
	EncryptLinks(links []models.DeliveryLink) ([]models.DeliveryLink, error)
	DisplayProvider(hint string) string
}

// Service handles catalog operations.
type Service struct {
	movies   repositories.MovieRepository
	series   repositories.SeriesRepository
	episodes repositories.EpisodeRepository
	resolver LinkResolver
	logger   *utils.Logger
}

// NewService creates a new catalog service.
func NewService(
	movies repositories.MovieRepository,
	series repositories.SeriesRepository,
	episodes repositories.EpisodeRepository,
	resolver LinkResolver,
	logger *utils.Logger,
) *Service {
	return &Service{
		movies:   movies,
		series:   series,
		episodes: episodes,
		resolver: resolver,
		logger:   logger.Named("catalog_service"),
	}
}

// resolvable is a catalog item the resolver can work on.
type resolvable interface {
	Record() *models.MediaRecord
	Apply(r *models.MediaRecord)
}

// resolveItems filters the links of items in place against one health snapshot
// and fills in the provider reported to clients.
func resolveItems[T resolvable](ctx context.Context, s *Service, items []T) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]*models.MediaRecord, len(items))
	for i, item := range items {
		records[i] = item.Record()
	}

	resolved, err := s.resolver.Resolve(ctx, records)
	if err != nil {
		return deliveryError(err)
	}

	for i, item := range items {
		resolved[i].Provider = s.resolver.DisplayProvider(resolved[i].Provider)
		item.Apply(resolved[i])
	}
	return nil
}

// resolveWritten resolves the record returned by a committed write.
// When the strict policy finds every provider down the write still stands,
// so the record is returned without links instead of failing the request.
func resolveWritten[T resolvable](ctx context.Context, s *Service, item T) (T, error) {
	err := resolveItems(ctx, s, []T{item})
	if errors.Is(err, delivery.ErrAllProvidersDown) {
		rec := item.Record()
		rec.Links = []models.DeliveryLink{}
		rec.Provider = s.resolver.DisplayProvider(rec.Provider)
		item.Apply(rec)
		return item, nil
	}
	return item, err
}

// encryptInputs converts uploaded links to their stored form.
func (s *Service) encryptInputs(inputs []models.LinkInput) ([]models.DeliveryLink, error) {
	links := make([]models.DeliveryLink, len(inputs))
	for i, in := range inputs {
		links[i] = models.DeliveryLink{Quality: in.Quality, Language: in.Language, URL: in.URL}
	}

	encrypted, err := s.resolver.EncryptLinks(links)
	if err != nil {
		s.logger.Error("Failed to encrypt delivery links", err)
		return nil, models.NewInternalError(err, "Failed to encrypt video links")
	}
	return encrypted, nil
}

// ParseID parses a hex object id, returning a 400 error when malformed.
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, models.NewCatalogError(models.ErrInvalidID, "Invalid ID format", http.StatusBadRequest)
	}
	return oid, nil
}

// deliveryError maps resolver errors onto HTTP-aware domain errors.
func deliveryError(err error) error {
	switch {
	case errors.Is(err, delivery.ErrAllProvidersDown):
		return models.NewDeliveryError(err, "All delivery providers are currently unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, delivery.ErrProviderUnavailable):
		return models.NewDeliveryError(err, "The provider of this video link is currently unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, delivery.ErrDecryption):
		return models.NewDeliveryError(models.ErrLinkNotFound, "Video link is not available", http.StatusNotFound)
	default:
		return err
	}
}
