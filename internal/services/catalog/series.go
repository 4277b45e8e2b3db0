package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
)

// ListSeries returns the series in category and region with their links resolved.
func (s *Service) ListSeries(ctx context.Context, category, region string) ([]*models.Series, error) {
	series, err := s.series.List(ctx, category, region)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, series); err != nil {
		return nil, err
	}
	return series, nil
}

// GetSeries returns one series with its links resolved.
func (s *Service) GetSeries(ctx context.Context, id bson.ObjectID) (*models.Series, error) {
	series, err := s.series.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, []*models.Series{series}); err != nil {
		return nil, err
	}
	return series, nil
}

// CreateSeries stores a new series with every link URL encrypted.
func (s *Service) CreateSeries(ctx context.Context, req *models.SeriesCreateRequest) (*models.Series, error) {
	links, err := s.encryptInputs(req.VideoSources)
	if err != nil {
		return nil, err
	}

	series := &models.Series{
		Title:        req.Title,
		Overview:     req.Overview,
		PosterPath:   req.PosterPath,
		ReleaseDate:  req.ReleaseDate,
		VoteAverage:  req.VoteAverage,
		VideoSources: links,
		Category:     req.Category,
		Region:       req.Region,
		Type:         req.Type,
		Provider:     req.Provider,
	}

	if err := s.series.Create(ctx, series); err != nil {
		return nil, err
	}

	s.logger.Info("Series uploaded", "id", series.ID.Hex(), "title", series.Title)
	return series, nil
}

// UpdateSeries applies the non-nil fields of req. Replacement links are encrypted.
func (s *Service) UpdateSeries(ctx context.Context, id bson.ObjectID, req *models.SeriesUpdateRequest) (*models.Series, error) {
	fields := bson.M{}
	setIf := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setIf("title", req.Title)
	setIf("overview", req.Overview)
	setIf("posterPath", req.PosterPath)
	setIf("releaseDate", req.ReleaseDate)
	setIf("category", req.Category)
	setIf("region", req.Region)
	setIf("provider", req.Provider)
	if req.VoteAverage != nil {
		fields["voteAverage"] = *req.VoteAverage
	}

	if req.VideoSources != nil {
		links, err := s.encryptInputs(req.VideoSources)
		if err != nil {
			return nil, err
		}
		fields["videoSources"] = links
	}

	series, err := s.series.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return resolveWritten(ctx, s, series)
}

// DeleteSeries removes a series.
func (s *Service) DeleteSeries(ctx context.Context, id bson.ObjectID) error {
	if err := s.series.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Series deleted", "id", id.Hex())
	return nil
}

// CreateEpisode stores a new episode with every link URL encrypted.
// The parent series must exist.
func (s *Service) CreateEpisode(ctx context.Context, req *models.EpisodeCreateRequest) (*models.Episode, error) {
	seriesID, err := ParseID(req.SeriesID)
	if err != nil {
		return nil, err
	}

	if _, err := s.series.FindByID(ctx, seriesID); err != nil {
		return nil, err
	}

	links, err := s.encryptInputs(req.VideoSources)
	if err != nil {
		return nil, err
	}

	episode := &models.Episode{
		SeriesID:      seriesID,
		EpisodeNumber: req.EpisodeNumber,
		Title:         req.Title,
		Overview:      req.Overview,
		VideoSources:  links,
		ReleaseDate:   req.ReleaseDate,
		Provider:      req.Provider,
	}

	if err := s.episodes.Create(ctx, episode); err != nil {
		return nil, err
	}

	s.logger.Info("Episode added", "id", episode.ID.Hex(), "seriesId", req.SeriesID, "episode", episode.EpisodeNumber)
	return episode, nil
}

// ListEpisodes returns the episodes of a series in order, links resolved.
func (s *Service) ListEpisodes(ctx context.Context, seriesID bson.ObjectID) ([]*models.Episode, error) {
	episodes, err := s.episodes.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	if err := resolveItems(ctx, s, episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}
