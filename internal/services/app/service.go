// Package app implements the endpoints the client app reports to: release
// checks, crash reports, analytics events and the app-wide counters.
package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jasim8799/api/internal/db/mongo/repositories"
	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

// Service handles client app operations.
type Service struct {
	versions    repositories.AppVersionRepository
	crashes     repositories.CrashRepository
	analytics   repositories.EventRepository
	proxyEvents repositories.EventRepository
	stats       repositories.StatsRepository
	now         func() time.Time
	logger      *utils.Logger
}

// Repositories groups the stores the service works on.
type Repositories struct {
	Versions    repositories.AppVersionRepository
	Crashes     repositories.CrashRepository
	Analytics   repositories.EventRepository
	ProxyEvents repositories.EventRepository
	Stats       repositories.StatsRepository
}

// NewService creates a new app service. now may be nil to use the wall clock.
func NewService(repos Repositories, now func() time.Time, logger *utils.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		versions:    repos.Versions,
		crashes:     repos.Crashes,
		analytics:   repos.Analytics,
		proxyEvents: repos.ProxyEvents,
		stats:       repos.Stats,
		now:         now,
		logger:      logger.Named("app_service"),
	}
}

// LatestVersion returns the newest release for platform, android when empty.
func (s *Service) LatestVersion(ctx context.Context, platform string) (*models.AppVersion, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	switch platform {
	case "":
		platform = models.PlatformAndroid
	case models.PlatformAndroid, models.PlatformIOS:
	default:
		return nil, models.NewAppError(models.ErrInvalidPlatform, "platform must be android or ios", http.StatusBadRequest)
	}

	return s.versions.Latest(ctx, platform)
}

// PublishVersion records a new release.
func (s *Service) PublishVersion(ctx context.Context, req *models.AppVersionCreateRequest) (*models.AppVersion, error) {
	version := &models.AppVersion{
		Version:   req.Version,
		Changelog: req.Changelog,
		Mandatory: req.Mandatory,
		Platform:  req.Platform,
		CreatedAt: s.now(),
	}

	if err := s.versions.Create(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("App version published", "version", version.Version, "platform", version.Platform, "mandatory", version.Mandatory)
	return version, nil
}

// ReportCrash stores a crash sent by the app.
func (s *Service) ReportCrash(ctx context.Context, req *models.CrashReportRequest) error {
	report := &models.CrashReport{
		Message:    req.Message,
		StackTrace: req.StackTrace,
		Platform:   req.Platform,
		AppVersion: req.AppVersion,
		CreatedAt:  s.now(),
	}
	return s.crashes.Create(ctx, report)
}

// ListCrashes returns every crash report, newest first.
func (s *Service) ListCrashes(ctx context.Context) ([]*models.CrashReport, error) {
	return s.crashes.List(ctx)
}

// TrackEvent stores an analytics event.
func (s *Service) TrackEvent(ctx context.Context, req *models.EventRequest) error {
	event, err := s.newEvent(req, "Event type is required.")
	if err != nil {
		return err
	}
	return s.analytics.Create(ctx, event)
}

// LogProxyEvent stores an event reported by a proxy client.
func (s *Service) LogProxyEvent(ctx context.Context, req *models.EventRequest) error {
	event, err := s.newEvent(req, "Event type is required")
	if err != nil {
		return err
	}
	return s.proxyEvents.Create(ctx, event)
}

func (s *Service) newEvent(req *models.EventRequest, missing string) (*models.Event, error) {
	name := strings.TrimSpace(req.Event)
	if name == "" {
		return nil, models.NewAppError(models.ErrMissingRequiredField, missing, http.StatusBadRequest)
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	return &models.Event{Event: name, Data: data, Timestamp: s.now()}, nil
}

// AnalyticsSummary counts installs, views and plays. Today starts at local midnight.
func (s *Service) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	var summary models.AnalyticsSummary
	today := models.StartOfDay(s.now())

	counts := []struct {
		event string
		since time.Time
		into  *int64
	}{
		{models.EventAppInstall, time.Time{}, &summary.TotalInstalls},
		{models.EventMovieViewed, time.Time{}, &summary.TotalViews},
		{models.EventMovieViewed, today, &summary.TodayViews},
		{models.EventMoviePlay, time.Time{}, &summary.TotalPlays},
	}

	p := pool.New().WithErrors().WithContext(ctx).WithFirstError()
	for _, c := range counts {
		p.Go(func(ctx context.Context) error {
			n, err := s.analytics.Count(ctx, c.event, c.since)
			if err != nil {
				return err
			}
			*c.into = n
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Stats returns the app-wide counters.
func (s *Service) Stats(ctx context.Context) (*models.AppStats, error) {
	return s.stats.Get(ctx, s.now())
}

// Record bumps one app-wide counter.
func (s *Service) Record(ctx context.Context, counter models.StatCounter) error {
	return s.stats.Record(ctx, counter, s.now())
}
