// Package apptest provides in-memory repositories for app service tests.
package apptest

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/app"
)

// Store holds every app collection in memory.
// Err, when set, is returned by every operation.
type Store struct {
	mu          sync.Mutex
	versions    []*models.AppVersion
	crashes     []*models.CrashReport
	analytics   []*models.Event
	proxyEvents []*models.Event
	stats       *models.AppStats

	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Repositories returns the repository views of the store.
func (s *Store) Repositories() app.Repositories {
	return app.Repositories{
		Versions:    &VersionRepo{s},
		Crashes:     &CrashRepo{s},
		Analytics:   &EventRepo{s: s, events: &s.analytics},
		ProxyEvents: &EventRepo{s: s, events: &s.proxyEvents},
		Stats:       &StatsRepo{s},
	}
}

// Analytics returns a copy of the stored analytics events.
func (s *Store) Analytics() []models.Event {
	return s.copyEvents(s.analytics)
}

// ProxyEvents returns a copy of the stored proxy events.
func (s *Store) ProxyEvents() []models.Event {
	return s.copyEvents(s.proxyEvents)
}

func (s *Store) copyEvents(events []*models.Event) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(events))
	for i, e := range events {
		out[i] = *e
	}
	return out
}

// VersionRepo implements repositories.AppVersionRepository.
type VersionRepo struct{ s *Store }

func (r *VersionRepo) Create(_ context.Context, v *models.AppVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if v.ID.IsZero() {
		v.ID = bson.NewObjectID()
	}
	c := *v
	r.s.versions = append(r.s.versions, &c)
	return nil
}

func (r *VersionRepo) Latest(_ context.Context, platform string) (*models.AppVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var latest *models.AppVersion
	for _, v := range r.s.versions {
		if v.Platform == platform && (latest == nil || !v.CreatedAt.Before(latest.CreatedAt)) {
			latest = v
		}
	}
	if latest == nil {
		return nil, models.NewAppError(models.ErrVersionNotFound, "Version not found", http.StatusNotFound)
	}
	c := *latest
	return &c, nil
}

// CrashRepo implements repositories.CrashRepository.
type CrashRepo struct{ s *Store }

func (r *CrashRepo) Create(_ context.Context, report *models.CrashReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if report.ID.IsZero() {
		report.ID = bson.NewObjectID()
	}
	c := *report
	r.s.crashes = append(r.s.crashes, &c)
	return nil
}

func (r *CrashRepo) List(_ context.Context) ([]*models.CrashReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]*models.CrashReport, 0, len(r.s.crashes))
	for _, c := range r.s.crashes {
		cc := *c
		out = append(out, &cc)
	}
	slices.SortStableFunc(out, func(a, b *models.CrashReport) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// EventRepo implements repositories.EventRepository over one event slice.
type EventRepo struct {
	s      *Store
	events *[]*models.Event
}

func (r *EventRepo) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if e.ID.IsZero() {
		e.ID = bson.NewObjectID()
	}
	c := *e
	*r.events = append(*r.events, &c)
	return nil
}

func (r *EventRepo) Count(_ context.Context, name string, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, e := range *r.events {
		if e.Event == name && (since.IsZero() || !e.Timestamp.Before(since)) {
			n++
		}
	}
	return n, nil
}

// StatsRepo implements repositories.StatsRepository.
type StatsRepo struct{ s *Store }

func (r *StatsRepo) Get(_ context.Context, now time.Time) (*models.AppStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if r.s.stats == nil {
		r.s.stats = &models.AppStats{ID: bson.NewObjectID(), LastUpdated: now}
	}
	c := *r.s.stats
	return &c, nil
}

func (r *StatsRepo) Record(_ context.Context, counter models.StatCounter, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.s.stats == nil {
		r.s.stats = &models.AppStats{ID: bson.NewObjectID()}
	}
	r.s.stats.Record(counter, now)
	return nil
}
