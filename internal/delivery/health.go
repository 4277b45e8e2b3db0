package delivery

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/singleflight"

	"github.com/jasim8799/api/internal/utils"
)

// DefaultCacheTTL is how long a health snapshot stays valid.
const DefaultCacheTTL = 10 * time.Second

// Snapshot is one immutable view of provider health.
// It is replaced wholesale on refresh and never modified afterwards.
type Snapshot struct {
	Status      map[ProviderID]bool `json:"status"`
	RefreshedAt time.Time           `json:"refreshedAt"`
	ExpiresAt   time.Time           `json:"expiresAt"`

	// seq orders refreshes by when their probes started.
	seq uint64
}

// HealthCache tracks which providers are reachable, probing them at most once per TTL
// unless a refresh is forced.
type HealthCache struct {
	targets  []Target
	ttl      time.Duration
	prober   Prober
	now      func() time.Time
	recorder Recorder
	logger   *utils.Logger

	// group deduplicates concurrent lazy refreshes; nil when disabled.
	group *singleflight.Group

	current atomic.Pointer[Snapshot]
	seq     atomic.Uint64
}

// HealthCacheOption configures a HealthCache.
type HealthCacheOption func(*HealthCache)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) HealthCacheOption {
	return func(c *HealthCache) {
		c.now = now
	}
}

// WithProber replaces the HTTP prober.
func WithProber(p Prober) HealthCacheOption {
	return func(c *HealthCache) {
		c.prober = p
	}
}

// WithSingleFlight makes concurrent callers that observe an expired snapshot share one refresh.
func WithSingleFlight(enabled bool) HealthCacheOption {
	return func(c *HealthCache) {
		if enabled {
			c.group = &singleflight.Group{}
		} else {
			c.group = nil
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) HealthCacheOption {
	return func(c *HealthCache) {
		c.recorder = r
	}
}

// NewHealthCache creates a cache over the given probe targets.
// A non-positive ttl falls back to DefaultCacheTTL.
func NewHealthCache(targets []Target, ttl time.Duration, logger *utils.Logger, opts ...HealthCacheOption) *HealthCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &HealthCache{
		targets:  append([]Target(nil), targets...),
		ttl:      ttl,
		prober:   NewHTTPProber(nil),
		now:      time.Now,
		recorder: nopRecorder{},
		logger:   logger.Named("health_cache"),
		group:    &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetStatus returns the current provider status, refreshing it first when the snapshot has expired.
// The returned map is shared and must not be modified.
func (c *HealthCache) GetStatus(ctx context.Context) map[ProviderID]bool {
	if snap := c.current.Load(); c.fresh(snap) {
		c.recorder.CacheLookup(true)
		return snap.Status
	}
	c.recorder.CacheLookup(false)

	if c.group == nil {
		return c.refresh(ctx).Status
	}

	v, _, _ := c.group.Do("refresh", func() (any, error) {
		// Another caller may have refreshed while this one waited.
		if snap := c.current.Load(); c.fresh(snap) {
			return snap, nil
		}
		return c.refresh(ctx), nil
	})
	return v.(*Snapshot).Status
}

// ForceRefresh probes every provider regardless of expiry.
func (c *HealthCache) ForceRefresh(ctx context.Context) map[ProviderID]bool {
	return c.refresh(ctx).Status
}

// Snapshot returns the live snapshot, or nil before the first refresh.
func (c *HealthCache) Snapshot() *Snapshot {
	return c.current.Load()
}

// TTL returns the snapshot lifetime.
func (c *HealthCache) TTL() time.Duration {
	return c.ttl
}

func (c *HealthCache) fresh(snap *Snapshot) bool {
	return snap != nil && c.now().Before(snap.ExpiresAt)
}

// refresh probes all targets concurrently and installs the result.
// Probe failures are recorded as false; refresh itself never fails.
// Probes are bounded by their own timeouts only: a caller going away
// says nothing about provider health and must not be cached as an outage.
func (c *HealthCache) refresh(ctx context.Context) *Snapshot {
	ctx = context.WithoutCancel(ctx)
	seq := c.seq.Add(1)
	results := make([]bool, len(c.targets))

	var wg conc.WaitGroup
	for i, target := range c.targets {
		wg.Go(func() {
			results[i] = c.probe(ctx, target)
		})
	}
	wg.Wait()

	status := make(map[ProviderID]bool, len(c.targets))
	for i, target := range c.targets {
		status[target.ID] = results[i]
	}

	now := c.now()
	snap := &Snapshot{
		Status:      status,
		RefreshedAt: now,
		ExpiresAt:   now.Add(c.ttl),
		seq:         seq,
	}

	installed := c.install(snap)
	if installed != snap {
		c.logger.Debug("Discarding stale provider health", "seq", seq, "current", installed.seq)
		return installed
	}

	c.logger.Debug("Provider health refreshed", "providers", len(status), "expiresAt", snap.ExpiresAt)
	return snap
}

// install stores snap unless a refresh that started later already stored its result.
// It returns the snapshot left in place.
func (c *HealthCache) install(snap *Snapshot) *Snapshot {
	for {
		cur := c.current.Load()
		if cur != nil && cur.seq > snap.seq {
			return cur
		}
		if c.current.CompareAndSwap(cur, snap) {
			return snap
		}
	}
}

func (c *HealthCache) probe(ctx context.Context, target Target) bool {
	if target.Timeout <= 0 {
		target.Timeout = DefaultProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	start := time.Now()
	err := c.prober.Probe(ctx, target)
	up := err == nil
	c.recorder.ProbeCompleted(target.ID, up, time.Since(start))

	if !up {
		c.logger.Warn("Provider probe failed", "provider", string(target.ID), "url", target.URL, "error", err)
	}
	return up
}
