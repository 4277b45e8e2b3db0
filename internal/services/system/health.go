package system

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/utils"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	// StatusUp indicates the component is healthy.
	StatusUp HealthStatus = "up"
	// StatusDown indicates the component is unhealthy.
	StatusDown HealthStatus = "down"
	// StatusDegraded indicates the component is functioning but with issues.
	StatusDegraded HealthStatus = "degraded"
)

// Pinger is a dependency that can be checked for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SnapshotSource exposes the provider health snapshot.
type SnapshotSource interface {
	Snapshot() *delivery.Snapshot
}

// ComponentHealth represents the health of a system component.
type ComponentHealth struct {
	Name        string       `json:"name"`
	Status      HealthStatus `json:"status"`
	Description string       `json:"description,omitempty"`
	Latency     int64        `json:"latency_ms,omitempty"` // Response time in milliseconds
	LastChecked time.Time    `json:"last_checked"`
}

// SystemHealth represents the overall health of the system.
type SystemHealth struct {
	Status      HealthStatus       `json:"status"`
	Components  []ComponentHealth  `json:"components"`
	Providers   *delivery.Snapshot `json:"providers,omitempty"`
	Version     string             `json:"version"`
	Environment string             `json:"environment"`
	Uptime      int64              `json:"uptime_seconds"`
	StartTime   time.Time          `json:"start_time"`
	GoVersion   string             `json:"go_version"`
	GoRoutines  int                `json:"go_routines"`
	MemStats    MemoryStats        `json:"memory_stats"`
}

// MemoryStats represents memory usage statistics.
type MemoryStats struct {
	Alloc     uint64 `json:"alloc_bytes"`
	Sys       uint64 `json:"sys_bytes"`
	NumGC     uint32 `json:"num_gc"`
	HeapAlloc uint64 `json:"heap_alloc_bytes"`
}

// HealthService provides health checking functionality.
type HealthService struct {
	pingers   map[string]Pinger
	providers SnapshotSource
	logger    *utils.Logger

	startTime     time.Time
	version       string
	environment   string
	checkInterval time.Duration

	componentCache map[string]ComponentHealth
	cacheMutex     sync.RWMutex
}

// HealthServiceConfig contains configuration for the health service.
type HealthServiceConfig struct {
	Version     string
	Environment string
}

// NewHealthService creates a new health service.
// pingers maps component names such as "mongodb" to their checks; providers may be nil.
func NewHealthService(
	pingers map[string]Pinger,
	providers SnapshotSource,
	logger *utils.Logger,
	config HealthServiceConfig,
) *HealthService {
	return &HealthService{
		pingers:        pingers,
		providers:      providers,
		logger:         logger.Named("health_service"),
		startTime:      time.Now(),
		version:        config.Version,
		environment:    config.Environment,
		componentCache: make(map[string]ComponentHealth),
		checkInterval:  30 * time.Second,
	}
}

// Start begins periodic health checks.
func (s *HealthService) Start(ctx context.Context) {
	s.logger.Info("Starting health service")

	s.CheckHealth(ctx)

	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Stopping health service")
				return
			case <-ticker.C:
				s.CheckHealth(ctx)
			}
		}
	}()
}

// CheckHealth pings every registered component.
func (s *HealthService) CheckHealth(ctx context.Context) {
	s.logger.Debug("Performing health check")

	for name, p := range s.pingers {
		s.check(ctx, name, p)
	}
}

func (s *HealthService) check(ctx context.Context, name string, p Pinger) {
	start := time.Now()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.Ping(pingCtx)
	latency := time.Since(start).Milliseconds()

	status := StatusUp
	description := name + " connection is healthy"
	if err != nil {
		status = StatusDown
		description = "Failed to reach " + name + ": " + err.Error()
		s.logger.Error("Health check failed", err, "component", name)
	}

	s.updateComponentHealth(name, status, description, latency)
}

// GetHealth returns the current health status of the system.
// Provider outages degrade the service but never mark it down.
func (s *HealthService) GetHealth(ctx context.Context) SystemHealth {
	s.cacheMutex.RLock()
	components := make([]ComponentHealth, 0, len(s.componentCache)+1)
	for _, component := range s.componentCache {
		components = append(components, component)
	}
	s.cacheMutex.RUnlock()

	var snap *delivery.Snapshot
	if s.providers != nil {
		snap = s.providers.Snapshot()
		if c, ok := providerComponent(snap); ok {
			components = append(components, c)
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	status := StatusUp
	for _, component := range components {
		if component.Status == StatusDown && component.Name != "providers" {
			status = StatusDown
			break
		} else if component.Status != StatusUp {
			status = StatusDegraded
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemHealth{
		Status:      status,
		Components:  components,
		Providers:   snap,
		Version:     s.version,
		Environment: s.environment,
		Uptime:      int64(time.Since(s.startTime).Seconds()),
		StartTime:   s.startTime,
		GoVersion:   runtime.Version(),
		GoRoutines:  runtime.NumGoroutine(),
		MemStats: MemoryStats{
			Alloc:     memStats.Alloc,
			Sys:       memStats.Sys,
			NumGC:     memStats.NumGC,
			HeapAlloc: memStats.HeapAlloc,
		},
	}
}

// providerComponent summarizes a provider snapshot. No snapshot or no providers yields nothing.
func providerComponent(snap *delivery.Snapshot) (ComponentHealth, bool) {
	if snap == nil || len(snap.Status) == 0 {
		return ComponentHealth{}, false
	}

	up := 0
	for _, ok := range snap.Status {
		if ok {
			up++
		}
	}

	c := ComponentHealth{Name: "providers", LastChecked: snap.RefreshedAt}
	switch {
	case up == len(snap.Status):
		c.Status, c.Description = StatusUp, "All delivery providers reachable"
	case up == 0:
		c.Status, c.Description = StatusDown, "No delivery provider reachable"
	default:
		c.Status, c.Description = StatusDegraded, "Some delivery providers unreachable"
	}
	return c, true
}

// updateComponentHealth updates the health status of a component in the cache.
func (s *HealthService) updateComponentHealth(name string, status HealthStatus, description string, latency int64) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.componentCache[name] = ComponentHealth{
		Name:        name,
		Status:      status,
		Description: description,
		Latency:     latency,
		LastChecked: time.Now(),
	}
}
