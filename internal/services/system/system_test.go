package system

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/utils"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticSnapshot struct{ snap *delivery.Snapshot }

func (s staticSnapshot) Snapshot() *delivery.Snapshot { return s.snap }

func TestHealthService_GetHealth(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	failing := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name    string
		pingers map[string]Pinger
		status  map[delivery.ProviderID]bool
		want    HealthStatus
	}{
		{"all up", map[string]Pinger{"mongodb": ok}, map[delivery.ProviderID]bool{"cdnA": true}, StatusUp},
		{"database down", map[string]Pinger{"mongodb": failing}, map[delivery.ProviderID]bool{"cdnA": true}, StatusDown},
		{"one provider down", map[string]Pinger{"mongodb": ok}, map[delivery.ProviderID]bool{"cdnA": true, "cdnB": false}, StatusDegraded},
		{"all providers down", map[string]Pinger{"mongodb": ok}, map[delivery.ProviderID]bool{"cdnA": false}, StatusDegraded},
		{"no providers", map[string]Pinger{"mongodb": ok}, map[delivery.ProviderID]bool{}, StatusUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &delivery.Snapshot{Status: tt.status, RefreshedAt: time.Now()}
			s := NewHealthService(tt.pingers, staticSnapshot{snap}, utils.NewNopLogger(), HealthServiceConfig{Version: "test"})
			s.CheckHealth(context.Background())

			h := s.GetHealth(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Equal(t, "test", h.Version)
			assert.Same(t, snap, h.Providers)
		})
	}
}

func TestHealthService_NoSnapshotYet(t *testing.T) {
	s := NewHealthService(nil, staticSnapshot{}, utils.NewNopLogger(), HealthServiceConfig{})
	h := s.GetHealth(context.Background())

	assert.Equal(t, StatusUp, h.Status)
	assert.Nil(t, h.Providers)
	assert.Empty(t, h.Components)
}

func TestMetricsService_Recorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsService(utils.NewNopLogger(), reg)

	var _ delivery.Recorder = m

	m.ProbeCompleted("cdnA", true, 20*time.Millisecond)
	m.ProbeCompleted("cdnB", false, time.Second)
	m.CacheLookup(true)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.LinksDropped(delivery.DropProviderDown, 3)
	m.LinksDropped(delivery.DropUndecryptable, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	for _, line := range []string{
		`catalog_delivery_provider_up{provider="cdnA"} 1`,
		`catalog_delivery_provider_up{provider="cdnB"} 0`,
		`catalog_delivery_probes_total{provider="cdnB",result="down"} 1`,
		`catalog_delivery_health_cache_lookups_total{outcome="hit"} 2`,
		`catalog_delivery_health_cache_lookups_total{outcome="miss"} 1`,
		`catalog_delivery_links_dropped_total{reason="provider_down"} 3`,
	} {
		assert.Contains(t, body, line)
	}
	assert.NotContains(t, body, `reason="undecryptable"`)
}
