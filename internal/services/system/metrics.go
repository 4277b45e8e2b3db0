// Package system provides system-level services for monitoring and maintenance.
package system

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/utils"
)

const metricsNamespace = "catalog"

// MetricsService provides application metrics collection functionality.
// It also implements delivery.Recorder.
type MetricsService struct {
	logger   *utils.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	httpRequestsInProgress *prometheus.GaugeVec

	// Delivery metrics
	probesTotal      *prometheus.CounterVec
	probeDuration    *prometheus.HistogramVec
	providerUp       *prometheus.GaugeVec
	cacheLookups     *prometheus.CounterVec
	linksDropped     *prometheus.CounterVec
	rateLimitRejects prometheus.Counter
}

// NewMetricsService creates a new metrics service registering on reg.
// A nil reg gets a fresh registry with the Go and process collectors.
func NewMetricsService(logger *utils.Logger, reg *prometheus.Registry) *MetricsService {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &MetricsService{
		logger:   logger.Named("metrics_service"),
		registry: reg,
	}

	factory := promauto.With(reg)
	m.initHTTPMetrics(factory)
	m.initDeliveryMetrics(factory)

	return m
}

// Handler returns an HTTP handler for exposing metrics.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the service collects into.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// initHTTPMetrics initializes HTTP-related metrics.
func (m *MetricsService) initHTTPMetrics(factory promauto.Factory) {
	m.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.httpRequestsInProgress = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_in_progress",
			Help:      "Number of HTTP requests currently in progress",
		},
		[]string{"method", "path"},
	)

	m.rateLimitRejects = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
}

// initDeliveryMetrics initializes provider health and link filtering metrics.
func (m *MetricsService) initDeliveryMetrics(factory promauto.Factory) {
	m.probesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "delivery",
			Name:      "probes_total",
			Help:      "Provider health probes by result",
		},
		[]string{"provider", "result"},
	)

	m.probeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "delivery",
			Name:      "probe_duration_seconds",
			Help:      "Duration of provider health probes",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	m.providerUp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "delivery",
			Name:      "provider_up",
			Help:      "1 when the last probe of the provider succeeded",
		},
		[]string{"provider"},
	)

	m.cacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "delivery",
			Name:      "health_cache_lookups_total",
			Help:      "Provider health cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.linksDropped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "delivery",
			Name:      "links_dropped_total",
			Help:      "Delivery links removed from responses",
		},
		[]string{"reason"},
	)
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncHTTPRequestsInProgress increments the in-flight gauge.
func (m *MetricsService) IncHTTPRequestsInProgress(method, path string) {
	m.httpRequestsInProgress.WithLabelValues(method, path).Inc()
}

// DecHTTPRequestsInProgress decrements the in-flight gauge.
func (m *MetricsService) DecHTTPRequestsInProgress(method, path string) {
	m.httpRequestsInProgress.WithLabelValues(method, path).Dec()
}

// IncRateLimited counts a rejected request.
func (m *MetricsService) IncRateLimited() {
	m.rateLimitRejects.Inc()
}

// ProbeCompleted implements delivery.Recorder.
func (m *MetricsService) ProbeCompleted(provider delivery.ProviderID, up bool, elapsed time.Duration) {
	result, gauge := "down", 0.0
	if up {
		result, gauge = "up", 1.0
	}
	m.probesTotal.WithLabelValues(string(provider), result).Inc()
	m.probeDuration.WithLabelValues(string(provider)).Observe(elapsed.Seconds())
	m.providerUp.WithLabelValues(string(provider)).Set(gauge)
}

// CacheLookup implements delivery.Recorder.
func (m *MetricsService) CacheLookup(hit bool) {
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// LinksDropped implements delivery.Recorder.
func (m *MetricsService) LinksDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	m.linksDropped.WithLabelValues(reason).Add(float64(n))
}
