package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jasim8799/api/internal/utils"
)

// HTTPMetrics receives per-request measurements.
type HTTPMetrics interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
	IncHTTPRequestsInProgress(method, path string)
	DecHTTPRequestsInProgress(method, path string)
}

// LoggerMiddleware handles request logging for the API.
type LoggerMiddleware struct {
	logger  *utils.Logger
	metrics HTTPMetrics
}

// NewLoggerMiddleware creates a new logger middleware. metrics may be nil.
func NewLoggerMiddleware(logger *utils.Logger, metrics HTTPMetrics) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:  logger.Named("http"),
		metrics: metrics,
	}
}

// Logger is a middleware that logs HTTP requests.
func (m *LoggerMiddleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		if m.metrics != nil {
			m.metrics.IncHTTPRequestsInProgress(r.Method, "inflight")
			defer m.metrics.DecHTTPRequestsInProgress(r.Method, "inflight")
		}

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		if m.metrics != nil {
			m.metrics.ObserveHTTPRequest(r.Method, routePattern(r), status, duration)
		}

		m.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
			"ip", utils.GetRequestIP(r),
			"requestId", chimw.GetReqID(r.Context()),
			"userAgent", r.UserAgent(),
		)
	})
}

// routePattern keeps metric label cardinality bounded by using the matched chi pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
