// Package api provides the HTTP API for the application.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jasim8799/api/internal/api/handlers"
	appMiddleware "github.com/jasim8799/api/internal/api/middleware"
	"github.com/jasim8799/api/internal/auth"
	"github.com/jasim8799/api/internal/config"
	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/services/app"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/services/system"
	"github.com/jasim8799/api/internal/utils"
	"github.com/jasim8799/api/pkg/mediaproxy"
)

// Router is the main HTTP router for the API.
type Router struct {
	*chi.Mux
	logger *utils.Logger
}

// Dependencies holds the services the router dispatches to.
type Dependencies struct {
	Catalog   *catalog.Service
	App       *app.Service
	Providers handlers.ProviderStatus
	Health    *system.HealthService
	Metrics   *system.MetricsService
	// Proxies are mounted at their prefixes behind the proxy token.
	Proxies []*mediaproxy.Proxy
	// Limiter may be nil to disable rate limiting.
	Limiter appMiddleware.Limiter
	// Tokens may be nil to leave writes behind the API key only.
	Tokens *auth.JWTProvider
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies, cfg *config.Config, logger *utils.Logger) *Router {
	r := chi.NewRouter()
	apiLogger := logger.Named("api")

	// Create middleware
	recoveryMiddleware := appMiddleware.NewRecoveryMiddleware(apiLogger)
	metricsService := deps.Metrics
	loggerMiddleware := appMiddleware.NewLoggerMiddleware(apiLogger, metricsService)
	corsMiddleware := appMiddleware.NewCORSMiddleware(appMiddleware.DefaultCORSConfig(cfg.Auth.AllowedOrigins), apiLogger)
	authMiddleware := appMiddleware.NewAuthMiddleware(auth.NewAPIKeyVerifier(cfg.Auth.APIKey), deps.Tokens, apiLogger)
	proxyAuth := authMiddleware.RequireAPIKey
	if cfg.Proxy.Token != "" {
		proxyAuth = authMiddleware.RequireProxyToken(auth.NewAPIKeyVerifier(cfg.Proxy.Token))
	}

	// Create handlers
	movieHandler := handlers.NewMovieHandler(deps.Catalog, apiLogger)
	seriesHandler := handlers.NewSeriesHandler(deps.Catalog, apiLogger)
	episodeHandler := handlers.NewEpisodeHandler(deps.Catalog, apiLogger)
	providerHandler := handlers.NewProviderHandler(deps.Providers, cfg.ResolverConfig().Policy, apiLogger)
	healthHandler := handlers.NewHealthHandler(deps.Health, apiLogger)
	appHandler := handlers.NewAppHandler(deps.App, apiLogger)

	// Apply global middleware
	r.Use(recoveryMiddleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggerMiddleware.Logger)
	r.Use(appMiddleware.SecurityHeaders)
	r.Use(corsMiddleware.CORS)
	if deps.Limiter != nil {
		rateLimit := appMiddleware.NewRateLimitMiddleware(deps.Limiter, apiLogger, metricsService.IncRateLimited)
		r.Use(rateLimit.Limit)
	}

	// Public routes
	r.Get("/", healthHandler.Live)
	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", metricsService.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAPIKey)

			r.Route("/movies", func(r chi.Router) {
				r.Get("/", movieHandler.List)
				r.Get("/titles", movieHandler.Titles)
				r.Get("/all", movieHandler.Titles)
				r.Get("/search", movieHandler.Search)
				r.Get("/category/{category}", movieHandler.ByCategory)
				r.Get("/{id}", WithID(movieHandler.Get))
				r.Get("/{id}/stream/{index}", WithID(movieHandler.Stream))
				r.Put("/{id}/increment-views", WithID(movieHandler.IncrementViews))

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.RequireAdmin)
					r.Post("/", WithBody(movieHandler.Create))
					r.Put("/{id}/add-source", WithIDAndBody(movieHandler.AddSource))
					r.Delete("/{id}", WithID(movieHandler.Delete))
				})
			})

			r.Route("/series", func(r chi.Router) {
				r.Get("/category/{category}", seriesHandler.ByCategory)
				AddCRUDRoutes[models.SeriesCreateRequest, models.SeriesUpdateRequest](r, seriesHandler, authMiddleware.RequireAdmin)
			})

			r.Route("/episodes", func(r chi.Router) {
				r.Get("/", episodeHandler.List)
				r.With(authMiddleware.RequireAdmin).Post("/", WithBody(episodeHandler.Create))
			})

			r.Route("/providers", func(r chi.Router) {
				r.Get("/status", providerHandler.Status)
				r.With(authMiddleware.RequireAdmin).Post("/refresh", providerHandler.Refresh)
			})

			r.Route("/app", func(r chi.Router) {
				r.Get("/version", appHandler.Version)
				r.With(authMiddleware.RequireAdmin).Post("/version", WithBody(appHandler.PublishVersion))
			})

			r.Route("/crashes", func(r chi.Router) {
				r.Post("/", WithBody(appHandler.ReportCrash))
				r.With(authMiddleware.RequireAdmin).Get("/", appHandler.ListCrashes)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Post("/track", WithBody(appHandler.Track))
				r.Get("/summary", appHandler.Summary)
			})

			r.Route("/appstats", func(r chi.Router) {
				r.Get("/", appHandler.Stats)
				r.Post("/visit", appHandler.Record(models.StatVisit, "Visit recorded."))
				r.Post("/install", appHandler.Record(models.StatInstall, "Install recorded."))
				r.Post("/play", appHandler.Record(models.StatMoviePlay, "Movie play recorded."))
			})
		})

		// Proxy clients report with the proxy token rather than the API key.
		r.With(proxyAuth).Post("/proxy-analytics", WithBody(appHandler.LogProxyEvent))
	})

	for _, p := range deps.Proxies {
		guarded := proxyAuth(p)
		r.Handle(p.Prefix(), guarded)
		r.Handle(p.Prefix()+"/*", guarded)
	}

	return &Router{
		Mux:    r,
		logger: apiLogger,
	}
}
