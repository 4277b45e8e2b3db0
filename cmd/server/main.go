package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasim8799/api/internal/api"
	"github.com/jasim8799/api/internal/api/middleware"
	"github.com/jasim8799/api/internal/auth"
	"github.com/jasim8799/api/internal/config"
	"github.com/jasim8799/api/internal/db/mongo"
	"github.com/jasim8799/api/internal/db/mongo/repositories"
	"github.com/jasim8799/api/internal/db/redis"
	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/services/app"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/services/system"
	"github.com/jasim8799/api/internal/utils"
	"github.com/jasim8799/api/pkg/mediaproxy"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Create a context that will be canceled on interrupt signal
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	warnings := config.ValidateAndFixConfig(cfg)

	// Initialize logger
	logger := utils.NewLogger(cfg.LoggerOptions())
	utils.SetLogger(logger)
	defer logger.Sync()

	logger.Info("Starting catalog API", "environment", cfg.Environment, "version", version)
	for _, w := range warnings {
		logger.Warn("Configuration warning", "warning", w)
	}

	// Link cipher. A bad key configuration is fatal: nothing stored could be served.
	cipher, err := delivery.NewLinkCipher(cfg.CipherConfig())
	if err != nil {
		logger.Fatal("Invalid encryption configuration", err)
	}

	// Initialize MongoDB client
	mongoClient, err := mongo.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect from MongoDB", err)
		}
	}()

	if err := mongo.EnsureIndexes(ctx, mongoClient); err != nil {
		logger.Fatal("Failed to create indexes", err)
	}

	pingers := map[string]system.Pinger{"mongodb": mongoClient}

	// Rate limiting, shared through Redis when it is configured
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		if cfg.Database.Redis.Enabled {
			redisClient, err := redis.NewClient(cfg, logger)
			if err != nil {
				logger.Fatal("Failed to connect to Redis", err)
			}
			defer redisClient.Close()

			pingers["redis"] = redisClient
			limiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Requests)
		} else {
			memLimiter := utils.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.Requests)
			go memLimiter.CleanupLoop(ctx, cfg.RateLimit.Window)
			limiter = memLimiter
		}
	}

	// Metrics
	metricsService := system.NewMetricsService(logger, nil)

	// Provider health
	healthCache := delivery.NewHealthCache(cfg.ProbeTargets(), cfg.Delivery.CacheTTL, logger,
		delivery.WithSingleFlight(cfg.Delivery.SingleFlight),
		delivery.WithRecorder(metricsService),
	)
	if cfg.Delivery.WarmSchedule != "" {
		warmer, err := delivery.NewWarmer(healthCache, cfg.Delivery.WarmSchedule, logger)
		if err != nil {
			logger.Fatal("Failed to schedule provider health warm-up", err)
		}
		warmer.Start(ctx)
	}

	classifier := delivery.NewClassifier(cfg.ClassifierRules())
	resolver := delivery.NewResolver(healthCache, classifier, cipher, cfg.ResolverConfig(), metricsService, logger)

	// Initialize repositories and services
	db := mongoClient.Database()
	catalogService := catalog.NewService(
		repositories.NewMovieRepository(db, logger),
		repositories.NewSeriesRepository(db, logger),
		repositories.NewEpisodeRepository(db, logger),
		resolver,
		logger,
	)

	appService := app.NewService(app.Repositories{
		Versions:    repositories.NewAppVersionRepository(db, logger),
		Crashes:     repositories.NewCrashRepository(db, logger),
		Analytics:   repositories.NewAnalyticsRepository(db, logger),
		ProxyEvents: repositories.NewProxyEventRepository(db, logger),
		Stats:       repositories.NewStatsRepository(db, logger),
	}, nil, logger)

	proxies, err := buildProxies(cfg, resolver, logger)
	if err != nil {
		logger.Fatal("Invalid proxy configuration", err)
	}

	healthService := system.NewHealthService(pingers, healthCache, logger, system.HealthServiceConfig{
		Version:     version,
		Environment: cfg.Environment,
	})
	healthService.Start(ctx)

	var tokens *auth.JWTProvider
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewJWTProvider(auth.JWTConfig{
			Secret:        cfg.Auth.JWTSecret,
			Issuer:        cfg.Auth.Issuer,
			TokenDuration: cfg.Auth.TokenExpiry,
		}, logger)
	}

	// Initialize API router
	router := api.NewRouter(api.Dependencies{
		Catalog:   catalogService,
		App:       appService,
		Providers: healthCache,
		Health:    healthService,
		Metrics:   metricsService,
		Proxies:   proxies,
		Limiter:   limiter,
		Tokens:    tokens,
	}, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", addr, "https", cfg.Server.UseHTTPS)

		var err error
		if cfg.Server.UseHTTPS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", err)
	}

	logger.Info("Server shutdown complete")
}

// buildProxies creates the configured reverse proxies. The video proxy is
// refused while the provider serving its target is down.
func buildProxies(cfg *config.Config, resolver *delivery.Resolver, logger *utils.Logger) ([]*mediaproxy.Proxy, error) {
	var proxies []*mediaproxy.Proxy

	if target := cfg.Proxy.APITarget; target != "" {
		p, err := mediaproxy.New(mediaproxy.Config{Name: "api", Prefix: "/proxy/api", Target: target}, logger)
		if err != nil {
			return nil, err
		}
		proxies = append(proxies, p)
	}

	if target := cfg.Proxy.VideoTarget; target != "" {
		p, err := mediaproxy.New(mediaproxy.Config{Name: "video", Prefix: "/proxy/video", Target: target, FlushInterval: -1}, logger,
			mediaproxy.WithGate(func(ctx context.Context) error {
				return resolver.TargetAvailable(ctx, target)
			}))
		if err != nil {
			return nil, err
		}
		proxies = append(proxies, p)
	}

	for _, p := range proxies {
		logger.Info("Proxy mounted", "prefix", p.Prefix())
	}
	return proxies, nil
}
