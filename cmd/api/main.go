package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/medlibrary/internal/adapters/cache"
	"github.com/zatekoja/medlibrary/internal/adapters/memory"
	"github.com/zatekoja/medlibrary/internal/api/middleware"
	"github.com/zatekoja/medlibrary/internal/api/routes"
	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/pkg/config"
)

func main() {
	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(observability.LoggerOptions{
		Service:     cfg.OTEL.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
	})
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	lib, err := catalog.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	report := catalog.Validate(lib)
	for _, issue := range report.Errors() {
		logger.Error().Str("issue", issue.String()).Msg("catalog validation error")
	}
	logger.Info().
		Int("errors", len(report.Errors())).
		Int("warnings", len(report.Warnings())).
		Msg("catalog validated")

	contentRepo := memory.NewContentAdapter(lib, metrics)
	procedureRepo := memory.NewProcedureAdapter(lib, metrics)

	// Redis is optional; the catalog is in memory and the API works without it
	var cacheMiddleware *middleware.CacheMiddleware
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, response cache disabled")
		} else {
			defer redisClient.Close()
			cacheMiddleware = middleware.NewCacheMiddleware(cache.NewRedisAdapter(redisClient), cfg.Cache.TTLSeconds, metrics).
				WithVersion(cfg.OTEL.ServiceVersion)
			logger.Info().Int("ttl_seconds", cfg.Cache.TTLSeconds).Msg("response cache enabled")
		}
	}

	router := routes.NewRouter(
		contentRepo,
		procedureRepo,
		cacheMiddleware,
		middleware.ParseOrigins(cfg.Server.AllowedOrigins),
		metrics,
	)

	serverAddr := cfg.Server.ServerAddr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
