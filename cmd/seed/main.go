package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/zatekoja/medlibrary/internal/adapters/database"
	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/pkg/config"
)

// seed mirrors the embedded catalog into PostgreSQL
func main() {
	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(observability.LoggerOptions{
		Service:     "medlibrary-seed",
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
	})
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lib, err := catalog.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	if report := catalog.Validate(lib); report.HasErrors() {
		for _, issue := range report.Errors() {
			logger.Error().Str("issue", issue.String()).Msg("catalog validation error")
		}
		logger.Fatal().Int("errors", len(report.Errors())).Msg("refusing to export an invalid catalog")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	exporter := database.NewExportAdapter(pgClient, metrics)
	if err := exporter.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to create export schema")
	}

	for _, store := range lib.Stores() {
		n, err := exporter.ExportProcedures(ctx, store.Name(), store.All())
		if err != nil {
			logger.Fatal().Err(err).Str("store", string(store.Name())).Msg("export failed")
		}
		logger.Info().Str("store", string(store.Name())).Int("rows", n).Msg("exported procedures")
	}

	n, err := exporter.ExportContent(ctx, lib.Content().All())
	if err != nil {
		logger.Fatal().Err(err).Msg("content export failed")
	}
	logger.Info().Int("rows", n).Msg("exported content")
}
