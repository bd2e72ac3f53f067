package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zatekoja/medlibrary/internal/adapters/search"
	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collections before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(observability.LoggerOptions{
		Service:     "medlibrary-indexer",
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
	})
	logger := observability.GetLogger()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			logger.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			logger.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	for {
		if err := indexOnce(ctx, cfg, metrics, reset || os.Getenv("RESET_TYPESENSE") == "true"); err != nil {
			logger.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		logger.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			logger.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, reset bool) error {
	logger := observability.GetLogger()

	lib, err := catalog.Default()
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}
	adapter := search.NewTypesenseAdapter(tsClient, metrics)

	if reset {
		logger.Info().Msg("reset requested, deleting collections")
		adapter.Reset(ctx)
	}

	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	total := 0
	for _, store := range lib.Stores() {
		n, err := adapter.IndexProcedures(ctx, store.Name(), store.All())
		if err != nil {
			return err
		}
		logger.Info().Str("store", string(store.Name())).Int("indexed", n).Msg("indexed procedures")
		total += n
	}

	n, err := adapter.IndexContent(ctx, lib.Content().All())
	if err != nil {
		return err
	}
	logger.Info().Int("procedures", total).Int("content", n).Msg("indexing complete")
	return nil
}
