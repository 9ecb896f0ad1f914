package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	csvadapter "github.com/couchcryptid/ballpark-weather-etl/internal/adapter/csv"
	"github.com/couchcryptid/ballpark-weather-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/ballpark-weather-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ballpark-weather-etl/internal/adapter/meteostat"
	"github.com/couchcryptid/ballpark-weather-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/ballpark-weather-etl/internal/config"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
	"github.com/couchcryptid/ballpark-weather-etl/internal/pipeline"
	"github.com/couchcryptid/ballpark-weather-etl/internal/registry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	reg, err := registry.Load(cfg.LocationsFile)
	if err != nil {
		return err
	}
	logger.Info("registry loaded", "locations", len(reg.Locations), "overrides", len(reg.Overrides))

	client := meteostat.NewClient(cfg.MeteostatBaseURL, cfg.MeteostatAPIKey, cfg.MeteostatTimeout, metrics, logger)
	lookup := meteostat.NewCachedLookup(client, cfg.CacheTTL, metrics)
	directory := meteostat.NewDirectory(lookup, cfg.NearbyPoolSize, logger)
	resolver := pipeline.NewResolver(reg, directory, client, cfg.StationCandidates, metrics, logger)

	sinks := []pipeline.Sink{{Name: "csv", Loader: csvadapter.NewWriter(cfg.OutputPath)}}

	if cfg.SQLitePath != "" {
		store, err := sqlite.NewStore(cfg.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("sqlite close error", "error", err)
			}
		}()
		sinks = append(sinks, pipeline.Sink{Name: "sqlite", Loader: store})
	}

	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: writer})
	}

	p := pipeline.New(resolver, reg, sinks, logger, metrics, pipeline.Options{
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		Workers:   cfg.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	table, err := p.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("export written",
		"path", cfg.OutputPath,
		"rows", len(table.Rows),
		"run_id", table.RunID,
		"sinks", len(sinks),
	)
	return nil
}
