package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wind-yield/internal/adapter/gridfile"
	"github.com/couchcryptid/wind-yield/internal/adapter/gwa"
	"github.com/couchcryptid/wind-yield/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wind-yield/internal/adapter/kafka"
	"github.com/couchcryptid/wind-yield/internal/config"
	"github.com/couchcryptid/wind-yield/internal/domain"
	"github.com/couchcryptid/wind-yield/internal/observability"
	"github.com/couchcryptid/wind-yield/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source, sourceName, err := newGridSource(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to load climate grid", "error", err, "path", cfg.GWCFile)
		os.Exit(1)
	}

	assessor := pipeline.NewAssessor(source, domain.AssessOptions{
		AirDensity:  cfg.AirDensity,
		Concurrency: cfg.TurbineConcurrency,
		Source:      sourceName,
	}, metrics, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, assessor, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, assessor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newGridSource serves a static grid when GWC_FILE is set and the cached
// Global Wind Atlas client otherwise.
func newGridSource(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.GridSource, string, error) {
	if cfg.GWCFile != "" {
		grid, err := gridfile.Load(cfg.GWCFile)
		if err != nil {
			return nil, "", err
		}
		logger.Info("static climate grid loaded",
			"path", cfg.GWCFile,
			"latitude", grid.Latitude(),
			"longitude", grid.Longitude(),
			"sectors", grid.Sectors(),
		)
		return domain.NewStaticGridSource(grid), "file", nil
	}

	client := gwa.NewClient(cfg.GWABaseURL, cfg.GWATimeout, cfg.GWABreakerTimeout, metrics, logger)
	logger.Info("global wind atlas enabled",
		"base_url", cfg.GWABaseURL,
		"cache_size", cfg.GWACacheSize,
		"timeout", cfg.GWATimeout,
	)
	return gwa.NewCachedSource(client, cfg.GWACacheSize, metrics), "gwa", nil
}
