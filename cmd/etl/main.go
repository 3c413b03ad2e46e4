package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flu-mobility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/flu-mobility-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/flu-mobility-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flu-mobility-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/flu-mobility-etl/internal/config"
	"github.com/couchcryptid/flu-mobility-etl/internal/observability"
	"github.com/couchcryptid/flu-mobility-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("etl exited with error", "error", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until a shutdown signal.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Every downstream stage reads the state map from disk; without it nothing can run.
	path, reason, err := csvfile.ReconcileStateFIPSMap(cfg.CacheRoot, logger)
	if err != nil {
		return fmt.Errorf("materialize state fips map in %s: %w", cfg.CacheRoot, err)
	}
	if reason != csvfile.ReasonNone {
		metrics.StateMapWrites.WithLabelValues(string(reason)).Inc()
	}
	logger.Info("state fips map ready", "path", path)

	loaders, closeSinks, err := openSinks(cfg, logger)
	defer closeSinks()
	if err != nil {
		return err
	}

	p := pipeline.New(csvfile.NewFileSource(cfg.MobilityPath), loaders, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Aggregate mobility once; the snapshot is served until shutdown.
	if cfg.MobilityPath != "" {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("MOBILITY_PATH not set, serving location lookups only")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openSinks opens the configured inflow loaders. The returned close func
// releases every sink opened so far and is safe to call when err is non-nil.
func openSinks(cfg *config.Config, logger *slog.Logger) ([]pipeline.InflowLoader, func(), error) {
	var loaders []pipeline.InflowLoader
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, func() { closeWith(logger, "kafka writer", writer.Close) })
		loaders = append(loaders, writer)
		logger.Info("kafka inflow sink enabled", "topic", cfg.KafkaInflowTopic)
	}
	if cfg.InflowDBPath != "" {
		store, err := sqlite.Open(cfg.InflowDBPath, logger)
		if err != nil {
			return nil, closeAll, fmt.Errorf("open inflow db %s: %w", cfg.InflowDBPath, err)
		}
		closers = append(closers, func() { closeWith(logger, "inflow db", store.Close) })
		loaders = append(loaders, store)
		logger.Info("sqlite inflow sink enabled", "path", cfg.InflowDBPath)
	}
	return loaders, closeAll, nil
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}
