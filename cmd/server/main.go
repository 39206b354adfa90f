// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package main is the entry point for the Encore server.

Encore continues playlists: given seed tracks it ranks the rest of a track
catalog by audio-feature similarity to the seeds, boosted by artist hints,
shared genres and popularity.

# Startup

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Catalog: read from CSV, Parquet, DuckDB or SQLite and cleaned
 4. Engine and track search built over the immutable catalog
 5. Supervisor tree: stats reporter and HTTP server under suture v4

The catalog is loaded once; restarting the process picks up a new dataset.

# Supervisor Tree

	encore
	├── engine-layer
	│   └── engine-stats
	└── api-layer
	    └── http-server

# Signals

SIGINT and SIGTERM stop the tree. The HTTP server stops accepting
connections and drains in-flight requests within HTTP_SHUTDOWN_TIMEOUT.

# Example

	export CATALOG_PATH=/data/tracks.csv
	export HTTP_PORT=8080
	./encore
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/encore/internal/api"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/supervisor"
	"github.com/tomtom215/encore/internal/supervisor/services"
)

const (
	idleTimeout   = 60 * time.Second
	statsInterval = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("feature_weighting", cfg.Recommend.FeatureWeighting).
		Msg("Starting Encore")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := initEngine(ctx, cfg, logging.WithComponent("engine"))
	if err != nil {
		stop()
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	handler := api.NewHandler(components.Engine, components.Searcher, cfg)
	defer handler.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg).SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  idleTimeout,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddEngineService(services.NewStatsService(components.Engine, statsInterval, logging.WithComponent("stats")))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Encore stopped")
}
