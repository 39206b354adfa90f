// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/database"
	"github.com/tomtom215/encore/internal/metrics"
	"github.com/tomtom215/encore/internal/recommend"
	"github.com/tomtom215/encore/internal/search"
)

// EngineComponents are the read-only serving components built at startup.
type EngineComponents struct {
	Engine   *recommend.Engine
	Searcher *search.Searcher
}

// initEngine reads the catalog table, builds the catalog and wraps it in the
// engine and searcher. Any failure is fatal to startup.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func initEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*EngineComponents, error) {
	logger.Info().
		Str("driver", cfg.Catalog.Driver).
		Str("path", cfg.Catalog.Path).
		Str("table", cfg.Catalog.Table).
		Msg("Loading catalog")

	start := time.Now()
	table, err := database.LoadCatalogTable(ctx, &cfg.Catalog, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog table: %w", err)
	}

	cat, err := catalog.Build(table, logger)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	stats := cat.Stats()
	metrics.RecordCatalogBuild(stats.Tracks, stats.MissingRequired, stats.Duplicates, stats.Coerced, time.Since(start))

	engine, err := recommend.NewEngineFromCatalog(cat, engineConfig(&cfg.Recommend), logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	logger.Info().
		Int("tracks", cat.Len()).
		Int("genres", len(cat.Genres())).
		Dur("duration", time.Since(start)).
		Msg("Recommendation engine ready")

	return &EngineComponents{
		Engine: engine,
		Searcher: search.New(cat, search.Config{
			Threshold:  cfg.Search.Threshold,
			MaxResults: cfg.Search.MaxResults,
		}),
	}, nil
}

func engineConfig(rc *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		ArtistBoost:        rc.ArtistBoost,
		GenreBoost:         rc.GenreBoost,
		PopularityTilt:     rc.PopularityTilt,
		OversampleFactor:   rc.OversampleFactor,
		PoolFloor:          rc.PoolFloor,
		FeatureWeighting:   rc.FeatureWeighting,
		WeightingSharpness: rc.WeightingSharpness,
	}
}
