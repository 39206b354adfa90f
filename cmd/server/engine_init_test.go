// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/database"
	"github.com/tomtom215/encore/internal/search"
	"github.com/tomtom215/encore/internal/testinfra"
)

func TestInitEngineFromCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testinfra.WriteCSV(t, dir, "tracks.csv", testinfra.Table(
		testinfra.TrackSpec{ID: "a", Artists: "Alpha", Genre: "rock", Popularity: 40, Features: testinfra.Flat(0.2)},
		testinfra.TrackSpec{ID: "b", Artists: "Beta", Genre: "rock", Popularity: 60, Features: testinfra.Flat(0.3)},
		testinfra.TrackSpec{ID: "c", Artists: "Gamma", Genre: "jazz", Popularity: 80, Features: testinfra.Flat(0.9)},
	))

	cfg := &config.Config{
		Catalog: config.CatalogConfig{Driver: database.DriverDuckDB, Path: path},
		Recommend: config.RecommendConfig{
			ArtistBoost: 1.5, GenreBoost: 1.1, PopularityTilt: 0.1,
			OversampleFactor: 20, PoolFloor: 1000, WeightingSharpness: 5,
		},
		Search: config.SearchConfig{Threshold: 0.85, MaxResults: 10},
	}

	comp, err := initEngine(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initEngine: %v", err)
	}
	if got := comp.Engine.Catalog().Len(); got != 3 {
		t.Errorf("catalog size = %d, want 3", got)
	}
	ids, err := comp.Engine.GetRecommendations([]string{"a"}, 2, nil)
	if err != nil || len(ids) != 2 || ids[0] != "b" {
		t.Errorf("recommendations = %v, %v; want b first", ids, err)
	}
	if hits := comp.Searcher.Search(search.Query{Text: "gamma"}); len(hits) != 1 || hits[0].TrackID != "c" {
		t.Errorf("search hits = %+v", hits)
	}

	cfg.Catalog.Path = filepath.Join(dir, "missing.csv")
	if _, err := initEngine(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for missing catalog file")
	}
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()

	rc := config.RecommendConfig{
		ArtistBoost: 2, GenreBoost: 1.2, PopularityTilt: 0.3,
		OversampleFactor: 5, PoolFloor: 50, FeatureWeighting: true, WeightingSharpness: 3,
	}
	got := engineConfig(&rc)
	if got.ArtistBoost != 2 || got.GenreBoost != 1.2 || got.PopularityTilt != 0.3 ||
		got.OversampleFactor != 5 || got.PoolFloor != 50 || !got.FeatureWeighting || got.WeightingSharpness != 3 {
		t.Errorf("engineConfig = %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
