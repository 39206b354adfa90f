// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Command evaluate measures recommendation quality offline.

It loads the catalog named by the usual configuration (config.yaml and
environment), builds the engine, and scores each playlist case with NDCG@k:
the engine is asked for k continuations of the case's seeds and rewarded for
returning the held-out tracks near the top.

The cases file is a JSON array. Each entry either lists seeds and removed
tracks explicitly, or gives a whole playlist whose last -holdout tracks are
removed:

	[
	  {"name": "road trip", "seeds": ["a", "b"], "removed": ["c"]},
	  {"name": "focus", "playlist": ["d", "e", "f", "g"], "target_artists": ["Nils Frahm"]}
	]

Usage:

	evaluate -cases cases.json [-k 5] [-holdout 1] [-out report.json]
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/database"
	"github.com/tomtom215/encore/internal/evaluation"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/recommend"
)

// caseSpec is one entry of the cases file.
type caseSpec struct {
	Name          string   `json:"name"`
	Seeds         []string `json:"seeds"`
	Removed       []string `json:"removed"`
	Playlist      []string `json:"playlist"`
	TargetArtists []string `json:"target_artists"`
}

func main() {
	casesPath := flag.String("cases", "", "path to the JSON cases file (required)")
	k := flag.Int("k", evaluation.DefaultK, "recommendations scored per case")
	holdout := flag.Int("holdout", 1, "tracks held out from each playlist entry")
	outPath := flag.String("out", "", "write the full report as JSON to this path")
	flag.Parse()

	if *casesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.WithComponent("evaluate")

	cases, err := readCases(*casesPath, *holdout)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *casesPath).Msg("Failed to read cases")
	}

	engine, err := loadEngine(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build engine")
	}

	report, err := evaluation.New(engine, *k, logger).Run(cases)
	if err != nil {
		logger.Fatal().Err(err).Msg("Evaluation failed")
	}

	if *outPath != "" {
		if err := writeReport(*outPath, report); err != nil {
			logger.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write report")
		}
		logger.Info().Str("path", *outPath).Msg("Report written")
	}
}

// readCases parses the cases file, expanding playlist entries with HoldOut.
func readCases(path string, holdout int) ([]evaluation.Case, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied flag
	if err != nil {
		return nil, err
	}
	var specs []caseSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cases := make([]evaluation.Case, 0, len(specs))
	for i, s := range specs {
		if len(s.Playlist) == 0 {
			cases = append(cases, evaluation.Case{
				Name:          s.Name,
				Seeds:         s.Seeds,
				Removed:       s.Removed,
				TargetArtists: s.TargetArtists,
			})
			continue
		}
		c, err := evaluation.HoldOut(s.Name, s.Playlist, holdout, s.TargetArtists)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func loadEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	start := time.Now()
	table, err := database.LoadCatalogTable(ctx, &cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Build(table, logger)
	if err != nil {
		return nil, err
	}
	rc := cfg.Recommend
	engine, err := recommend.NewEngineFromCatalog(cat, &recommend.Config{
		ArtistBoost:        rc.ArtistBoost,
		GenreBoost:         rc.GenreBoost,
		PopularityTilt:     rc.PopularityTilt,
		OversampleFactor:   rc.OversampleFactor,
		PoolFloor:          rc.PoolFloor,
		FeatureWeighting:   rc.FeatureWeighting,
		WeightingSharpness: rc.WeightingSharpness,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("tracks", cat.Len()).Dur("duration", time.Since(start)).Msg("Engine built")
	return engine, nil
}

func writeReport(path string, report *evaluation.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
