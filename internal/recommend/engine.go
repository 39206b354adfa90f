// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package recommend is the playlist continuation engine.
//
// An Engine owns an immutable catalog and similarity index built once at
// construction. Each request builds a taste profile from the seed tracks,
// retrieves an oversampled candidate pool of the nearest tracks and ranks it
// with artist, genre and popularity boosts:
//
//	eng, err := recommend.NewEngine(table, recommend.DefaultConfig(), logger)
//	ids, err := eng.GetRecommendations(seeds, 10, map[string]struct{}{"Daft Punk": {}})
//
// When none of the seeds are in the catalog the engine falls back to the
// most popular tracks. Engines hold no global state; independent engines can
// coexist, and one engine serves concurrent requests without locking.
package recommend

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/index"
	"github.com/tomtom215/encore/internal/profile"
	"github.com/tomtom215/encore/internal/ranking"
)

// ErrInvalidArgument is returned for requests that cannot be served, such as
// a non-positive result count.
var ErrInvalidArgument = errors.New("invalid argument")

// Engine produces playlist continuations. It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	catalog  *catalog.Catalog
	index    *index.Index
	profiles *profile.Builder
	ranker   *ranking.Ranker

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	rejectedCount atomic.Int64
}

// NewEngine builds the catalog from table and returns an engine over it.
// Catalog integrity problems are returned as catalog.ErrDataIntegrity.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(table *catalog.Table, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = logger.With().Str("component", "recommend").Logger()
	cat, err := catalog.Build(table, logger)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return newEngine(cat, cfg, logger), nil
}

// NewEngineFromCatalog returns an engine over an already built catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngineFromCatalog(cat *catalog.Catalog, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("%w: empty catalog", catalog.ErrDataIntegrity)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return newEngine(cat, cfg, logger.With().Str("component", "recommend").Logger()), nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEngine(cat *catalog.Catalog, cfg *Config, logger zerolog.Logger) *Engine {
	cfgCopy := *cfg
	e := &Engine{
		config:   &cfgCopy,
		logger:   logger,
		catalog:  cat,
		index:    index.New(cat),
		profiles: profile.NewBuilder(cat),
		ranker:   ranking.New(cat, cfgCopy.boosts()),
	}
	e.logger.Info().
		Int("tracks", cat.Len()).
		Float64("artist_boost", cfgCopy.ArtistBoost).
		Float64("genre_boost", cfgCopy.GenreBoost).
		Float64("popularity_tilt", cfgCopy.PopularityTilt).
		Bool("feature_weighting", cfgCopy.FeatureWeighting).
		Msg("Recommendation engine ready")
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return *e.config }

// GetRecommendations returns up to n track identifiers continuing the seed
// playlist, most relevant first. The result has exactly
// min(n, catalog size - resolved seeds) entries, contains no seed and no
// repeats, and is identical for identical inputs.
//
// targetArtists may be nil. n must be positive, otherwise ErrInvalidArgument
// is returned.
func (e *Engine) GetRecommendations(seedIDs []string, n int, targetArtists map[string]struct{}) ([]string, error) {
	resp, err := e.recommend(seedIDs, n, targetArtists, "")
	if err != nil {
		return nil, err
	}
	return resp.IDs(), nil
}

// Recommend serves a Request and returns scored items with metadata.
func (e *Engine) Recommend(req *Request) (*Response, error) {
	if req == nil {
		e.rejectedCount.Add(1)
		return nil, fmt.Errorf("%w: nil request", ErrInvalidArgument)
	}
	var artists map[string]struct{}
	if len(req.TargetArtists) > 0 {
		artists = make(map[string]struct{}, len(req.TargetArtists))
		for _, a := range req.TargetArtists {
			artists[a] = struct{}{}
		}
	}
	return e.recommend(req.TrackIDs, req.N, artists, req.RequestID)
}

func (e *Engine) recommend(seedIDs []string, n int, artists map[string]struct{}, requestID string) (*Response, error) {
	if n <= 0 {
		e.rejectedCount.Add(1)
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}
	e.requestCount.Add(1)
	start := time.Now()

	p := e.profiles.Build(seedIDs)
	resp := &Response{
		Metadata: ResponseMetadata{
			RequestID:     requestID,
			ResolvedSeeds: len(p.Rows),
			MissingSeeds:  p.Missing,
		},
	}

	if !p.Resolved() {
		e.fallbackCount.Add(1)
		resp.Metadata.Fallback = true
		rows := e.catalog.TopByPopularity(n, nil)
		resp.TotalCandidates = e.catalog.Len()
		resp.Items = make([]ScoredItem, 0, len(rows))
		for _, row := range rows {
			item := e.item(row)
			item.Score = item.Popularity
			resp.Items = append(resp.Items, item)
		}
	} else {
		k := index.PoolSize(n, e.catalog.Len(), e.config.OversampleFactor, e.config.PoolFloor)
		k = min(k+len(p.Rows), e.catalog.Len())

		var pool []index.Neighbor
		if e.config.FeatureWeighting && len(p.Rows) > 1 {
			weights := e.profiles.FeatureWeights(p.Rows, e.config.WeightingSharpness)
			pool = e.index.QueryWeighted(p.Vector, weights, k)
			resp.Metadata.FeatureWeighting = true
		} else {
			pool = e.index.Query(p.Vector, k)
		}
		resp.TotalCandidates = len(pool)

		ranked := e.ranker.Rank(pool, ranking.Input{
			SeedRows:      p.SeedRows(),
			TargetArtists: artists,
			SeedGenres:    p.Genres,
		}, n)
		resp.Items = make([]ScoredItem, 0, len(ranked))
		for _, r := range ranked {
			item := e.item(r.Row)
			item.Score = r.Score
			item.Similarity = r.Base
			item.ArtistMatch = r.ArtistMatch
			item.GenreMatch = r.GenreMatch
			resp.Items = append(resp.Items, item)
		}
	}

	resp.Metadata.Timestamp = time.Now()
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()

	e.logger.Debug().
		Str("request_id", requestID).
		Int("seeds", len(seedIDs)).
		Int("resolved", len(p.Rows)).
		Int("n", n).
		Int("pool", resp.TotalCandidates).
		Int("returned", len(resp.Items)).
		Bool("fallback", resp.Metadata.Fallback).
		Dur("latency", time.Since(start)).
		Msg("Recommendations computed")

	return resp, nil
}

func (e *Engine) item(row int) ScoredItem {
	t := e.catalog.Track(row)
	return ScoredItem{
		TrackID:    t.ID,
		Name:       t.Name,
		Artists:    t.Artists,
		Album:      t.Album,
		Genre:      t.Genre,
		Popularity: e.catalog.PopularityScoreOf(row),
	}
}

// Stats returns engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:  e.requestCount.Load(),
		Fallbacks: e.fallbackCount.Load(),
		Rejected:  e.rejectedCount.Load(),
		Tracks:    e.catalog.Len(),
	}
}
