// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"fmt"

	"github.com/tomtom215/encore/internal/profile"
	"github.com/tomtom215/encore/internal/ranking"
)

// Default candidate pool sizing.
const (
	DefaultOversampleFactor = 20
	DefaultPoolFloor        = 1000
)

// Config holds the tunable constants of the engine.
type Config struct {
	// ArtistBoost multiplies candidates by a hinted artist.
	ArtistBoost float64 `json:"artist_boost"`

	// GenreBoost multiplies candidates sharing a seed genre.
	GenreBoost float64 `json:"genre_boost"`

	// PopularityTilt scales the (1 + tilt*popularity) multiplier.
	PopularityTilt float64 `json:"popularity_tilt"`

	// OversampleFactor and PoolFloor size the candidate pool as
	// min(max(n*OversampleFactor, PoolFloor), catalog size), widened by the
	// number of resolved seeds so seed exclusion cannot shorten the result.
	OversampleFactor int `json:"oversample_factor"`
	PoolFloor        int `json:"pool_floor"`

	// FeatureWeighting enables seed-consistency feature weights in the
	// similarity search. Off by default.
	FeatureWeighting bool `json:"feature_weighting"`

	// WeightingSharpness is k in exp(-k * std).
	WeightingSharpness float64 `json:"weighting_sharpness"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() *Config {
	return &Config{
		ArtistBoost:        ranking.DefaultArtistBoost,
		GenreBoost:         ranking.DefaultGenreBoost,
		PopularityTilt:     ranking.DefaultPopularityTilt,
		OversampleFactor:   DefaultOversampleFactor,
		PoolFloor:          DefaultPoolFloor,
		FeatureWeighting:   false,
		WeightingSharpness: profile.DefaultSharpness,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.boosts().Validate(); err != nil {
		return err
	}
	if c.OversampleFactor < 1 {
		return fmt.Errorf("oversample factor must be at least 1, got %d", c.OversampleFactor)
	}
	if c.PoolFloor < 1 {
		return fmt.Errorf("pool floor must be at least 1, got %d", c.PoolFloor)
	}
	if c.FeatureWeighting && !(c.WeightingSharpness > 0) {
		return fmt.Errorf("weighting sharpness must be positive, got %v", c.WeightingSharpness)
	}
	return nil
}

func (c *Config) boosts() ranking.Boosts {
	return ranking.Boosts{
		Artist:         c.ArtistBoost,
		Genre:          c.GenreBoost,
		PopularityTilt: c.PopularityTilt,
	}
}
