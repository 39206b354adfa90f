// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package config loads Encore's runtime configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file (CONFIG_PATH or config.yaml), then environment variables.
// Environment variables always win.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Search    SearchConfig    `koanf:"search"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig selects where the track catalog is read from.
type CatalogConfig struct {
	// Driver is the database/sql driver used to read the catalog: duckdb or sqlite3.
	Driver string `koanf:"driver"`

	// Path is a CSV or Parquet file (duckdb only) or a database file.
	Path string `koanf:"path"`

	// Table names the table holding tracks inside a database file.
	// When empty with the duckdb driver, Path is read directly as CSV or Parquet.
	Table string `koanf:"table"`
}

// RecommendConfig holds the ranking constants of the recommendation engine.
type RecommendConfig struct {
	// ArtistBoost multiplies the score of candidates by a hinted artist.
	ArtistBoost float64 `koanf:"artist_boost"`

	// GenreBoost multiplies the score of candidates sharing a seed genre.
	GenreBoost float64 `koanf:"genre_boost"`

	// PopularityTilt scales the (1 + tilt*popularity) multiplier.
	PopularityTilt float64 `koanf:"popularity_tilt"`

	// OversampleFactor and PoolFloor size the candidate pool:
	// min(max(n*OversampleFactor, PoolFloor), catalog size).
	OversampleFactor int `koanf:"oversample_factor"`
	PoolFloor        int `koanf:"pool_floor"`

	// FeatureWeighting enables per-feature weights derived from seed consistency.
	FeatureWeighting bool `koanf:"feature_weighting"`

	// WeightingSharpness is k in exp(-k * std).
	WeightingSharpness float64 `koanf:"weighting_sharpness"`
}

// SearchConfig tunes fuzzy track search.
type SearchConfig struct {
	// Threshold is the minimum Jaro-Winkler similarity for a fuzzy title match.
	Threshold float64 `koanf:"threshold"`

	// MaxResults caps the number of hits returned per query.
	MaxResults int `koanf:"max_results"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig holds request limits for the HTTP API.
type APIConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
	MaxSeeds     int `koanf:"max_seeds"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// CacheConfig controls the recommendation response cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
