// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package config

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Driver {
	case "duckdb":
	case "sqlite3":
		if c.Catalog.Table == "" {
			return fmt.Errorf("CATALOG_TABLE is required when CATALOG_DRIVER=sqlite3")
		}
	default:
		return fmt.Errorf("CATALOG_DRIVER must be 'duckdb' or 'sqlite3', got %q", c.Catalog.Driver)
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if !positiveFinite(r.ArtistBoost) {
		return fmt.Errorf("RECOMMEND_ARTIST_BOOST must be a positive number, got %v", r.ArtistBoost)
	}
	if !positiveFinite(r.GenreBoost) {
		return fmt.Errorf("RECOMMEND_GENRE_BOOST must be a positive number, got %v", r.GenreBoost)
	}
	if r.PopularityTilt < 0 || math.IsNaN(r.PopularityTilt) || math.IsInf(r.PopularityTilt, 0) {
		return fmt.Errorf("RECOMMEND_POPULARITY_TILT must be >= 0, got %v", r.PopularityTilt)
	}
	if r.OversampleFactor < 1 {
		return fmt.Errorf("RECOMMEND_OVERSAMPLE_FACTOR must be at least 1, got %d", r.OversampleFactor)
	}
	if r.PoolFloor < 1 {
		return fmt.Errorf("RECOMMEND_POOL_FLOOR must be at least 1, got %d", r.PoolFloor)
	}
	if r.FeatureWeighting && !positiveFinite(r.WeightingSharpness) {
		return fmt.Errorf("RECOMMEND_WEIGHTING_SHARPNESS must be positive when feature weighting is enabled")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.Threshold <= 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be in (0, 1], got %v", c.Search.Threshold)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be at least 1, got %d", c.Search.MaxResults)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxLimit < 1 {
		return fmt.Errorf("API_MAX_LIMIT must be at least 1, got %d", c.API.MaxLimit)
	}
	if c.API.DefaultLimit < 1 || c.API.DefaultLimit > c.API.MaxLimit {
		return fmt.Errorf("API_DEFAULT_LIMIT must be between 1 and API_MAX_LIMIT (%d), got %d",
			c.API.MaxLimit, c.API.DefaultLimit)
	}
	if c.API.MaxSeeds < 1 {
		return fmt.Errorf("API_MAX_SEEDS must be at least 1, got %d", c.API.MaxSeeds)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1, got %d", c.Cache.MaxEntries)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
