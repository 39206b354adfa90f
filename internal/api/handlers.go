// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/encore/internal/cache"
	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/recommend"
	"github.com/tomtom215/encore/internal/search"
	"github.com/tomtom215/encore/internal/validation"
)

// recommendationCacheName labels the response cache in metrics.
const recommendationCacheName = "recommendations"

// Handler serves the API endpoints. The engine, searcher and catalog are
// read-only after construction, so a Handler is safe for concurrent use.
type Handler struct {
	engine    *recommend.Engine
	searcher  *search.Searcher
	cfg       *config.Config
	respCache *cache.Cache[*recommend.Response]
	startTime time.Time
}

// NewHandler creates the API handler. When the response cache is enabled
// the caller must Close the handler to stop its cleanup goroutine.
func NewHandler(engine *recommend.Engine, searcher *search.Searcher, cfg *config.Config) *Handler {
	h := &Handler{
		engine:    engine,
		searcher:  searcher,
		cfg:       cfg,
		startTime: time.Now(),
	}
	if cfg.Cache.Enabled {
		h.respCache = cache.New[*recommend.Response](cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	return h
}

// Close releases the response cache.
func (h *Handler) Close() {
	if h.respCache != nil {
		h.respCache.Close()
	}
}

func (h *Handler) catalog() *catalog.Catalog {
	return h.engine.Catalog()
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), map[string]any{
		"status":         "alive",
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether a non-empty catalog is loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil || h.catalog().Len() == 0 {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Catalog not loaded", nil, nil)
		return
	}
	respondSuccess(w, r, time.Now(), map[string]any{
		"status": "ready",
		"tracks": h.catalog().Len(),
	})
}

// CatalogInfo returns catalog size, cleaning statistics, the fitted scaler,
// genre counts and engine counters.
func (h *Handler) CatalogInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cat := h.catalog()
	scaler := cat.Scaler()

	scales := make([]FeatureScale, catalog.Dim)
	for i, name := range catalog.FeatureNames {
		scales[i] = FeatureScale{Feature: name, Mean: scaler.Mean[i], Std: scaler.Std[i]}
	}

	respondSuccess(w, r, start, CatalogInfo{
		Tracks: cat.Len(),
		Build:  cat.Stats(),
		Scaler: scales,
		Genres: cat.Genres(),
		Engine: h.engine.Stats(),
		Config: h.engine.Config(),
	})
}

// validate runs struct validation and writes a 400 on failure.
func validate(w http.ResponseWriter, r *http.Request, req any) bool {
	if verr := validation.ValidateStruct(req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return false
	}
	return true
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
