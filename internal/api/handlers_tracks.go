// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/metrics"
	"github.com/tomtom215/encore/internal/search"
)

// Track returns one catalog track with its raw and normalized features.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	trackID := chi.URLParam(r, "trackID")

	cat := h.catalog()
	track, err := cat.Lookup(trackID)
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Track not found", map[string]any{"track_id": trackID}, nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to look up track", nil, err)
		return
	}
	vec, err := cat.VectorOf(trackID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to look up track", nil, err)
		return
	}

	features := make(map[string]float64, catalog.Dim)
	for i, name := range catalog.FeatureNames {
		features[name] = track.Features[i]
	}
	respondSuccess(w, r, start, TrackDetail{
		TrackSummary: newTrackSummary(&track),
		Features:     features,
		Vector:       vec,
	})
}

// SearchTracks finds tracks by title and/or artist text.
func (h *Handler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), map[string]any{"field": "limit"}, nil)
		return
	}
	req := SearchRequest{
		Q:      strings.TrimSpace(r.URL.Query().Get("q")),
		Artist: strings.TrimSpace(r.URL.Query().Get("artist")),
		Limit:  limit,
	}
	if !validate(w, r, &req) {
		return
	}

	hits := h.searcher.Search(search.Query{Text: req.Q, Artist: req.Artist, Limit: req.Limit})
	metrics.RecordSearch(len(hits))

	respondSuccess(w, r, start, SearchResult{
		Query:   req.Q,
		Artist:  req.Artist,
		Count:   len(hits),
		Matches: h.searchMatches(hits),
	})
}

// ResolveTrack maps a title and artist pair to the single best catalog track.
func (h *Handler) ResolveTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := ResolveRequest{
		Title:  strings.TrimSpace(r.URL.Query().Get("title")),
		Artist: strings.TrimSpace(r.URL.Query().Get("artist")),
	}
	if !validate(w, r, &req) {
		return
	}

	hit, ok := h.searcher.Resolve(req.Title, req.Artist)
	if !ok {
		metrics.RecordSearch(0)
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No matching track",
			map[string]any{"title": req.Title, "artist": req.Artist}, nil)
		return
	}
	metrics.RecordSearch(1)
	respondSuccess(w, r, start, h.searchMatches([]search.Match{hit})[0])
}

// PopularTracks lists the most popular tracks, optionally within one genre.
func (h *Handler) PopularTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := intParam(r, "limit", h.cfg.API.DefaultLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), map[string]any{"field": "limit"}, nil)
		return
	}
	req := PopularRequest{
		Genre: strings.TrimSpace(r.URL.Query().Get("genre")),
		Limit: limit,
	}
	if !validate(w, r, &req) {
		return
	}

	cat := h.catalog()
	var skip func(row int) bool
	if req.Genre != "" {
		skip = func(row int) bool { return cat.GenreOf(row) != req.Genre }
	}
	rows := cat.TopByPopularity(req.Limit, skip)

	tracks := make([]TrackSummary, len(rows))
	for i, row := range rows {
		t := cat.Track(row)
		tracks[i] = newTrackSummary(&t)
	}
	respondSuccess(w, r, start, map[string]any{
		"genre":  req.Genre,
		"count":  len(tracks),
		"tracks": tracks,
	})
}

func (h *Handler) searchMatches(hits []search.Match) []SearchMatch {
	cat := h.catalog()
	out := make([]SearchMatch, len(hits))
	for i, hit := range hits {
		t := cat.Track(hit.Row)
		out[i] = SearchMatch{TrackSummary: newTrackSummary(&t), Score: hit.Score}
	}
	return out
}
