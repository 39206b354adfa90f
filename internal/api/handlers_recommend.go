// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/encore/internal/cache"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/metrics"
	"github.com/tomtom215/encore/internal/middleware"
	"github.com/tomtom215/encore/internal/recommend"
)

// Recommendations continues a seed playlist.
//
// Unknown seed ids are ignored and reported in metadata.missing_seeds. When
// no seed resolves the most popular tracks are returned and
// metadata.fallback is true. Identical requests are answered from the
// response cache while it holds them.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordRecommendationFailure(true)
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON request body", nil, nil)
		return
	}
	if !validate(w, r, &req) {
		metrics.RecordRecommendationFailure(true)
		return
	}

	n := h.cfg.API.DefaultLimit
	if req.N != nil {
		n = *req.N
	}
	if n > h.cfg.API.MaxLimit {
		metrics.RecordRecommendationFailure(true)
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidArgument,
			fmt.Sprintf("n must be at most %d", h.cfg.API.MaxLimit), map[string]any{"field": "n"}, nil)
		return
	}
	if len(req.TrackIDs) > h.cfg.API.MaxSeeds {
		metrics.RecordRecommendationFailure(true)
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidArgument,
			fmt.Sprintf("track_ids must have at most %d items", h.cfg.API.MaxSeeds), map[string]any{"field": "track_ids"}, nil)
		return
	}

	engineReq := &recommend.Request{
		TrackIDs:      req.TrackIDs,
		N:             n,
		TargetArtists: req.TargetArtists,
	}
	key := cache.GenerateKey("recommendations", engineReq)

	if h.respCache != nil {
		cached, ok := h.respCache.Get(key)
		metrics.RecordCacheLookup(recommendationCacheName, ok, h.respCache.Len())
		if ok {
			out := *cached
			out.Metadata.RequestID = middleware.GetRequestID(r.Context())
			respondSuccessMeta(w, r, start, newRecommendationResult(&out), true)
			return
		}
	}

	engineReq.RequestID = middleware.GetRequestID(r.Context())
	resp, err := h.engine.Recommend(engineReq)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidArgument) {
			metrics.RecordRecommendationFailure(true)
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error(), map[string]any{"field": "n"}, nil)
			return
		}
		metrics.RecordRecommendationFailure(false)
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute recommendations", nil, err)
		return
	}

	metrics.RecordRecommendation(resp.Metadata.Fallback, len(req.TrackIDs), resp.Metadata.ResolvedSeeds,
		resp.TotalCandidates, time.Since(start))
	logging.Ctx(r.Context()).Debug().
		Int("seeds", len(req.TrackIDs)).
		Int("resolved", resp.Metadata.ResolvedSeeds).
		Int("n", n).
		Int("returned", len(resp.Items)).
		Bool("fallback", resp.Metadata.Fallback).
		Msg("Recommendations computed")

	if h.respCache != nil {
		h.respCache.Set(key, resp)
	}
	respondSuccess(w, r, start, newRecommendationResult(resp))
}
