// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/recommend"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// RecommendationRequest is the body of POST /api/v1/recommendations.
// A missing n uses the configured default; n <= 0 is rejected by the engine.
type RecommendationRequest struct {
	TrackIDs      []string `json:"track_ids" validate:"dive,trackid"`
	N             *int     `json:"n"`
	TargetArtists []string `json:"target_artists,omitempty" validate:"max=100,dive,min=1,max=256"`
}

// SearchRequest holds the query parameters of GET /api/v1/tracks/search.
type SearchRequest struct {
	Q      string `json:"q" validate:"required_without=Artist,max=200"`
	Artist string `json:"artist" validate:"max=200"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
}

// PopularRequest holds the query parameters of GET /api/v1/tracks/popular.
type PopularRequest struct {
	Genre string `json:"genre" validate:"max=100"`
	Limit int    `json:"limit" validate:"min=0,max=500"`
}

// RecommendationResult is the data of a recommendation response.
type RecommendationResult struct {
	TrackIDs        []string                   `json:"track_ids"`
	Items           []recommend.ScoredItem     `json:"items"`
	TotalCandidates int                        `json:"total_candidates"`
	Metadata        recommend.ResponseMetadata `json:"metadata"`
}

func newRecommendationResult(resp *recommend.Response) RecommendationResult {
	return RecommendationResult{
		TrackIDs:        resp.IDs(),
		Items:           resp.Items,
		TotalCandidates: resp.TotalCandidates,
		Metadata:        resp.Metadata,
	}
}

// TrackSummary is a track in list responses.
type TrackSummary struct {
	TrackID    string   `json:"track_id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	Genre      string   `json:"genre,omitempty"`
	Popularity float64  `json:"popularity"`
}

// TrackDetail is the data of GET /api/v1/tracks/{trackID}.
type TrackDetail struct {
	TrackSummary

	// Features are the raw values after cleaning, keyed by feature name.
	Features map[string]float64 `json:"features"`

	// Vector is the normalized unit-length feature vector in feature order.
	Vector []float64 `json:"vector"`
}

func newTrackSummary(t *catalog.Track) TrackSummary {
	return TrackSummary{
		TrackID:    t.ID,
		Name:       t.Name,
		Artists:    t.Artists,
		Album:      t.Album,
		Genre:      t.Genre,
		Popularity: t.Popularity,
	}
}

// SearchResult is the data of a search response.
type SearchResult struct {
	Query   string        `json:"query,omitempty"`
	Artist  string        `json:"artist,omitempty"`
	Count   int           `json:"count"`
	Matches []SearchMatch `json:"matches"`
}

// SearchMatch is one search hit.
type SearchMatch struct {
	TrackSummary
	Score float64 `json:"score"`
}

// FeatureScale is the fitted normalization of one feature.
type FeatureScale struct {
	Feature string  `json:"feature"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

// CatalogInfo is the data of GET /api/v1/catalog.
type CatalogInfo struct {
	Tracks int                  `json:"tracks"`
	Build  catalog.BuildStats   `json:"build"`
	Scaler []FeatureScale       `json:"scaler"`
	Genres []catalog.GenreCount `json:"genres"`
	Engine recommend.Stats      `json:"engine"`
	Config recommend.Config     `json:"config"`
}

// ResolveRequest holds the query parameters of GET /api/v1/tracks/resolve.
type ResolveRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Artist string `json:"artist" validate:"required,max=200"`
}
