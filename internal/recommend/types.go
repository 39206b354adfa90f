// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import "time"

// Request asks for playlist continuations.
type Request struct {
	// TrackIDs are the seed tracks. Unknown identifiers are ignored.
	TrackIDs []string `json:"track_ids"`

	// N is the number of tracks to return. Must be positive.
	N int `json:"n"`

	// TargetArtists is the artist hint; tracks by these artists are boosted.
	TargetArtists []string `json:"target_artists,omitempty"`

	// RequestID is carried into the response metadata for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is the ranked result of a Request.
type Response struct {
	// Items is the ordered recommendation list, best first.
	Items []ScoredItem `json:"items"`

	// TotalCandidates is the size of the candidate pool that was ranked.
	TotalCandidates int `json:"total_candidates"`

	Metadata ResponseMetadata `json:"metadata"`
}

// IDs returns the track identifiers of the items in order.
func (r *Response) IDs() []string {
	ids := make([]string, len(r.Items))
	for i := range r.Items {
		ids[i] = r.Items[i].TrackID
	}
	return ids
}

// ScoredItem is one recommended track.
type ScoredItem struct {
	TrackID string   `json:"track_id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   string   `json:"album,omitempty"`
	Genre   string   `json:"genre,omitempty"`

	// Score is the final ranking score. For popularity fallbacks it is the
	// popularity score.
	Score float64 `json:"score"`

	// Similarity is the cosine similarity to the taste profile before boosts.
	Similarity float64 `json:"similarity"`

	// Popularity is popularity/100 clamped to [0,1].
	Popularity float64 `json:"popularity"`

	ArtistMatch bool `json:"artist_match"`
	GenreMatch  bool `json:"genre_match"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string `json:"request_id,omitempty"`

	// Fallback is true when no seed resolved and the result is the most
	// popular tracks.
	Fallback bool `json:"fallback"`

	ResolvedSeeds int      `json:"resolved_seeds"`
	MissingSeeds  []string `json:"missing_seeds,omitempty"`

	// FeatureWeighting reports whether weighted similarity was used.
	FeatureWeighting bool `json:"feature_weighting"`

	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Rejected  int64 `json:"rejected"`
	Tracks    int   `json:"tracks"`
}
