// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package catalog holds the immutable track catalog: per-track metadata,
// L2-normalized audio feature vectors and the lookups the recommendation
// pipeline needs (id to row, artist to rows, popularity order).
//
// A Catalog is built once from a Table and never modified afterwards, so it
// is safe for concurrent use without locking. Accessors that return slices
// return copies.
package catalog

import (
	"errors"
	"sort"
)

var (
	// ErrDataIntegrity is returned by Build when the input table lacks a
	// required column or no usable rows remain after cleaning.
	ErrDataIntegrity = errors.New("catalog data integrity violation")

	// ErrNotFound is returned when a track identifier is not in the catalog.
	ErrNotFound = errors.New("track not found")
)

// Column names of the input table.
const (
	ColumnTrackID    = "track_id"
	ColumnTrackName  = "track_name"
	ColumnAlbumName  = "album_name"
	ColumnArtists    = "artists"
	ColumnGenre      = "track_genre"
	ColumnPopularity = "popularity"
)

// FeatureNames lists the audio features in vector order. The first seven are
// bounded to [0,1] and used as-is; loudness and tempo are standardized.
var FeatureNames = []string{
	"danceability",
	"energy",
	"valence",
	"acousticness",
	"instrumentalness",
	"speechiness",
	"liveness",
	"loudness",
	"tempo",
}

// Dim is the dimensionality of a feature vector.
const Dim = 9

// standardized marks the features that are z-scored before normalization.
var standardized = [Dim]bool{7: true, 8: true}

// ArtistSeparator splits the artists column into individual names.
const ArtistSeparator = ";"

// Table is a catalog in tabular form, one string cell per column, as read
// from CSV or a database. Missing values are empty strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Track is one catalog entry.
type Track struct {
	ID         string
	Name       string
	Album      string
	Genre      string
	Artists    []string
	Popularity float64

	// Features holds the raw feature values after coercion, in FeatureNames order.
	Features [Dim]float64
}

// Vector is a feature vector of length Dim.
type Vector []float64

// Catalog is the read-only track catalog.
type Catalog struct {
	tracks     []Track
	vectors    []float64 // row-major, Dim per row
	popularity []float64 // popularity/100 clamped to [0,1]
	byID       map[string]int
	byArtist   map[string][]int
	byPop      []int // rows by descending popularity, ties by row
	scaler     Scaler
	stats      BuildStats
}

// Len returns the number of tracks.
func (c *Catalog) Len() int { return len(c.tracks) }

// Dim returns the vector dimensionality.
func (c *Catalog) Dim() int { return Dim }

// Scaler returns the normalization parameters fitted at build time.
func (c *Catalog) Scaler() Scaler { return c.scaler }

// Stats returns what happened while the catalog was built.
func (c *Catalog) Stats() BuildStats { return c.stats.clone() }

// Row returns the row index of a track identifier.
func (c *Catalog) Row(trackID string) (int, bool) {
	row, ok := c.byID[trackID]
	return row, ok
}

// IDOf returns the identifier stored at row.
func (c *Catalog) IDOf(row int) string { return c.tracks[row].ID }

// Track returns a copy of the track stored at row.
func (c *Catalog) Track(row int) Track {
	t := c.tracks[row]
	t.Artists = append([]string(nil), t.Artists...)
	return t
}

// Lookup returns the track with the given identifier.
func (c *Catalog) Lookup(trackID string) (Track, error) {
	row, ok := c.byID[trackID]
	if !ok {
		return Track{}, ErrNotFound
	}
	return c.Track(row), nil
}

// VectorOf returns a copy of the normalized feature vector of a track.
func (c *Catalog) VectorOf(trackID string) (Vector, error) {
	row, ok := c.byID[trackID]
	if !ok {
		return nil, ErrNotFound
	}
	return append(Vector(nil), c.RowVector(row)...), nil
}

// RowVector returns the stored vector of row without copying. Callers must
// not modify it.
func (c *Catalog) RowVector(row int) []float64 {
	off := row * Dim
	return c.vectors[off : off+Dim : off+Dim]
}

// GenreOf returns the genre label of row.
func (c *Catalog) GenreOf(row int) string { return c.tracks[row].Genre }

// PopularityScoreOf returns popularity/100 clamped to [0,1].
func (c *Catalog) PopularityScoreOf(row int) float64 { return c.popularity[row] }

// ArtistsOf returns a copy of the artist names of row.
func (c *Catalog) ArtistsOf(row int) []string {
	return append([]string(nil), c.tracks[row].Artists...)
}

// HasAnyArtist reports whether row has at least one artist in set.
func (c *Catalog) HasAnyArtist(row int, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, a := range c.tracks[row].Artists {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

// RowsMatchingArtists returns the rows whose artist set intersects artists.
// An empty input yields an empty result.
func (c *Catalog) RowsMatchingArtists(artists map[string]struct{}) map[int]struct{} {
	out := make(map[int]struct{})
	for a := range artists {
		for _, row := range c.byArtist[a] {
			out[row] = struct{}{}
		}
	}
	return out
}

// TopByPopularity returns up to n rows in descending popularity order, ties
// broken by row order. Rows for which skip returns true are left out; skip
// may be nil.
func (c *Catalog) TopByPopularity(n int, skip func(row int) bool) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, min(n, len(c.byPop)))
	for _, row := range c.byPop {
		if len(out) == n {
			break
		}
		if skip != nil && skip(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Genres returns the distinct genre labels with their track counts, sorted by label.
func (c *Catalog) Genres() []GenreCount {
	counts := make(map[string]int)
	for i := range c.tracks {
		if g := c.tracks[i].Genre; g != "" {
			counts[g]++
		}
	}
	out := make([]GenreCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GenreCount{Genre: g, Tracks: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}

// GenreCount is one entry of Genres.
type GenreCount struct {
	Genre  string `json:"genre"`
	Tracks int    `json:"tracks"`
}
