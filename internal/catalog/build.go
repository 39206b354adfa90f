// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// BuildStats records the cleaning performed by Build.
type BuildStats struct {
	InputRows int `json:"input_rows"`
	Tracks    int `json:"tracks"`

	// MissingRequired counts rows dropped for lacking an id, name or artist.
	MissingRequired int `json:"missing_required"`

	// Duplicates counts rows dropped because their id was already seen.
	Duplicates int `json:"duplicates"`

	// Coerced counts, per column, values that were missing or unparseable
	// and replaced with a default.
	Coerced map[string]int `json:"coerced"`
}

func (s BuildStats) clone() BuildStats {
	s.Coerced = maps.Clone(s.Coerced)
	return s
}

// requiredColumns must be present in the input table.
func requiredColumns() []string {
	cols := []string{ColumnTrackID, ColumnTrackName, ColumnArtists, ColumnGenre, ColumnPopularity}
	return append(cols, FeatureNames...)
}

// Build cleans the table, fits the feature scaler and returns the catalog.
//
// Rows without an id, a name or at least one artist are dropped, as are rows
// repeating an id already seen. Missing or unparseable numbers are replaced
// with 0 and counted per column; these substitutions are logged at warn level.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Build(table *Table, logger zerolog.Logger) (*Catalog, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrDataIntegrity)
	}

	idx := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	for _, name := range requiredColumns() {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataIntegrity, name)
		}
	}
	albumCol, hasAlbum := idx[ColumnAlbumName]

	stats := BuildStats{InputRows: len(table.Rows), Coerced: make(map[string]int)}
	tracks := make([]Track, 0, len(table.Rows))
	byID := make(map[string]int, len(table.Rows))

	for _, row := range table.Rows {
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		id := cell(idx[ColumnTrackID])
		name := cell(idx[ColumnTrackName])
		artists := SplitArtists(cell(idx[ColumnArtists]))
		if id == "" || name == "" || len(artists) == 0 {
			stats.MissingRequired++
			continue
		}
		if _, seen := byID[id]; seen {
			stats.Duplicates++
			continue
		}

		t := Track{
			ID:      id,
			Name:    name,
			Genre:   cell(idx[ColumnGenre]),
			Artists: artists,
		}
		if hasAlbum {
			t.Album = cell(albumCol)
		}

		var coerced bool
		t.Popularity, coerced = parseNumber(cell(idx[ColumnPopularity]))
		if coerced {
			stats.Coerced[ColumnPopularity]++
		}
		for j, feature := range FeatureNames {
			t.Features[j], coerced = parseNumber(cell(idx[feature]))
			if coerced {
				stats.Coerced[feature]++
			}
		}

		byID[id] = len(tracks)
		tracks = append(tracks, t)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no usable rows out of %d", ErrDataIntegrity, stats.InputRows)
	}
	stats.Tracks = len(tracks)

	c := &Catalog{
		tracks:     tracks,
		vectors:    make([]float64, len(tracks)*Dim),
		popularity: make([]float64, len(tracks)),
		byID:       byID,
		byArtist:   make(map[string][]int),
		scaler:     fitScaler(tracks),
		stats:      stats,
	}
	for i := range tracks {
		c.scaler.Transform(&tracks[i].Features, c.RowVector(i))
		c.popularity[i] = popularityScore(tracks[i].Popularity)
		for _, a := range tracks[i].Artists {
			c.byArtist[a] = append(c.byArtist[a], i)
		}
	}

	c.byPop = make([]int, len(tracks))
	for i := range c.byPop {
		c.byPop[i] = i
	}
	sort.SliceStable(c.byPop, func(a, b int) bool {
		return c.popularity[c.byPop[a]] > c.popularity[c.byPop[b]]
	})

	logBuild(logger, &stats)
	return c, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func logBuild(logger zerolog.Logger, stats *BuildStats) {
	columns := make([]string, 0, len(stats.Coerced))
	for col := range stats.Coerced {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	for _, col := range columns {
		logger.Warn().
			Str("column", col).
			Int("values", stats.Coerced[col]).
			Msg("Substituted default for missing or unparseable values")
	}

	logger.Info().
		Int("input_rows", stats.InputRows).
		Int("tracks", stats.Tracks).
		Int("dropped_missing", stats.MissingRequired).
		Int("dropped_duplicates", stats.Duplicates).
		Msg("Catalog built")
}

// SplitArtists splits an artists cell on ';', trims each name and drops
// empty names. Duplicate names are kept once.
func SplitArtists(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ArtistSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// parseNumber parses a numeric cell. Empty, unparseable and NaN values yield
// 0; infinities yield +1 or -1. The second result reports a substitution.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true
	}
	switch {
	case math.IsNaN(v):
		return 0, true
	case math.IsInf(v, 1):
		return 1, true
	case math.IsInf(v, -1):
		return -1, true
	}
	return v, false
}

func popularityScore(p float64) float64 {
	return math.Min(1, math.Max(0, p/100))
}
