// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package ranking re-scores a candidate pool and cuts it to the requested
// length.
//
// Each candidate starts from its base similarity and is multiplied by:
//
//	Artist         when it has an artist from the target hint set
//	Genre          when its genre is among the seed genres
//	1 + Tilt*pop   always, pop being popularity/100
//
// Ranking is a pure function of its inputs. It never touches feature
// vectors and never asks the index for more candidates.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/encore/internal/index"
)

// Default boost factors.
const (
	DefaultArtistBoost    = 1.5
	DefaultGenreBoost     = 1.1
	DefaultPopularityTilt = 0.1
)

// Boosts holds the multiplicative score adjustments.
type Boosts struct {
	Artist         float64
	Genre          float64
	PopularityTilt float64
}

// DefaultBoosts returns the tuned boost factors.
func DefaultBoosts() Boosts {
	return Boosts{
		Artist:         DefaultArtistBoost,
		Genre:          DefaultGenreBoost,
		PopularityTilt: DefaultPopularityTilt,
	}
}

// Validate checks that the boosts are usable.
func (b Boosts) Validate() error {
	if !(b.Artist > 0) || math.IsInf(b.Artist, 0) {
		return fmt.Errorf("artist boost must be positive, got %v", b.Artist)
	}
	if !(b.Genre > 0) || math.IsInf(b.Genre, 0) {
		return fmt.Errorf("genre boost must be positive, got %v", b.Genre)
	}
	if !(b.PopularityTilt >= 0) || math.IsInf(b.PopularityTilt, 0) {
		return fmt.Errorf("popularity tilt must be non-negative, got %v", b.PopularityTilt)
	}
	return nil
}

// Attributes supplies the side attributes of catalog rows.
type Attributes interface {
	GenreOf(row int) string
	PopularityScoreOf(row int) float64
	HasAnyArtist(row int, artists map[string]struct{}) bool
}

// Input carries the per-request context of a ranking.
type Input struct {
	// SeedRows are never returned.
	SeedRows map[int]struct{}

	// TargetArtists is the artist hint; empty disables the artist boost.
	TargetArtists map[string]struct{}

	// SeedGenres are the genres of the seed tracks.
	SeedGenres map[string]struct{}
}

// Result is one ranked track.
type Result struct {
	Row         int
	Score       float64
	Base        float64
	ArtistMatch bool
	GenreMatch  bool
}

// Ranker applies boosts to candidates. It is safe for concurrent use.
type Ranker struct {
	attrs  Attributes
	boosts Boosts
}

// New returns a Ranker reading side attributes from attrs.
func New(attrs Attributes, boosts Boosts) *Ranker {
	return &Ranker{attrs: attrs, boosts: boosts}
}

// Boosts returns the configured boost factors.
func (r *Ranker) Boosts() Boosts { return r.boosts }

// Rank scores the candidates and returns at most n results, best first.
// Seed rows and repeated rows are skipped. When fewer than n candidates are
// eligible all of them are returned.
//
// Results are ordered by adjusted score, then base similarity (both
// descending), then row (ascending), so the order is total.
func (r *Ranker) Rank(candidates []index.Neighbor, in Input, n int) []Result {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	results := make([]Result, 0, len(candidates))
	seen := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		if _, isSeed := in.SeedRows[c.Row]; isSeed {
			continue
		}
		if _, dup := seen[c.Row]; dup {
			continue
		}
		seen[c.Row] = struct{}{}
		results = append(results, r.score(c, &in))
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Base != b.Base {
			return a.Base > b.Base
		}
		return a.Row < b.Row
	})

	if len(results) > n {
		results = results[:n]
	}
	return results
}

func (r *Ranker) score(c index.Neighbor, in *Input) Result {
	res := Result{Row: c.Row, Base: c.Similarity, Score: c.Similarity}

	if len(in.TargetArtists) > 0 && r.attrs.HasAnyArtist(c.Row, in.TargetArtists) {
		res.ArtistMatch = true
		res.Score *= r.boosts.Artist
	}
	if g := r.attrs.GenreOf(c.Row); g != "" {
		if _, ok := in.SeedGenres[g]; ok {
			res.GenreMatch = true
			res.Score *= r.boosts.Genre
		}
	}
	res.Score *= 1 + r.boosts.PopularityTilt*r.attrs.PopularityScoreOf(c.Row)
	return res
}
