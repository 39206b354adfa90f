// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package search resolves free-text song and artist queries to catalog tracks.

Clients usually know a playlist as titles and artist names, not catalog
identifiers. A Searcher matches queries against the case-folded track names
and artist names of the catalog:

  - Exact matches score 1.0
  - Substring matches score 0.95
  - Otherwise the Jaro-Winkler similarity is used when it reaches the
    configured threshold, capped below substring matches

Results are ordered by score, then popularity, then catalog row, so the
output is deterministic. The Searcher is built once and is safe for
concurrent use.
*/
package search

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/tomtom215/encore/internal/catalog"
)

// Scores of the match kinds.
const (
	ScoreExact     = 1.0
	ScoreSubstring = 0.95
	maxFuzzyScore  = 0.9
)

// Defaults for Config.
const (
	DefaultThreshold  = 0.85
	DefaultMaxResults = 25
)

// Jaro-Winkler parameters: prefix boost applies above 0.7 over up to 4 runes.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Config tunes the searcher.
type Config struct {
	// Threshold is the minimum Jaro-Winkler similarity of a fuzzy match.
	Threshold float64

	// MaxResults caps Query.Limit.
	MaxResults int
}

// DefaultConfig returns the default search settings.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MaxResults: DefaultMaxResults}
}

// Query is a search request. At least one of Text and Artist must be set.
type Query struct {
	// Text is matched against track names and artist names.
	Text string

	// Artist restricts results to tracks with a matching artist.
	Artist string

	// Limit is the maximum number of results; 0 means MaxResults.
	Limit int
}

// Match is one search hit.
type Match struct {
	Row        int      `json:"-"`
	TrackID    string   `json:"track_id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Genre      string   `json:"genre,omitempty"`
	Popularity float64  `json:"popularity"`
	Score      float64  `json:"score"`
}

type entry struct {
	name    string
	artists []string
}

// Searcher matches queries against a catalog.
type Searcher struct {
	cat     *catalog.Catalog
	cfg     Config
	entries []entry
}

// New indexes the names of every catalog track.
func New(cat *catalog.Catalog, cfg Config) *Searcher {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	entries := make([]entry, cat.Len())
	for row := range entries {
		t := cat.Track(row)
		artists := make([]string, len(t.Artists))
		for i, a := range t.Artists {
			artists[i] = fold(a)
		}
		entries[row] = entry{name: fold(t.Name), artists: artists}
	}
	return &Searcher{cat: cat, cfg: cfg, entries: entries}
}

// Search returns the tracks matching q, best first.
func (s *Searcher) Search(q Query) []Match {
	text, artist := fold(q.Text), fold(q.Artist)
	if text == "" && artist == "" {
		return nil
	}
	limit := q.Limit
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	var hits []Match
	for row := range s.entries {
		e := &s.entries[row]

		var artistScore float64
		if artist != "" {
			artistScore = s.bestOf(artist, e.artists)
			if artistScore == 0 {
				continue
			}
		}

		score := artistScore
		if text != "" {
			score = max(s.score(text, e.name), s.bestOf(text, e.artists))
			if score == 0 {
				continue
			}
		}
		hits = append(hits, s.match(row, score))
	}

	sortMatches(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Resolve finds the single best track for a known title and artist pair, as
// when importing a playlist exported from another service. Both the title and
// the artist must match.
func (s *Searcher) Resolve(title, artist string) (Match, bool) {
	t, a := fold(title), fold(artist)
	if t == "" || a == "" {
		return Match{}, false
	}

	var best []Match
	for row := range s.entries {
		e := &s.entries[row]
		ts := s.score(t, e.name)
		if ts == 0 {
			continue
		}
		as := s.bestOf(a, e.artists)
		if as == 0 {
			continue
		}
		// Title carries more weight than artist, edit distance breaks
		// near-ties between similar titles.
		score := 0.6*ts + 0.4*as
		score = 0.9*score + 0.1*editSimilarity(t, e.name)
		best = append(best, s.match(row, score))
	}
	if len(best) == 0 {
		return Match{}, false
	}
	sortMatches(best)
	return best[0], true
}

func (s *Searcher) match(row int, score float64) Match {
	t := s.cat.Track(row)
	return Match{
		Row:        row,
		TrackID:    t.ID,
		Name:       t.Name,
		Artists:    t.Artists,
		Genre:      t.Genre,
		Popularity: s.cat.PopularityScoreOf(row),
		Score:      score,
	}
}

// score rates how well query matches candidate; 0 means no match.
func (s *Searcher) score(query, candidate string) float64 {
	switch {
	case candidate == "":
		return 0
	case candidate == query:
		return ScoreExact
	case strings.Contains(candidate, query):
		return ScoreSubstring
	}
	jw := smetrics.JaroWinkler(query, candidate, jwBoostThreshold, jwPrefixSize)
	if jw < s.cfg.Threshold {
		return 0
	}
	return min(jw, maxFuzzyScore)
}

func (s *Searcher) bestOf(query string, candidates []string) float64 {
	var best float64
	for _, c := range candidates {
		best = max(best, s.score(query, c))
	}
	return best
}

// editSimilarity maps the Levenshtein distance of a and b to [0,1].
func editSimilarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1 - float64(min(d, longest))/float64(longest)
}

func sortMatches(m []Match) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Score != m[j].Score {
			return m[i].Score > m[j].Score
		}
		if m[i].Popularity != m[j].Popularity {
			return m[i].Popularity > m[j].Popularity
		}
		return m[i].Row < m[j].Row
	})
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
