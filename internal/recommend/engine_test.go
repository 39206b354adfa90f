// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/testinfra"
)

var artistPool = []string{"Aurora", "Boards", "Caribou", "Daft", "Erykah", "Feist", "Grimes", "Hozier"}
var genrePool = []string{"rock", "pop", "jazz", "electronic", "folk"}

// randomSpecs returns n deterministic fixture tracks with varied features.
func randomSpecs(n int, seed int64) []testinfra.TrackSpec {
	rng := rand.New(rand.NewSource(seed))
	specs := make([]testinfra.TrackSpec, n)
	for i := range specs {
		var f [catalog.Dim]float64
		for j := 0; j < 7; j++ {
			f[j] = rng.Float64()
		}
		f[7] = -30 + 30*rng.Float64()
		f[8] = 60 + 140*rng.Float64()
		artists := artistPool[rng.Intn(len(artistPool))]
		if rng.Intn(5) == 0 {
			artists += ";" + artistPool[rng.Intn(len(artistPool))]
		}
		specs[i] = testinfra.TrackSpec{
			ID:         fmt.Sprintf("t%03d", i),
			Artists:    artists,
			Genre:      genrePool[rng.Intn(len(genrePool))],
			Popularity: float64(rng.Intn(101)),
			Features:   f,
		}
	}
	return specs
}

func newTestEngine(t *testing.T, cfg *Config, specs ...testinfra.TrackSpec) *Engine {
	t.Helper()
	e, err := NewEngine(testinfra.Table(specs...), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func smallPoolConfig() *Config {
	cfg := DefaultConfig()
	cfg.OversampleFactor = 2
	cfg.PoolFloor = 5
	return cfg
}

func TestNewEngineErrors(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(testinfra.Table(testinfra.TrackSpec{ID: "a"}), nil, zerolog.Nop())
	if !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Errorf("empty catalog error = %v, want ErrDataIntegrity", err)
	}

	table := &catalog.Table{Columns: []string{"track_id", "track_name", "artists"}, Rows: [][]string{{"a", "A", "X"}}}
	if _, err := NewEngine(table, nil, zerolog.Nop()); !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Errorf("missing feature columns error = %v, want ErrDataIntegrity", err)
	}

	bad := DefaultConfig()
	bad.PoolFloor = 0
	if _, err := NewEngine(testinfra.Table(randomSpecs(3, 1)...), bad, zerolog.Nop()); err == nil {
		t.Error("invalid config should be rejected")
	}

	if _, err := NewEngineFromCatalog(nil, nil, zerolog.Nop()); !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Errorf("nil catalog error = %v, want ErrDataIntegrity", err)
	}
}

func TestInvalidN(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(10, 2)...)
	for _, n := range []int{0, -1} {
		_, err := e.GetRecommendations([]string{"t001"}, n, nil)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("n=%d error = %v, want ErrInvalidArgument", n, err)
		}
	}
	if _, err := e.Recommend(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil request error = %v, want ErrInvalidArgument", err)
	}
	if got := e.Stats().Rejected; got != 3 {
		t.Errorf("Rejected = %d, want 3", got)
	}
}

func TestResultLengthAndContents(t *testing.T) {
	t.Parallel()

	specs := randomSpecs(60, 3)
	e := newTestEngine(t, smallPoolConfig(), specs...)
	size := e.Catalog().Len()

	tests := []struct {
		name  string
		seeds []string
		n     int
		hint  map[string]struct{}
	}{
		{"single seed", []string{"t000"}, 10, nil},
		{"several seeds", []string{"t001", "t002", "t003"}, 5, nil},
		{"unknown seeds mixed in", []string{"nope", "t004", "gone"}, 7, nil},
		{"repeated seed", []string{"t005", "t005"}, 4, nil},
		{"n is one", []string{"t006"}, 1, nil},
		{"n beyond catalog", []string{"t007", "t008"}, 500, nil},
		{"many seeds small pool", []string{"t010", "t011", "t012", "t013", "t014", "t015", "t016"}, 3, nil},
		{"with hint", []string{"t020"}, 10, map[string]struct{}{"Grimes": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.GetRecommendations(tt.seeds, tt.n, tt.hint)
			if err != nil {
				t.Fatalf("GetRecommendations error = %v", err)
			}

			resolved := make(map[string]struct{})
			for _, id := range tt.seeds {
				if _, ok := e.Catalog().Row(id); ok {
					resolved[id] = struct{}{}
				}
			}
			want := min(tt.n, size-len(resolved))
			if len(got) != want {
				t.Fatalf("len = %d, want %d", len(got), want)
			}

			seen := make(map[string]struct{})
			for _, id := range got {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = struct{}{}
				if _, isSeed := resolved[id]; isSeed {
					t.Errorf("seed %s returned", id)
				}
				if _, ok := e.Catalog().Row(id); !ok {
					t.Errorf("unknown id %s returned", id)
				}
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(80, 4)...)
	seeds := []string{"t010", "t020", "t030"}
	hint := map[string]struct{}{"Feist": {}}

	first, err := e.GetRecommendations(seeds, 15, hint)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, _ := e.GetRecommendations(seeds, 15, hint)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("call %d differs: %v vs %v", i, first, again)
		}
	}

	// An independently built engine over the same data agrees.
	other := newTestEngine(t, nil, randomSpecs(80, 4)...)
	got, _ := other.GetRecommendations(seeds, 15, hint)
	if !reflect.DeepEqual(first, got) {
		t.Errorf("independent engine differs: %v vs %v", first, got)
	}
}

func TestConcurrentRequests(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(100, 5)...)
	want, _ := e.GetRecommendations([]string{"t042"}, 20, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.GetRecommendations([]string{"t042"}, 20, nil)
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- fmt.Errorf("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestArtistBoostMonotonic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(150, 6)...)
	seedSets := [][]string{{"t001"}, {"t002", "t050"}, {"t100", "t101", "t102"}}
	hints := []map[string]struct{}{{"Aurora": {}}, {"Hozier": {}, "Daft": {}}, {"Nobody": {}}}

	count := func(ids []string, hint map[string]struct{}) int {
		n := 0
		for _, id := range ids {
			row, _ := e.Catalog().Row(id)
			if e.Catalog().HasAnyArtist(row, hint) {
				n++
			}
		}
		return n
	}

	for _, seeds := range seedSets {
		for _, hint := range hints {
			plain, _ := e.GetRecommendations(seeds, 10, nil)
			boosted, _ := e.GetRecommendations(seeds, 10, hint)
			if count(boosted, hint) < count(plain, hint) {
				t.Errorf("seeds %v hint %v: boosted=%d plain=%d", seeds, hint, count(boosted, hint), count(plain, hint))
			}
		}
	}
}

func TestPopularityFallback(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(40, 7)...)
	for _, seeds := range [][]string{nil, {}, {"missing-1", "missing-2"}} {
		got, err := e.GetRecommendations(seeds, 8, map[string]struct{}{"Aurora": {}})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 8 {
			t.Fatalf("len = %d, want 8", len(got))
		}
		prev := math.Inf(1)
		for _, id := range got {
			row, _ := e.Catalog().Row(id)
			p := e.Catalog().PopularityScoreOf(row)
			if p > prev {
				t.Fatalf("fallback not in descending popularity: %v", got)
			}
			prev = p
		}
		want := e.Catalog().TopByPopularity(8, nil)
		for i, row := range want {
			if got[i] != e.Catalog().IDOf(row) {
				t.Fatalf("fallback = %v, want top popularity rows", got)
			}
		}
	}

	resp, err := e.Recommend(&Request{N: 3, RequestID: "req-1"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Metadata.Fallback || resp.Metadata.RequestID != "req-1" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if resp.Items[0].Score != resp.Items[0].Popularity {
		t.Errorf("fallback score should be the popularity score: %+v", resp.Items[0])
	}
	if e.Stats().Fallbacks < 4 {
		t.Errorf("Fallbacks = %d, want >= 4", e.Stats().Fallbacks)
	}
}

func TestFallbackThreeTrackScenario(t *testing.T) {
	t.Parallel()

	flat := testinfra.Flat(0.5)
	e := newTestEngine(t, nil,
		testinfra.TrackSpec{ID: "C", Artists: "X", Popularity: 10, Features: flat},
		testinfra.TrackSpec{ID: "A", Artists: "X", Popularity: 90, Features: flat},
		testinfra.TrackSpec{ID: "B", Artists: "X", Popularity: 50, Features: flat},
	)
	got, err := e.GetRecommendations(nil, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("got %v, want [A B]", got)
	}
}

func TestArtistBoostMargin(t *testing.T) {
	t.Parallel()

	// Seed S points along danceability. W shares S's genre, Z is by the
	// hinted artist in another genre and sits further from S than W.
	specFor := func(id, artist, genre string, cos float64) testinfra.TrackSpec {
		return testinfra.TrackSpec{
			ID: id, Artists: artist, Genre: genre,
			Features: testinfra.Features(cos, math.Sqrt(1-cos*cos)),
		}
	}

	tests := []struct {
		name      string
		cosW      float64
		cosZ      float64
		wantFirst string
	}{
		// 1.5*0.8 = 1.20 > 1.1*0.9 = 0.99
		{"boost exceeds margin", 0.9, 0.8, "Z"},
		// 1.5*0.6 = 0.90 < 1.1*0.95 = 1.045
		{"boost below margin", 0.95, 0.6, "W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, nil,
				specFor("S", "X", "rock", 1),
				specFor("W", "V", "rock", tt.cosW),
				specFor("Z", "Y", "pop", tt.cosZ),
			)
			resp, err := e.Recommend(&Request{TrackIDs: []string{"S"}, N: 2, TargetArtists: []string{"Y"}})
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Items) != 2 {
				t.Fatalf("len = %d, want 2", len(resp.Items))
			}
			if resp.Items[0].TrackID != tt.wantFirst {
				t.Errorf("first = %s, want %s (items %+v)", resp.Items[0].TrackID, tt.wantFirst, resp.Items)
			}

			byID := map[string]ScoredItem{}
			for _, it := range resp.Items {
				byID[it.TrackID] = it
			}
			if math.Abs(byID["W"].Similarity-tt.cosW) > 1e-9 || math.Abs(byID["Z"].Similarity-tt.cosZ) > 1e-9 {
				t.Errorf("base similarities = W %v Z %v, want %v %v",
					byID["W"].Similarity, byID["Z"].Similarity, tt.cosW, tt.cosZ)
			}
			if !byID["Z"].ArtistMatch || byID["Z"].GenreMatch || !byID["W"].GenreMatch {
				t.Errorf("match flags wrong: %+v", resp.Items)
			}
		})
	}

	// Without the hint W always wins.
	e := newTestEngine(t, nil, specFor("S", "X", "rock", 1), specFor("W", "V", "rock", 0.9), specFor("Z", "Y", "pop", 0.8))
	got, _ := e.GetRecommendations([]string{"S"}, 2, nil)
	if got[0] != "W" {
		t.Errorf("without hint got %v, want W first", got)
	}
}

func TestFeatureWeightingPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FeatureWeighting = true
	specs := randomSpecs(50, 8)
	e := newTestEngine(t, cfg, specs...)

	resp, err := e.Recommend(&Request{TrackIDs: []string{"t001", "t002"}, N: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Metadata.FeatureWeighting {
		t.Error("weighted search should be reported in metadata")
	}
	if len(resp.Items) != 10 {
		t.Errorf("len = %d, want 10", len(resp.Items))
	}

	// A single seed has no spread to learn weights from.
	single, _ := e.Recommend(&Request{TrackIDs: []string{"t001"}, N: 5})
	if single.Metadata.FeatureWeighting {
		t.Error("single seed should use the unweighted search")
	}
}

func TestRecommendMetadata(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, randomSpecs(30, 9)...)
	resp, err := e.Recommend(&Request{TrackIDs: []string{"t003", "ghost"}, N: 5, RequestID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	md := resp.Metadata
	if md.Fallback || md.ResolvedSeeds != 1 || !reflect.DeepEqual(md.MissingSeeds, []string{"ghost"}) || md.RequestID != "abc" {
		t.Errorf("metadata = %+v", md)
	}
	if resp.TotalCandidates != 30 {
		t.Errorf("TotalCandidates = %d, want whole catalog (30)", resp.TotalCandidates)
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].Score > resp.Items[i-1].Score {
			t.Errorf("items not sorted by score: %+v", resp.Items)
		}
	}
	if md.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero artist boost", func(c *Config) { c.ArtistBoost = 0 }, true},
		{"negative tilt", func(c *Config) { c.PopularityTilt = -1 }, true},
		{"zero factor", func(c *Config) { c.OversampleFactor = 0 }, true},
		{"zero floor", func(c *Config) { c.PoolFloor = 0 }, true},
		{"weighting without sharpness", func(c *Config) {
			c.FeatureWeighting = true
			c.WeightingSharpness = 0
		}, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
