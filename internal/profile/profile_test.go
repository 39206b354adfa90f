// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package profile_test

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/encore/internal/profile"
	"github.com/tomtom215/encore/internal/testinfra"
)

func TestBuildAveragesAndNormalizes(t *testing.T) {
	t.Parallel()

	c := testinfra.MustCatalog(t,
		testinfra.TrackSpec{ID: "a", Artists: "X", Genre: "rock", Features: testinfra.Features(1)},
		testinfra.TrackSpec{ID: "b", Artists: "X", Genre: "pop", Features: testinfra.Features(0, 1)},
		testinfra.TrackSpec{ID: "c", Artists: "X", Genre: "jazz", Features: testinfra.Features(0, 0, 1)},
	)
	b := profile.NewBuilder(c)

	p := b.Build([]string{"a", "ghost", "b", "a"})
	if !p.Resolved() {
		t.Fatal("expected resolved profile")
	}
	rowA, _ := c.Row("a")
	rowB, _ := c.Row("b")
	if !reflect.DeepEqual(p.Rows, []int{rowA, rowB}) {
		t.Errorf("Rows = %v, want [%d %d] (deduplicated)", p.Rows, rowA, rowB)
	}
	if !reflect.DeepEqual(p.Missing, []string{"ghost"}) {
		t.Errorf("Missing = %v", p.Missing)
	}
	if _, ok := p.Genres["rock"]; !ok || len(p.Genres) != 2 {
		t.Errorf("Genres = %v, want rock and pop", p.Genres)
	}

	if n := floats.Norm(p.Vector, 2); math.Abs(n-1) > 1e-12 {
		t.Errorf("profile norm = %v, want 1", n)
	}
	want := math.Sqrt(0.5)
	if math.Abs(p.Vector[0]-want) > 1e-12 || math.Abs(p.Vector[1]-want) > 1e-12 || p.Vector[2] != 0 {
		t.Errorf("profile = %v, want [%v %v 0 ...]", p.Vector, want, want)
	}

	seeds := p.SeedRows()
	if _, ok := seeds[rowA]; !ok || len(seeds) != 2 {
		t.Errorf("SeedRows() = %v", seeds)
	}
}

func TestBuildNoResolvedSeeds(t *testing.T) {
	t.Parallel()

	c := testinfra.MustCatalog(t, testinfra.TrackSpec{ID: "a", Artists: "X", Features: testinfra.Flat(0.5)})
	b := profile.NewBuilder(c)

	for _, seeds := range [][]string{nil, {}, {"nope", "nada"}} {
		p := b.Build(seeds)
		if p.Resolved() {
			t.Errorf("Build(%v) should not resolve", seeds)
		}
		if p.Vector != nil {
			t.Errorf("Build(%v).Vector = %v, want nil", seeds, p.Vector)
		}
		if len(p.Missing) != len(seeds) {
			t.Errorf("Build(%v).Missing = %v", seeds, p.Missing)
		}
	}
}

func TestBuildZeroMeanLeftUnnormalized(t *testing.T) {
	t.Parallel()

	// Two tracks whose standardized loudness cancels and whose bounded
	// features are zero: the vectors are exact opposites.
	var f1, f2 [9]float64
	f1[7], f2[7] = -4, -10
	c := testinfra.MustCatalog(t,
		testinfra.TrackSpec{ID: "a", Artists: "X", Features: f1},
		testinfra.TrackSpec{ID: "b", Artists: "X", Features: f2},
	)
	p := profile.NewBuilder(c).Build([]string{"a", "b"})
	for i, v := range p.Vector {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("Vector[%d] = %v, want 0", i, v)
		}
	}
}

func TestFeatureWeights(t *testing.T) {
	t.Parallel()

	c := testinfra.MustCatalog(t,
		testinfra.TrackSpec{ID: "a", Artists: "X", Features: testinfra.Features(0.6, 0.1)},
		testinfra.TrackSpec{ID: "b", Artists: "X", Features: testinfra.Features(0.6, 0.9)},
	)
	b := profile.NewBuilder(c)
	p := b.Build([]string{"a", "b"})

	w := b.FeatureWeights(p.Rows, profile.DefaultSharpness)
	if len(w) != 9 {
		t.Fatalf("len(weights) = %d, want 9", len(w))
	}
	for j, v := range w {
		if v <= 0 || v > 1 {
			t.Errorf("weight[%d] = %v, want (0, 1]", j, v)
		}
	}
	if w[1] >= w[0] {
		t.Errorf("inconsistent feature should weigh less: energy=%v danceability=%v", w[1], w[0])
	}
	if w[2] != 1 {
		t.Errorf("feature both seeds lack should weigh 1, got %v", w[2])
	}

	single := b.FeatureWeights(p.Rows[:1], profile.DefaultSharpness)
	for j, v := range single {
		if v != 1 {
			t.Errorf("single seed weight[%d] = %v, want 1", j, v)
		}
	}
	for j, v := range b.FeatureWeights(nil, profile.DefaultSharpness) {
		if v != 1 {
			t.Errorf("no seeds weight[%d] = %v, want 1", j, v)
		}
	}
}
