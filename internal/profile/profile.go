// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package profile turns a seed playlist into a taste profile: the mean of the
// seed tracks' feature vectors, re-normalized to unit length.
package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultSharpness is k in the feature weight exp(-k * std).
const DefaultSharpness = 5.0

// Source resolves seed identifiers against the catalog.
type Source interface {
	Dim() int
	Row(trackID string) (int, bool)
	RowVector(row int) []float64
	GenreOf(row int) string
}

// Profile is the aggregate of one seed set. It is built per request.
type Profile struct {
	// Vector is the unit-length mean of the seed vectors. It is left
	// unnormalized when the mean is zero, and nil when no seed resolved.
	Vector []float64

	// Rows are the resolved seed rows, first occurrence order, without repeats.
	Rows []int

	// Missing lists the seed identifiers not found in the catalog.
	Missing []string

	// Genres holds the non-empty genre labels of the resolved seeds.
	Genres map[string]struct{}
}

// Resolved reports whether at least one seed was found.
func (p *Profile) Resolved() bool { return len(p.Rows) > 0 }

// SeedRows returns the resolved rows as a set.
func (p *Profile) SeedRows() map[int]struct{} {
	set := make(map[int]struct{}, len(p.Rows))
	for _, r := range p.Rows {
		set[r] = struct{}{}
	}
	return set
}

// Builder builds profiles against one catalog.
type Builder struct {
	src Source
}

// NewBuilder returns a Builder reading vectors from src.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// Build resolves seedIDs and averages their vectors. Unknown identifiers are
// skipped and reported in Missing; a repeated identifier counts once.
func (b *Builder) Build(seedIDs []string) Profile {
	p := Profile{Genres: make(map[string]struct{})}
	seen := make(map[int]struct{}, len(seedIDs))
	for _, id := range seedIDs {
		row, ok := b.src.Row(id)
		if !ok {
			p.Missing = append(p.Missing, id)
			continue
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		p.Rows = append(p.Rows, row)
		if g := b.src.GenreOf(row); g != "" {
			p.Genres[g] = struct{}{}
		}
	}
	if len(p.Rows) == 0 {
		return p
	}

	mean := make([]float64, b.src.Dim())
	for _, row := range p.Rows {
		floats.Add(mean, b.src.RowVector(row))
	}
	floats.Scale(1/float64(len(p.Rows)), mean)
	if norm := floats.Norm(mean, 2); norm > 0 {
		floats.Scale(1/norm, mean)
	}
	p.Vector = mean
	return p
}

// FeatureWeights derives one weight per feature from how consistent the
// seeds are on it: exp(-sharpness * std), with std the population standard
// deviation of the feature across the seed vectors. Features the seeds agree
// on get weights near 1. A single seed yields all ones.
func (b *Builder) FeatureWeights(rows []int, sharpness float64) []float64 {
	dim := b.src.Dim()
	weights := make([]float64, dim)
	if len(rows) == 0 {
		for j := range weights {
			weights[j] = 1
		}
		return weights
	}

	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = b.src.RowVector(row)[j]
		}
		_, std := stat.PopMeanStdDev(col, nil)
		if math.IsNaN(std) {
			std = 0
		}
		weights[j] = math.Exp(-sharpness * std)
	}
	return weights
}
