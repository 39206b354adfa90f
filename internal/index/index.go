// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package index implements exact nearest-neighbor search over the catalog's
// normalized feature vectors.
//
// Search is brute force: every query scores every row with cosine
// similarity and keeps the best k in a bounded heap. Results are totally
// ordered by similarity (descending) and then row (ascending), so identical
// queries always return identical lists.
package index

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// VectorSource exposes read-only row vectors. *catalog.Catalog implements it.
type VectorSource interface {
	Len() int
	Dim() int
	RowVector(row int) []float64
}

// Neighbor is one search hit.
type Neighbor struct {
	Row        int
	Similarity float64
}

// Index is an immutable similarity index. It is safe for concurrent use.
type Index struct {
	src VectorSource
}

// New builds an index over src. The source must not change afterwards.
func New(src VectorSource) *Index {
	return &Index{src: src}
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return ix.src.Len() }

// PoolSize returns the candidate pool size for n requested results:
// min(max(n*factor, floor), size).
func PoolSize(n, size, factor, floor int) int {
	k := n * factor
	if n > 0 && k/n != factor { // overflow
		k = size
	}
	k = max(k, floor)
	return min(k, size)
}

// Query returns the min(k, Len()) rows most similar to profile, nearest
// first. Similarity is the cosine of the angle between profile and the row
// vector, which equals 1 minus the cosine distance. A zero profile or a zero
// row scores 0.
func (ix *Index) Query(profile []float64, k int) []Neighbor {
	n := ix.src.Len()
	k = min(k, n)
	if k <= 0 || len(profile) != ix.src.Dim() {
		return nil
	}

	pn := floats.Norm(profile, 2)
	h := newTopK(k)
	for row := 0; row < n; row++ {
		sim := 0.0
		if pn > 0 {
			sim = floats.Dot(profile, ix.src.RowVector(row)) / pn
		}
		h.offer(Neighbor{Row: row, Similarity: sanitize(sim)})
	}
	return h.sorted()
}

// QueryWeighted is Query with per-feature weights: both the profile and
// each row are scaled by sqrt(weight) per feature before the cosine is taken.
// weights must have one entry per feature.
func (ix *Index) QueryWeighted(profile, weights []float64, k int) []Neighbor {
	n := ix.src.Len()
	k = min(k, n)
	dim := ix.src.Dim()
	if k <= 0 || len(profile) != dim || len(weights) != dim {
		return nil
	}

	scale := make([]float64, dim)
	for j, w := range weights {
		if w > 0 {
			scale[j] = math.Sqrt(w)
		}
	}
	p := make([]float64, dim)
	floats.MulTo(p, profile, scale)
	pn := floats.Norm(p, 2)

	r := make([]float64, dim)
	h := newTopK(k)
	for row := 0; row < n; row++ {
		sim := 0.0
		if pn > 0 {
			floats.MulTo(r, ix.src.RowVector(row), scale)
			if rn := floats.Norm(r, 2); rn > 0 {
				sim = floats.Dot(p, r) / (pn * rn)
			}
		}
		h.offer(Neighbor{Row: row, Similarity: sanitize(sim)})
	}
	return h.sorted()
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// less reports whether a ranks after b: lower similarity, or equal
// similarity and higher row.
func less(a, b Neighbor) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity < b.Similarity
	}
	return a.Row > b.Row
}
