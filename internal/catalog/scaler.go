// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scaler holds the per-feature standardization parameters fitted on the
// full catalog. Bounded features have Mean 0 and Std 1, so Transform leaves
// them unchanged.
type Scaler struct {
	Mean [Dim]float64 `json:"mean"`
	Std  [Dim]float64 `json:"std"`
}

// fitScaler computes population mean and standard deviation of the
// standardized features. A zero or undefined deviation becomes 1, which
// centers the feature without scaling it.
func fitScaler(tracks []Track) Scaler {
	var s Scaler
	col := make([]float64, len(tracks))
	for j := 0; j < Dim; j++ {
		s.Std[j] = 1
		if !standardized[j] {
			continue
		}
		for i := range tracks {
			col[i] = tracks[i].Features[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std > 0 && !math.IsNaN(std) && !math.IsInf(std, 0) {
			s.Std[j] = std
		}
	}
	return s
}

// Transform maps raw feature values to a unit-length vector written into dst.
// Non-finite intermediate values become 0. A zero vector stays zero.
func (s *Scaler) Transform(raw *[Dim]float64, dst []float64) {
	for j := 0; j < Dim; j++ {
		v := (raw[j] - s.Mean[j]) / s.Std[j]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		dst[j] = v
	}
	if norm := floats.Norm(dst, 2); norm > 0 {
		floats.Scale(1/norm, dst)
	}
}
