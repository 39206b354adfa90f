// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package evaluation measures recommendation quality offline.
//
// Each Case is a playlist with some tracks held out. The recommender sees the
// remaining seeds and is scored with NDCG@k against the held-out tracks using
// binary relevance and a log2 position discount.
package evaluation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// DefaultK is the evaluation cutoff.
const DefaultK = 5

// ErrNoCases is returned when there is nothing to evaluate.
var ErrNoCases = errors.New("no evaluation cases")

// Recommender is the engine under evaluation.
type Recommender interface {
	GetRecommendations(seedIDs []string, n int, targetArtists map[string]struct{}) ([]string, error)
}

// Case is one held-out playlist.
type Case struct {
	Name          string   `json:"name"`
	Seeds         []string `json:"seeds"`
	Removed       []string `json:"removed"`
	TargetArtists []string `json:"target_artists,omitempty"`
}

// CaseResult is the outcome of one Case.
type CaseResult struct {
	Name        string        `json:"name"`
	NDCG        float64       `json:"ndcg"`
	Hits        int           `json:"hits"`
	Recommended []string      `json:"recommended"`
	Latency     time.Duration `json:"latency"`
	Error       string        `json:"error,omitempty"`
}

// Report summarizes an evaluation run.
type Report struct {
	K           int           `json:"k"`
	Cases       []CaseResult  `json:"cases"`
	MeanNDCG    float64       `json:"mean_ndcg"`
	StdDevNDCG  float64       `json:"stddev_ndcg"`
	Failed      int           `json:"failed"`
	MeanLatency time.Duration `json:"mean_latency"`
	MaxLatency  time.Duration `json:"max_latency"`
}

// NDCG returns NDCG@k of recommended against the relevant set. A
// recommendation is relevant when it is in relevant; the ideal ranking puts
// min(distinct relevant, k) relevant items first. It returns 0 when k <= 0 or
// relevant is empty.
func NDCG(recommended, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	rel := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		rel[id] = struct{}{}
	}

	var dcg float64
	for i, id := range recommended[:min(k, len(recommended))] {
		if _, ok := rel[id]; ok {
			dcg += discount(i)
		}
	}

	var idcg float64
	for i := 0; i < min(len(rel), k); i++ {
		idcg += discount(i)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// discount is the gain of a relevant item at zero-based position i.
func discount(i int) float64 {
	return 1 / math.Log2(float64(i)+2)
}

// Evaluator runs cases against a recommender.
type Evaluator struct {
	rec    Recommender
	k      int
	logger zerolog.Logger
}

// New returns an evaluator scoring the top k recommendations. k <= 0 uses DefaultK.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(rec Recommender, k int, logger zerolog.Logger) *Evaluator {
	if k <= 0 {
		k = DefaultK
	}
	return &Evaluator{rec: rec, k: k, logger: logger.With().Str("component", "evaluation").Logger()}
}

// Run evaluates every case. A case whose recommendation call fails scores 0
// and is counted in Report.Failed.
func (e *Evaluator) Run(cases []Case) (*Report, error) {
	if len(cases) == 0 {
		return nil, ErrNoCases
	}

	report := &Report{K: e.k, Cases: make([]CaseResult, 0, len(cases))}
	scores := make([]float64, 0, len(cases))
	var total time.Duration

	for i := range cases {
		c := &cases[i]
		res := e.runCase(i, c)
		if res.Error != "" {
			report.Failed++
		}
		total += res.Latency
		report.MaxLatency = max(report.MaxLatency, res.Latency)
		scores = append(scores, res.NDCG)
		report.Cases = append(report.Cases, res)

		e.logger.Debug().
			Str("case", res.Name).
			Float64("ndcg", res.NDCG).
			Int("hits", res.Hits).
			Dur("latency", res.Latency).
			Msg("Case evaluated")
	}

	report.MeanNDCG = stat.Mean(scores, nil)
	if len(scores) > 1 {
		report.StdDevNDCG = stat.StdDev(scores, nil)
	}
	report.MeanLatency = total / time.Duration(len(cases))

	e.logger.Info().
		Int("cases", len(cases)).
		Int("k", e.k).
		Float64("mean_ndcg", report.MeanNDCG).
		Float64("stddev_ndcg", report.StdDevNDCG).
		Int("failed", report.Failed).
		Dur("mean_latency", report.MeanLatency).
		Msg("Evaluation complete")

	return report, nil
}

func (e *Evaluator) runCase(i int, c *Case) CaseResult {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("case-%d", i+1)
	}
	res := CaseResult{Name: name}

	var artists map[string]struct{}
	if len(c.TargetArtists) > 0 {
		artists = make(map[string]struct{}, len(c.TargetArtists))
		for _, a := range c.TargetArtists {
			artists[a] = struct{}{}
		}
	}

	start := time.Now()
	ids, err := e.rec.GetRecommendations(c.Seeds, e.k, artists)
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		e.logger.Warn().Err(err).Str("case", name).Msg("Recommendation failed during evaluation")
		return res
	}

	res.Recommended = ids
	res.NDCG = NDCG(ids, c.Removed, e.k)
	removed := make(map[string]struct{}, len(c.Removed))
	for _, id := range c.Removed {
		removed[id] = struct{}{}
	}
	for _, id := range ids[:min(e.k, len(ids))] {
		if _, ok := removed[id]; ok {
			res.Hits++
		}
	}
	return res
}

// HoldOut splits a playlist into seeds and the last n tracks as the held-out set.
func HoldOut(name string, playlist []string, n int, targetArtists []string) (Case, error) {
	if n <= 0 || n >= len(playlist) {
		return Case{}, fmt.Errorf("hold-out size %d must be between 1 and %d", n, len(playlist)-1)
	}
	cut := len(playlist) - n
	return Case{
		Name:          name,
		Seeds:         append([]string(nil), playlist[:cut]...),
		Removed:       append([]string(nil), playlist[cut:]...),
		TargetArtists: targetArtists,
	}, nil
}
