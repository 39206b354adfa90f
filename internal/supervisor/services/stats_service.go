// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/recommend"
)

const defaultStatsInterval = 5 * time.Minute

// StatsSource is satisfied by *recommend.Engine.
type StatsSource interface {
	Stats() recommend.Stats
}

// StatsService periodically logs engine counters and the traffic since the
// previous report.
type StatsService struct {
	source   StatsSource
	interval time.Duration
	logger   zerolog.Logger
	last     recommend.Stats
	name     string
}

// NewStatsService creates the reporter. A non-positive interval uses 5m.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStatsService(source StatsSource, interval time.Duration, logger zerolog.Logger) *StatsService {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &StatsService{
		source:   source,
		interval: interval,
		logger:   logger.With().Str("service", "engine-stats").Logger(),
		name:     "engine-stats",
	}
}

// Serve implements suture.Service. A final report is logged on shutdown.
func (s *StatsService) Serve(ctx context.Context) error {
	s.last = s.source.Stats()
	s.logger.Info().
		Int("tracks", s.last.Tracks).
		Dur("interval", s.interval).
		Msg("Engine stats reporter started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.report()
			return ctx.Err()
		case <-ticker.C:
			s.report()
		}
	}
}

func (s *StatsService) report() {
	cur := s.source.Stats()
	s.logger.Info().
		Int64("requests", cur.Requests).
		Int64("fallbacks", cur.Fallbacks).
		Int64("rejected", cur.Rejected).
		Int64("requests_delta", cur.Requests-s.last.Requests).
		Int64("fallbacks_delta", cur.Fallbacks-s.last.Fallbacks).
		Msg("Engine stats")
	s.last = cur
}

// String names the service in supervisor events.
func (s *StatsService) String() string {
	return s.name
}
