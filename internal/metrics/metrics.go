// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package metrics defines the Prometheus metrics of the service.
//
// Metrics are registered with the default registry through promauto and
// exposed on /metrics by the API router. Helpers named Record* keep label
// values consistent across call sites.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeRanked   = "ranked"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// Catalog Metrics
	CatalogTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_catalog_tracks",
			Help: "Number of tracks in the loaded catalog",
		},
	)

	CatalogDroppedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_catalog_dropped_rows_total",
			Help: "Rows dropped while building the catalog",
		},
		[]string{"reason"}, // "missing_required", "duplicate"
	)

	CatalogCoercedValues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_catalog_coerced_values_total",
			Help: "Feature cells replaced during catalog cleaning",
		},
		[]string{"column"},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_catalog_load_duration_seconds",
			Help:    "Time to load and build the catalog",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_recommendation_duration_seconds",
			Help:    "Time to compute a recommendation list",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendationPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_recommendation_pool_size",
			Help:    "Size of the ranked candidate pool",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	RecommendationSeeds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "encore_recommendation_seeds",
			Help:    "Seed tracks per request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"state"}, // "requested", "resolved"
	)

	// Search Metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_search_requests_total",
			Help: "Track search requests",
		},
		[]string{"result"}, // "hit", "empty"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "encore_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_cache_hits_total",
			Help: "Response cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_cache_misses_total",
			Help: "Response cache misses",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "encore_cache_entries",
			Help: "Entries currently held by a response cache",
		},
		[]string{"cache"},
	)
)

// RecordCatalogBuild records the outcome of a catalog build.
func RecordCatalogBuild(tracks, missingRequired, duplicates int, coerced map[string]int, duration time.Duration) {
	CatalogTracks.Set(float64(tracks))
	CatalogDroppedRows.WithLabelValues("missing_required").Add(float64(missingRequired))
	CatalogDroppedRows.WithLabelValues("duplicate").Add(float64(duplicates))
	for column, n := range coerced {
		CatalogCoercedValues.WithLabelValues(column).Add(float64(n))
	}
	CatalogLoadDuration.Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(fallback bool, requested, resolved, pool int, duration time.Duration) {
	outcome := OutcomeRanked
	if fallback {
		outcome = OutcomeFallback
	}
	RecommendationRequests.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationSeeds.WithLabelValues("requested").Observe(float64(requested))
	RecommendationSeeds.WithLabelValues("resolved").Observe(float64(resolved))
	if !fallback {
		RecommendationPoolSize.Observe(float64(pool))
	}
}

// RecordRecommendationFailure records a request that produced no result.
func RecordRecommendationFailure(rejected bool) {
	if rejected {
		RecommendationRequests.WithLabelValues(OutcomeRejected).Inc()
		return
	}
	RecommendationRequests.WithLabelValues(OutcomeError).Inc()
}

// RecordSearch records a track search.
func RecordSearch(results int) {
	if results == 0 {
		SearchRequests.WithLabelValues("empty").Inc()
		return
	}
	SearchRequests.WithLabelValues("hit").Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate-limited request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheLookup records a cache hit or miss and the current entry count.
func RecordCacheLookup(cache string, hit bool, entries int) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
	CacheEntries.WithLabelValues(cache).Set(float64(entries))
}
