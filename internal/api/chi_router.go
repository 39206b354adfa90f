// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package api serves the recommendation engine over HTTP.

Routes:

	POST /api/v1/recommendations        continue a seed playlist
	GET  /api/v1/tracks/search          fuzzy search by title and artist
	GET  /api/v1/tracks/resolve         best match for a title and artist
	GET  /api/v1/tracks/popular         most popular tracks, optionally per genre
	GET  /api/v1/tracks/{trackID}       one track with its features
	GET  /api/v1/catalog                catalog and engine statistics
	GET  /api/v1/health/live            liveness
	GET  /api/v1/health/ready           readiness
	GET  /metrics                       Prometheus metrics

Every JSON response uses the APIResponse envelope. The data endpoints are
rate limited per client IP; health and metrics are not.
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/middleware"
)

// slowRequestThreshold is the latency above which requests are logged at warn.
const slowRequestThreshold = time.Second

// compressionLevel is the gzip level for JSON responses.
const compressionLevel = 5

// Router wires the handler into a chi mux.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a router for h using the security settings in cfg.
func NewRouter(h *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:    h,
		middleware: NewChiMiddleware(ChiMiddlewareConfigFrom(cfg.Security)),
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.middleware.CORS())
	r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil, nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	h := router.handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimit())

			r.Post("/recommendations", h.Recommendations)
			r.Get("/catalog", h.CatalogInfo)

			r.Route("/tracks", func(r chi.Router) {
				r.Get("/search", h.SearchTracks)
				r.Get("/resolve", h.ResolveTrack)
				r.Get("/popular", h.PopularTracks)
				r.Get("/{trackID}", h.Track)
			})
		})
	})

	return r
}
