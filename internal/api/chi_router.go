// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mediashelf/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware factory uses defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(RequestLogging())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Reads
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/users/{userID}/stats", router.handler.UserStats)
			r.Get("/users/{userID}/achievements", router.handler.UserAchievements)
			r.Get("/users/{userID}/activity", router.handler.Activity)
			r.Get("/platform/stats", router.handler.PlatformStats)
			r.Get("/media/{category}/{mediaID}", router.handler.GetMedia)
		})

		// Writes
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())
			r.Post("/users/{userID}/entries/{category}/{mediaID}", router.handler.AddEntry)
			r.Patch("/users/{userID}/entries/{category}/{mediaID}", router.handler.UpdateEntry)
			r.Delete("/users/{userID}/entries/{category}/{mediaID}", router.handler.RemoveEntry)
			r.Delete("/users/{userID}/activity/{category}/{mediaID}", router.handler.DeleteActivity)
			r.Put("/media/{category}/{mediaID}", router.handler.PutMedia)
			r.Post("/media/{category}/{mediaID}/refresh", router.handler.RefreshMedia)
		})

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAdmin())
			r.Post("/achievements/recompute", router.handler.RecomputeAchievements)
			r.Post("/stats/rebuild", router.handler.RebuildPlatformStats)
			r.Post("/stats/rebuild/{userID}", router.handler.RebuildUserStats)
			r.Get("/audit", router.handler.AuditEvents)
		})
	})

	return r
}
