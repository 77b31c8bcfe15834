// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// word category game API.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wordcats/internal/handlers"
	"wordcats/internal/middleware"
	"wordcats/internal/platform"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the router wires together. Limiter and Metrics
// may be nil.
type Deps struct {
	API      *handlers.API
	Identity platform.Identity
	Limiter  *middleware.RateLimiter
	Metrics  prometheus.Gatherer
	Health   Pinger
}

// New creates and returns the configured Chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler(d.Health))
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIHeaders)
		r.Use(middleware.Identify(d.Identity))
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		r.Get("/categories", d.API.ListCategories)
		r.Get("/categories/{code}", d.API.GetCategory)
		r.Get("/stats", d.API.Stats)

		// Host platform callbacks, authenticated by token.
		r.Post("/hooks/post-deleted", d.API.PostDeleted)

		// Player actions.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePlayer)
			r.Post("/categories", d.API.CreateCategory)
			r.Post("/categories/{code}/plays", d.API.RecordPlay)
			r.Delete("/categories/{code}", d.API.DeleteCategory)
			r.Delete("/me", d.API.DeleteAccount)
		})
	})

	return r
}

// healthHandler reports ok when the store answers a ping within a second.
func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
