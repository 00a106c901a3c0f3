// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/socialpulse/internal/middleware"
)

// Router binds a Handler to its routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter wires the handler with the given middleware settings.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the full route tree.
//
// Static routes are registered alongside /{eventId}; chi matches static
// segments first, so /metrics and /stream are never read as event ids.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Ingestion
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Post("/ingest", router.handler.Ingest)
		r.Post("/ingest/batch", router.handler.IngestBatch)

		r.Get("/webhooks/{platform}", router.handler.Webhook)
		r.Post("/webhooks/{platform}", router.handler.Webhook)
	})

	// ========================
	// Live feed
	// ========================
	r.Get("/stream", router.handler.Stream)

	// ========================
	// Reads
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compression)

		r.Get("/platform/{platform}", router.handler.ListByPlatform)
		r.Get("/rollups/{userId}", router.handler.GetRollup)
		r.Get("/{eventId}", router.handler.GetEvent)
	})

	// Events are append-only.
	r.Put("/{eventId}", router.handler.RejectMutation)
	r.Patch("/{eventId}", router.handler.RejectMutation)
	r.Delete("/{eventId}", router.handler.RejectMutation)

	return r
}
