// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/middleware"
)

// slowRequestThreshold marks requests logged at warn by the access log.
const slowRequestThreshold = time.Second

// Router assembles the handler and its middleware into a chi router.
type Router struct {
	handler       *Handler
	authenticator *auth.Middleware
	authorizer    *authz.Middleware
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a router.
//
//nolint:gocritic // logger passed by value for immutability
func NewRouter(handler *Handler, authenticator *auth.Middleware, authorizer *authz.Middleware, chiMw *ChiMiddleware, logger zerolog.Logger) *Router {
	return &Router{
		handler:       handler,
		authenticator: authenticator,
		authorizer:    authorizer,
		chiMiddleware: chiMw,
		logger:        logger,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(router.logger, slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondErrorCode(w, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondErrorCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	h := router.handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		// Probes are unauthenticated and not rate limited
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authenticator.Authenticate)

			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/", h.RealTimeRecommendations)
				r.Get("/active", h.ActiveRecommendations)
				r.Post("/{id}/view", h.MarkViewed)
				r.Post("/{id}/dismiss", h.Dismiss)
				r.Post("/{id}/library", h.MarkAddedToLibrary)
				r.Post("/{id}/feedback", h.ContentFeedback)
			})

			r.Route("/groups/recommendations", func(r chi.Router) {
				r.Get("/", h.ActiveGroupRecommendations)
				r.Post("/{id}/view", h.MarkGroupViewed)
				r.Post("/{id}/dismiss", h.DismissGroup)
				r.Post("/{id}/join", h.MarkJoined)
				r.Post("/{id}/feedback", h.GroupFeedback)
			})

			r.Get("/profile", h.Profile)
			r.Post("/profile/refresh", h.RefreshProfile)

			r.Get("/users/similar", h.SimilarUsers)
			r.Get("/users/{id}/compatibility", h.UserCompatibility)

			r.Route("/admin", func(r chi.Router) {
				r.Use(router.authorizer.AuthorizeRequest)
				r.Post("/generate", h.GenerateAll)
				r.Post("/refresh", h.RefreshActive)
				r.Get("/analytics", h.Analytics)
			})
		})
	})

	return r
}
