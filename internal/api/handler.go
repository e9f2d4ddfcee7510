// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/analytics"
	"github.com/tomtom215/reelmatch/internal/recommend/compatibility"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

// Recommender serves and transitions recommendations. engine.Engine
// implements it.
type Recommender interface {
	GetRealTimeRecommendations(ctx context.Context, userID int64, contextMediaID *int64, limit int) ([]models.RealTimeRecommendation, error)
	ActiveRecommendations(ctx context.Context, userID int64, limit int) ([]models.ContentRecommendation, error)
	ActiveGroupRecommendations(ctx context.Context, userID int64, limit int) ([]models.GroupRecommendation, error)

	MarkViewed(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error)
	MarkAddedToLibrary(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error)
	Dismiss(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error)

	MarkGroupViewed(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error)
	MarkJoined(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error)
	DismissGroup(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error)

	SubmitFeedback(ctx context.Context, userID int64, target models.FeedbackTarget, recID string, rating int, comment string) (*models.RecommendationFeedback, error)
}

// Profiles reads and recomputes preference profiles. preference.Engine
// implements it.
type Profiles interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.PreferenceProfile, error)
	UpdatePreferences(ctx context.Context, userID int64) (float64, error)
}

// Compatibility scores users against each other. compatibility.Engine
// implements it.
type Compatibility interface {
	FindSimilarUsers(ctx context.Context, userID int64, limit int) ([]models.SimilarUser, error)
	Breakdown(ctx context.Context, userA, userB int64) (compatibility.Breakdown, error)
}

// Batches triggers batch generation on demand.
type Batches interface {
	GenerateForAllUsers(ctx context.Context) (scheduler.Summary, error)
	RefreshForActiveUsers(ctx context.Context, hoursBack int) (scheduler.Summary, error)
}

// Reporter produces recommendation analytics.
type Reporter interface {
	Report(ctx context.Context, since, until time.Time) (analytics.Report, error)
}

// ReadinessCheck is one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the services behind the HTTP surface.
type Dependencies struct {
	Recommender   Recommender
	Profiles      Profiles
	Compatibility Compatibility
	Batches       Batches
	Reporter      Reporter
	Readiness     []ReadinessCheck
}

// Handler serves the Reelmatch API.
type Handler struct {
	deps      Dependencies
	cfg       recommend.Config
	clock     recommend.Clock
	logger    zerolog.Logger
	startTime time.Time
	version   string

	// refreshHoursBack is the default window for POST /admin/refresh.
	refreshHoursBack int
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithVersion sets the version reported by the health endpoints.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) { h.version = version }
}

// WithRefreshHoursBack sets the default refresh window for POST /admin/refresh.
func WithRefreshHoursBack(hours int) HandlerOption {
	return func(h *Handler) {
		if hours > 0 {
			h.refreshHoursBack = hours
		}
	}
}

// NewHandler creates the API handler.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewHandler(deps Dependencies, cfg recommend.Config, clock recommend.Clock, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		deps:             deps,
		cfg:              cfg,
		clock:            clock,
		logger:           logger.With().Str("component", "api").Logger(),
		startTime:        clock.Now(),
		version:          "dev",
		refreshHoursBack: defaultRefreshHoursBack,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
