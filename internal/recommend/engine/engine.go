// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package engine composes the generation strategies into real-time and
// persisted recommendations and owns the recommendation lifecycle.
//
// A persisted recommendation moves through
//
//	CREATED -> (VIEWED)? -> (DISMISSED | ADDED_TO_LIBRARY / JOINED)? -> EXPIRED
//
// Flags only ever flip from false to true. Expired records are invisible to
// every query and transition and are removed by CleanupExpired.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/algorithms"
)

// lockStripes bounds the number of per-user transition locks.
const lockStripes = 64

// PreferenceService is the profile access the engine needs.
// *preference.Engine satisfies it.
type PreferenceService interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.PreferenceProfile, error)
	UpdatePreferences(ctx context.Context, userID int64) (float64, error)
	HasSufficientData(ctx context.Context, userID int64) (bool, error)
}

// CompatibilityService scores user pairs. *compatibility.Engine satisfies it.
type CompatibilityService interface {
	algorithms.SimilarUserFinder
	CalculateUserCompatibility(ctx context.Context, userA, userB int64) (float64, error)
}

// Strategies holds one instance of each generation strategy.
type Strategies struct {
	Personal      algorithms.Strategy
	ContentBased  algorithms.Strategy
	Collaborative algorithms.Strategy
	Trending      algorithms.Strategy
}

// DefaultStrategies builds the standard strategy set over repo.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func DefaultStrategies(
	repo recommend.Repository,
	compat algorithms.SimilarUserFinder,
	store cache.Store,
	cfg recommend.Config,
	clock recommend.Clock,
	logger zerolog.Logger,
) Strategies {
	return Strategies{
		Personal:      algorithms.NewPersonal(repo, cfg),
		ContentBased:  algorithms.NewContentBased(repo, cfg),
		Collaborative: algorithms.NewCollaborative(compat, repo, repo, cfg),
		Trending:      algorithms.NewTrending(repo, store, clock, cfg, logger),
	}
}

// Engine generates, persists and tracks recommendations. It is safe for concurrent use.
type Engine struct {
	repo          recommend.Repository
	preferences   PreferenceService
	compatibility CompatibilityService
	strategies    Strategies
	cfg           recommend.Config
	clock         recommend.Clock
	logger        zerolog.Logger
	feedback      FeedbackObserver

	locks [lockStripes]sync.Mutex
}

// FeedbackObserver is notified after a feedback entry has been saved.
type FeedbackObserver interface {
	FeedbackRecorded(ctx context.Context, fb *models.RecommendationFeedback)
}

// Option configures an Engine.
type Option func(*Engine)

// WithFeedbackObserver registers an observer for saved feedback.
func WithFeedbackObserver(o FeedbackObserver) Option {
	return func(e *Engine) { e.feedback = o }
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewEngine(
	repo recommend.Repository,
	preferences PreferenceService,
	compat CompatibilityService,
	strategies Strategies,
	cfg recommend.Config,
	clock recommend.Clock,
	logger zerolog.Logger,
	opts ...Option,
) *Engine {
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	e := &Engine{
		repo:          repo,
		preferences:   preferences,
		compatibility: compat,
		strategies:    strategies,
		cfg:           cfg,
		clock:         clock,
		logger:        logger.With().Str("component", "recommendation_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() recommend.Config {
	return e.cfg
}

// lockUser serializes state transitions for one user.
func (e *Engine) lockUser(userID int64) func() {
	idx := userID % lockStripes
	if idx < 0 {
		idx = -idx
	}
	mu := &e.locks[idx]
	mu.Lock()
	return mu.Unlock
}

// userContext is everything the strategies need about a user.
type userContext struct {
	profile    *models.PreferenceProfile
	history    []models.InteractionRecord
	sufficient bool
}

func (e *Engine) loadUser(ctx context.Context, userID int64) (userContext, error) {
	profile, err := e.preferences.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return userContext{}, fmt.Errorf("load profile for user %d: %w", userID, err)
	}
	sufficient, err := e.preferences.HasSufficientData(ctx, userID)
	if err != nil {
		return userContext{}, err
	}
	history, err := e.repo.FindInteractionsByUser(ctx, userID)
	if err != nil {
		return userContext{}, fmt.Errorf("load interactions for user %d: %w", userID, err)
	}
	return userContext{profile: profile, history: history, sufficient: sufficient}, nil
}
