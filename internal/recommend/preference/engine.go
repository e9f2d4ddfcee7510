// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package preference derives per-user taste profiles from interaction history.
//
// A profile is fully recomputed, never incrementally patched: UpdatePreferences
// reads every interaction of the user, scores each genre, platform and release
// decade, classifies the viewing personality and replaces the stored profile
// under the user's write lock.
package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// ProfileObserver is notified after a profile has been recomputed and saved.
type ProfileObserver interface {
	ProfileUpdated(ctx context.Context, profile *models.PreferenceProfile)
}

// Engine builds and refreshes preference profiles. It is safe for concurrent use.
type Engine struct {
	interactions recommend.InteractionReader
	media        recommend.MediaReader
	store        *storage.ProfileStore
	cfg          recommend.Config
	clock        recommend.Clock
	observer     ProfileObserver
	logger       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for profile updates.
func WithObserver(o ProfileObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates a preference engine.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewEngine(
	interactions recommend.InteractionReader,
	media recommend.MediaReader,
	store *storage.ProfileStore,
	cfg recommend.Config,
	clock recommend.Clock,
	logger zerolog.Logger,
	opts ...Option,
) *Engine {
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	e := &Engine{
		interactions: interactions,
		media:        media,
		store:        store,
		cfg:          cfg,
		clock:        clock,
		logger:       logger.With().Str("component", "preference").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetOrCreateProfile returns the user's profile, creating an empty one on first access.
func (e *Engine) GetOrCreateProfile(ctx context.Context, userID int64) (*models.PreferenceProfile, error) {
	return e.store.GetOrCreate(ctx, userID)
}

// UpdatePreferences recomputes and persists the user's full profile and
// returns the new confidence score.
func (e *Engine) UpdatePreferences(ctx context.Context, userID int64) (float64, error) {
	start := time.Now()

	history, media, err := e.loadHistory(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := e.clock.Now()
	var analysis Analysis
	profile, err := e.store.Update(ctx, userID, func(p *models.PreferenceProfile) error {
		analysis = Analyze(e.cfg, history, media, p.CreatedAt, now)
		analysis.apply(p, now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update preferences for user %d: %w", userID, err)
	}

	metrics.RecordProfileUpdate(string(profile.ViewingPersonality), time.Since(start))
	e.logger.Debug().
		Int64("user_id", userID).
		Int("interactions", profile.TotalInteractions).
		Str("personality", string(profile.ViewingPersonality)).
		Float64("confidence", profile.ConfidenceScore).
		Msg("preferences updated")

	if e.observer != nil {
		e.observer.ProfileUpdated(ctx, profile.Clone())
	}
	return profile.ConfidenceScore, nil
}

// DeterminePersonality classifies the user from current interactions without persisting.
func (e *Engine) DeterminePersonality(ctx context.Context, userID int64) (models.ViewingPersonality, error) {
	a, err := e.analyze(ctx, userID)
	if err != nil {
		return models.PersonalityCasual, err
	}
	return a.Personality, nil
}

// CalculateConfidence computes the user's confidence from current interactions
// without persisting. Profile age is taken from the stored profile, or zero
// when none exists yet.
func (e *Engine) CalculateConfidence(ctx context.Context, userID int64) (float64, error) {
	a, err := e.analyze(ctx, userID)
	if err != nil {
		return 0, err
	}
	return a.Confidence, nil
}

// HasSufficientData reports whether the user has enough interactions for
// personalized recommendations.
func (e *Engine) HasSufficientData(ctx context.Context, userID int64) (bool, error) {
	n, err := e.interactions.CountInteractionsByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count interactions for user %d: %w", userID, err)
	}
	return n >= e.cfg.Thresholds.MinInteractionsForRecommendations, nil
}

func (e *Engine) analyze(ctx context.Context, userID int64) (Analysis, error) {
	history, media, err := e.loadHistory(ctx, userID)
	if err != nil {
		return Analysis{}, err
	}

	now := e.clock.Now()
	createdAt := now
	if p, err := e.store.Load(ctx, userID); err == nil {
		createdAt = p.CreatedAt
	} else if !errors.Is(err, recommend.ErrNotFound) {
		return Analysis{}, err
	}
	return Analyze(e.cfg, history, media, createdAt, now), nil
}

// loadHistory fetches the user's interactions and resolves their media.
func (e *Engine) loadHistory(ctx context.Context, userID int64) ([]models.InteractionRecord, map[int64]*models.Media, error) {
	history, err := e.interactions.FindInteractionsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load interactions for user %d: %w", userID, err)
	}

	media := make(map[int64]*models.Media, len(history))
	for i := range history {
		id := history[i].MediaID
		if _, seen := media[id]; seen {
			continue
		}
		m, err := e.media.FindMediaByID(ctx, id)
		if errors.Is(err, recommend.ErrNotFound) {
			e.logger.Warn().Int64("user_id", userID).Int64("media_id", id).Msg("interaction references unknown media")
			media[id] = nil
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("load media %d: %w", id, err)
		}
		media[id] = m
	}
	return history, media, nil
}
