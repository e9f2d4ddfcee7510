// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package compatibility scores how well two users' tastes align and finds
// each user's most compatible peers.
//
// Scores combine cosine similarity of the genre, platform and era preference
// vectors with a personality matrix term. Pair scores are cached under an
// order-independent key, and similar-user lists are cached per user and limit
// until the user's profile changes.
package compatibility

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const (
	pairCacheName    = "compatibility"
	similarCacheName = "similar_users"
)

// ProfileSource is the profile access the engine needs. *storage.ProfileStore
// satisfies it.
type ProfileSource interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.PreferenceProfile, error)
	FindCandidateProfiles(ctx context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error)
}

// Engine computes user compatibility. It is safe for concurrent use.
type Engine struct {
	profiles ProfileSource
	users    recommend.UserReader
	cache    cache.Store
	cfg      recommend.Config
	logger   zerolog.Logger
}

// NewEngine creates a compatibility engine. A nil store disables caching.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewEngine(profiles ProfileSource, users recommend.UserReader, store cache.Store, cfg recommend.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		profiles: profiles,
		users:    users,
		cache:    store,
		cfg:      cfg,
		logger:   logger.With().Str("component", "compatibility").Logger(),
	}
}

// PairKey returns the cache key for a user pair. The key is the same for (a, b) and (b, a).
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("compat:%d:%d", a, b)
}

// mirrorKey is PairKey with the ids reversed. A pair score is stored under
// both keys and only counts as cached while both exist, so dropping the
// compat:{id}: prefix of either user invalidates it.
func mirrorKey(a, b int64) string {
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("compat:%d:%d", a, b)
}

func pairPrefix(userID int64) string {
	return fmt.Sprintf("compat:%d:", userID)
}

func similarKey(userID int64, limit int) string {
	return fmt.Sprintf("similar:%d:%d", userID, limit)
}

func similarPrefix(userID int64) string {
	return fmt.Sprintf("similar:%d:", userID)
}

// CalculateUserCompatibility returns the compatibility of two users in [0, 1].
// Missing profiles are created empty. Unknown users fail with ErrNotFound.
func (e *Engine) CalculateUserCompatibility(ctx context.Context, userA, userB int64) (float64, error) {
	if v, ok := e.cachedScore(ctx, userA, userB); ok {
		return v, nil
	}

	a, err := e.profiles.GetOrCreate(ctx, userA)
	if err != nil {
		return 0, fmt.Errorf("load profile for user %d: %w", userA, err)
	}
	b, err := e.profiles.GetOrCreate(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("load profile for user %d: %w", userB, err)
	}

	score := Score(e.cfg, a, b).Score
	e.store(ctx, userA, userB, score)
	return score, nil
}

// Breakdown returns the per-dimension terms for a user pair. It is not cached.
func (e *Engine) Breakdown(ctx context.Context, userA, userB int64) (Breakdown, error) {
	a, err := e.profiles.GetOrCreate(ctx, userA)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load profile for user %d: %w", userA, err)
	}
	b, err := e.profiles.GetOrCreate(ctx, userB)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load profile for user %d: %w", userB, err)
	}
	return Score(e.cfg, a, b), nil
}

// FindSimilarUsers returns up to limit users whose compatibility with userID
// is at least MinSimilarityScore, best first. Ties are broken by user id.
func (e *Engine) FindSimilarUsers(ctx context.Context, userID int64, limit int) ([]models.SimilarUser, error) {
	if limit <= 0 {
		return []models.SimilarUser{}, nil
	}

	key := similarKey(userID, limit)
	if e.cache != nil {
		cached, ok, err := cache.GetJSON[[]models.SimilarUser](ctx, e.cache, key)
		switch {
		case err != nil:
			e.logger.Warn().Err(err).Str("key", key).Msg("similar users cache read failed")
		case ok:
			metrics.RecordCacheHit(similarCacheName)
			return cached, nil
		default:
			metrics.RecordCacheMiss(similarCacheName)
		}
	}

	self, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile for user %d: %w", userID, err)
	}

	th := e.cfg.Thresholds
	candidates, err := e.profiles.FindCandidateProfiles(ctx, userID, th.MinConfidenceThreshold, th.MinInteractionsForRecommendations)
	if err != nil {
		return nil, fmt.Errorf("find candidate profiles: %w", err)
	}

	similar := make([]models.SimilarUser, 0, len(candidates))
	for i := range candidates {
		other := &candidates[i]
		if other.UserID == userID {
			continue
		}
		score := Score(e.cfg, self, other).Score
		if score < th.MinSimilarityScore {
			continue
		}
		similar = append(similar, models.SimilarUser{UserID: other.UserID, Score: score})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].UserID < similar[j].UserID
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}

	if len(similar) > 0 {
		ids := make([]int64, len(similar))
		for i := range similar {
			ids[i] = similar[i].UserID
		}
		names, err := e.users.FindUsernames(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve usernames: %w", err)
		}
		for i := range similar {
			similar[i].Username = names[similar[i].UserID]
		}
	}

	if e.cache != nil {
		if err := cache.SetJSON(ctx, e.cache, key, similar, e.cfg.CacheTTL); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("similar users cache write failed")
		}
	}
	return similar, nil
}

// InvalidateUser drops every cached similar-user list and pair score that
// involves userID.
func (e *Engine) InvalidateUser(ctx context.Context, userID int64) error {
	if e.cache == nil {
		return nil
	}
	metrics.RecordCacheInvalidation(similarCacheName)
	if err := e.cache.DeletePrefix(ctx, similarPrefix(userID)); err != nil {
		return fmt.Errorf("invalidate similar users for %d: %w", userID, err)
	}
	metrics.RecordCacheInvalidation(pairCacheName)
	if err := e.cache.DeletePrefix(ctx, pairPrefix(userID)); err != nil {
		return fmt.Errorf("invalidate pair scores for %d: %w", userID, err)
	}
	return nil
}

func (e *Engine) cachedScore(ctx context.Context, a, b int64) (float64, bool) {
	if e.cache == nil {
		return 0, false
	}
	key := PairKey(a, b)
	v, ok, err := cache.GetJSON[float64](ctx, e.cache, key)
	if err == nil && ok && a != b {
		_, ok, err = e.cache.Get(ctx, mirrorKey(a, b))
	}
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("compatibility cache read failed")
		return 0, false
	}
	if ok {
		metrics.RecordCacheHit(pairCacheName)
	} else {
		metrics.RecordCacheMiss(pairCacheName)
	}
	return v, ok
}

func (e *Engine) store(ctx context.Context, a, b int64, score float64) {
	if e.cache == nil {
		return
	}
	keys := []string{PairKey(a, b)}
	if a != b {
		keys = append(keys, mirrorKey(a, b))
	}
	for _, key := range keys {
		if err := cache.SetJSON(ctx, e.cache, key, score, e.cfg.CacheTTL); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("compatibility cache write failed")
			return
		}
	}
}
