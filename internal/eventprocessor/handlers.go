// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

// SimilarUsersInvalidator drops cached similar-user lists.
// *compatibility.Engine satisfies it.
type SimilarUsersInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

// TrendingInvalidator drops the cached trending pool.
// *algorithms.Trending satisfies it.
type TrendingInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidationHandlers keep the derived caches in step with the
// events that make them stale. Either dependency may be nil.
type CacheInvalidationHandlers struct {
	similar  SimilarUsersInvalidator
	trending TrendingInvalidator
	logger   zerolog.Logger
}

// NewCacheInvalidationHandlers creates the handlers.
//
//nolint:gocritic // logger passed by value for immutability
func NewCacheInvalidationHandlers(similar SimilarUsersInvalidator, trending TrendingInvalidator, logger zerolog.Logger) *CacheInvalidationHandlers {
	return &CacheInvalidationHandlers{
		similar:  similar,
		trending: trending,
		logger:   logger.With().Str("component", "cache_invalidation").Logger(),
	}
}

// Register adds the handlers to r, consuming from sub.
func (h *CacheInvalidationHandlers) Register(r *Router, sub message.Subscriber) {
	if h.similar != nil {
		r.AddConsumerHandler("invalidate_similar_users", TopicProfileUpdated, sub, h.HandleProfileUpdated)
	}
	if h.trending != nil {
		r.AddConsumerHandler("invalidate_trending", TopicBatchCompleted, sub, h.HandleBatchCompleted)
	}
}

// HandleProfileUpdated drops the updated user's similar-user lists.
func (h *CacheInvalidationHandlers) HandleProfileUpdated(msg *message.Message) error {
	e, err := DecodeProfileUpdated(msg)
	if err != nil {
		// A payload that cannot be decoded will never succeed.
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("discarding malformed profile event")
		return nil
	}
	if err := h.similar.InvalidateUser(msg.Context(), e.UserID); err != nil {
		return fmt.Errorf("invalidate similar users for %d: %w", e.UserID, err)
	}
	h.logger.Debug().Int64("user_id", e.UserID).Msg("similar-user cache invalidated")
	return nil
}

// HandleBatchCompleted drops the trending pool after new recommendations
// were persisted.
func (h *CacheInvalidationHandlers) HandleBatchCompleted(msg *message.Message) error {
	e, err := DecodeBatchCompleted(msg)
	if err != nil {
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("discarding malformed batch event")
		return nil
	}
	if e.TotalRecommendations == 0 {
		return nil
	}
	if err := h.trending.Invalidate(msg.Context()); err != nil {
		return fmt.Errorf("invalidate trending: %w", err)
	}
	h.logger.Debug().Str("kind", e.Kind).Msg("trending cache invalidated")
	return nil
}
