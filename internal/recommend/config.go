// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tunables of the recommendation core.
//
// Config is a plain value. Engines receive a copy at construction and never
// modify it, so a running engine's thresholds cannot change underneath it.
type Config struct {
	// Thresholds are the score floors applied across the pipeline.
	Thresholds ThresholdConfig `json:"thresholds"`

	// Weights defines per-dimension contributions to relevance and compatibility.
	Weights DimensionWeights `json:"weights"`

	// Personality contains the personality classification and compatibility constants.
	Personality PersonalityConfig `json:"personality"`

	// Strategy contains candidate generation parameters.
	Strategy StrategyConfig `json:"strategy"`

	// Expiry contains recommendation lifetimes.
	Expiry ExpiryConfig `json:"expiry"`

	// TimeDecayFactor is the per-day exponential decay rate applied to older
	// interactions. Default: 0.01.
	TimeDecayFactor float64 `json:"time_decay_factor"`

	// MaxSameTypeRecommendations caps how many surfaced recommendations may
	// share one genre label. Default: 3.
	MaxSameTypeRecommendations int `json:"max_same_type_recommendations"`

	// CacheTTL bounds the staleness of cached compatibility, similar-user and
	// trending results. Default: 15m.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// ThresholdConfig holds score floors.
type ThresholdConfig struct {
	// MinRelevanceScore is the floor for keeping a content candidate. Default: 0.3.
	MinRelevanceScore float64 `json:"min_relevance_score"`

	// MinSimilarityScore is the floor for keeping a user or group match. Default: 0.5.
	MinSimilarityScore float64 `json:"min_similarity_score"`

	// MinConfidenceThreshold is the floor for a profile to act as a
	// collaborative-filtering source. Default: 0.3.
	MinConfidenceThreshold float64 `json:"min_confidence_threshold"`

	// MinInteractionsForRecommendations is the interaction count that counts
	// as sufficient data for personalized results. Default: 5.
	MinInteractionsForRecommendations int `json:"min_interactions_for_recommendations"`

	// GroupMemberMinCompatibility is the individual compatibility a group member
	// must exceed to count toward the group average. Default: 0.3.
	GroupMemberMinCompatibility float64 `json:"group_member_min_compatibility"`
}

// DimensionWeights are the per-dimension weights. They are normalized before
// use, so they do not need to sum to 1.0.
type DimensionWeights struct {
	// Genre weights genre alignment and genre vector similarity. Default: 0.4.
	Genre float64 `json:"genre"`

	// Platform weights platform alignment and platform vector similarity. Default: 0.2.
	Platform float64 `json:"platform"`

	// Era weights release-decade alignment and era vector similarity. Default: 0.2.
	Era float64 `json:"era"`

	// Rating weights closeness of media rating to the user's average rating
	// in relevance scoring. Default: 0.2.
	Rating float64 `json:"rating"`

	// Personality weights the personality term in compatibility. Default: 0.2.
	Personality float64 `json:"personality"`
}

// RelevanceWeights are the normalized weights used by content relevance scoring.
type RelevanceWeights struct {
	Genre, Platform, Era, Rating float64
}

// CompatibilityWeights are the normalized weights used by user compatibility.
type CompatibilityWeights struct {
	Genre, Platform, Era, Personality float64
}

// Relevance returns genre/platform/era/rating weights normalized to sum to 1.0.
// All-zero weights fall back to an equal split.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w DimensionWeights) Relevance() RelevanceWeights {
	sum := w.Genre + w.Platform + w.Era + w.Rating
	if sum <= 0 {
		return RelevanceWeights{Genre: 0.25, Platform: 0.25, Era: 0.25, Rating: 0.25}
	}
	return RelevanceWeights{
		Genre:    w.Genre / sum,
		Platform: w.Platform / sum,
		Era:      w.Era / sum,
		Rating:   w.Rating / sum,
	}
}

// Compatibility returns genre/platform/era/personality weights normalized to sum to 1.0.
// All-zero weights fall back to an equal split.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w DimensionWeights) Compatibility() CompatibilityWeights {
	sum := w.Genre + w.Platform + w.Era + w.Personality
	if sum <= 0 {
		return CompatibilityWeights{Genre: 0.25, Platform: 0.25, Era: 0.25, Personality: 0.25}
	}
	return CompatibilityWeights{
		Genre:       w.Genre / sum,
		Platform:    w.Platform / sum,
		Era:         w.Era / sum,
		Personality: w.Personality / sum,
	}
}

// PersonalityConfig holds the personality classifier thresholds and the
// compatibility matrix values. These are tunable constants, not derived values.
type PersonalityConfig struct {
	// MinInteractions is the count below which a user is always CASUAL. Default: 5.
	MinInteractions int `json:"min_interactions"`

	// BingeCompletionRate is the completion rate a binge watcher must exceed. Default: 0.8.
	BingeCompletionRate float64 `json:"binge_completion_rate"`

	// BingeLongSessionShare is the minimum share of long sessions for a binge
	// watcher. Default: 0.5.
	BingeLongSessionShare float64 `json:"binge_long_session_share"`

	// LongSessionCompletion is the completion percentage (0-100) an interaction
	// needs to count as a long session. Default: 90.
	LongSessionCompletion float64 `json:"long_session_completion"`

	// LongSessionWindow is the maximum start-to-finish span of a long session. Default: 48h.
	LongSessionWindow time.Duration `json:"long_session_window"`

	// ExplorerDiversity is the genre diversity an explorer must exceed. Default: 0.7.
	ExplorerDiversity float64 `json:"explorer_diversity"`

	// CriticRatingVariance is the rating variance (0-10 scale) a critic must exceed. Default: 1.5.
	CriticRatingVariance float64 `json:"critic_rating_variance"`

	// CriticMinRatings is the minimum number of ratings for a critic. Default: 5.
	CriticMinRatings int `json:"critic_min_ratings"`

	// SameCompatibility is the compatibility of two identical personalities. Default: 1.0.
	SameCompatibility float64 `json:"same_compatibility"`

	// CasualCompatibility is the compatibility of CASUAL with any other personality. Default: 0.8.
	CasualCompatibility float64 `json:"casual_compatibility"`

	// MediumCompatibility is the compatibility of other cross-personality pairs. Default: 0.6.
	MediumCompatibility float64 `json:"medium_compatibility"`
}

// StrategyConfig holds candidate generation parameters.
type StrategyConfig struct {
	// CollaborativeFilteringUserCount is how many similar users are consulted. Default: 10.
	CollaborativeFilteringUserCount int `json:"collaborative_filtering_user_count"`

	// CollaborativeMinPeerRating is the rating (1-10) a peer must have given an
	// item for it to count. Default: 7.
	CollaborativeMinPeerRating int `json:"collaborative_min_peer_rating"`

	// PersonalGenreThreshold is the genre preference needed to scan that genre. Default: 0.5.
	PersonalGenreThreshold float64 `json:"personal_genre_threshold"`

	// MaxCandidatesPerStrategy caps the output of each strategy. Default: 20.
	MaxCandidatesPerStrategy int `json:"max_candidates_per_strategy"`

	// BatchRecommendationLimit is how many content recommendations a batch run
	// persists per user. Default: 20.
	BatchRecommendationLimit int `json:"batch_recommendation_limit"`

	// MaxGroupRecommendations caps group recommendations per user. Default: 5.
	MaxGroupRecommendations int `json:"max_group_recommendations"`

	// TrendingWindow is how far back trending counts look. Default: 168h.
	TrendingWindow time.Duration `json:"trending_window"`

	// TrendingBaseRelevance scales trending popularity into a relevance score. Default: 0.6.
	TrendingBaseRelevance float64 `json:"trending_base_relevance"`

	// DefaultLimit is the real-time result size when none is requested. Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit bounds the requested real-time result size. Default: 100.
	MaxLimit int `json:"max_limit"`

	// StrategyTimeout bounds each strategy during real-time generation. Default: 5s.
	StrategyTimeout time.Duration `json:"strategy_timeout"`
}

// ExpiryConfig holds recommendation lifetimes.
type ExpiryConfig struct {
	// ContentRecommendationExpiry is the lifetime of a content recommendation. Default: 168h.
	ContentRecommendationExpiry time.Duration `json:"content_recommendation_expiry"`

	// GroupRecommendationExpiry is the lifetime of a group recommendation. Default: 336h.
	GroupRecommendationExpiry time.Duration `json:"group_recommendation_expiry"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds: ThresholdConfig{
			MinRelevanceScore:                 0.3,
			MinSimilarityScore:                0.5,
			MinConfidenceThreshold:            0.3,
			MinInteractionsForRecommendations: 5,
			GroupMemberMinCompatibility:       0.3,
		},
		Weights: DimensionWeights{
			Genre:       0.4,
			Platform:    0.2,
			Era:         0.2,
			Rating:      0.2,
			Personality: 0.2,
		},
		Personality: PersonalityConfig{
			MinInteractions:       5,
			BingeCompletionRate:   0.8,
			BingeLongSessionShare: 0.5,
			LongSessionCompletion: 90,
			LongSessionWindow:     48 * time.Hour,
			ExplorerDiversity:     0.7,
			CriticRatingVariance:  1.5,
			CriticMinRatings:      5,
			SameCompatibility:     1.0,
			CasualCompatibility:   0.8,
			MediumCompatibility:   0.6,
		},
		Strategy: StrategyConfig{
			CollaborativeFilteringUserCount: 10,
			CollaborativeMinPeerRating:      7,
			PersonalGenreThreshold:          0.5,
			MaxCandidatesPerStrategy:        20,
			BatchRecommendationLimit:        20,
			MaxGroupRecommendations:         5,
			TrendingWindow:                  7 * 24 * time.Hour,
			TrendingBaseRelevance:           0.6,
			DefaultLimit:                    10,
			MaxLimit:                        100,
			StrategyTimeout:                 5 * time.Second,
		},
		Expiry: ExpiryConfig{
			ContentRecommendationExpiry: 7 * 24 * time.Hour,
			GroupRecommendationExpiry:   14 * 24 * time.Hour,
		},
		TimeDecayFactor:            0.01,
		MaxSameTypeRecommendations: 3,
		CacheTTL:                   15 * time.Minute,
	}
}

// Validate checks the configuration for invalid values.
//
//nolint:gocritic,gocyclo // value receiver is intentional; flat list of range checks
func (c Config) Validate() error {
	unit := []struct {
		name  string
		value float64
	}{
		{"thresholds.min_relevance_score", c.Thresholds.MinRelevanceScore},
		{"thresholds.min_similarity_score", c.Thresholds.MinSimilarityScore},
		{"thresholds.min_confidence_threshold", c.Thresholds.MinConfidenceThreshold},
		{"thresholds.group_member_min_compatibility", c.Thresholds.GroupMemberMinCompatibility},
		{"personality.binge_completion_rate", c.Personality.BingeCompletionRate},
		{"personality.binge_long_session_share", c.Personality.BingeLongSessionShare},
		{"personality.explorer_diversity", c.Personality.ExplorerDiversity},
		{"personality.same_compatibility", c.Personality.SameCompatibility},
		{"personality.casual_compatibility", c.Personality.CasualCompatibility},
		{"personality.medium_compatibility", c.Personality.MediumCompatibility},
		{"strategy.personal_genre_threshold", c.Strategy.PersonalGenreThreshold},
		{"strategy.trending_base_relevance", c.Strategy.TrendingBaseRelevance},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", u.name, u.value)
		}
	}

	weights := []struct {
		name  string
		value float64
	}{
		{"weights.genre", c.Weights.Genre},
		{"weights.platform", c.Weights.Platform},
		{"weights.era", c.Weights.Era},
		{"weights.rating", c.Weights.Rating},
		{"weights.personality", c.Weights.Personality},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", w.name, w.value)
		}
	}

	if c.Thresholds.MinInteractionsForRecommendations < 0 {
		return fmt.Errorf("thresholds.min_interactions_for_recommendations must be non-negative, got %d",
			c.Thresholds.MinInteractionsForRecommendations)
	}
	if c.Personality.MinInteractions < 0 {
		return fmt.Errorf("personality.min_interactions must be non-negative, got %d", c.Personality.MinInteractions)
	}
	if c.Personality.CriticMinRatings < 0 {
		return fmt.Errorf("personality.critic_min_ratings must be non-negative, got %d", c.Personality.CriticMinRatings)
	}
	if c.Personality.CriticRatingVariance < 0 {
		return fmt.Errorf("personality.critic_rating_variance must be non-negative, got %f", c.Personality.CriticRatingVariance)
	}
	if c.Personality.LongSessionCompletion < 0 || c.Personality.LongSessionCompletion > 100 {
		return fmt.Errorf("personality.long_session_completion must be in [0, 100], got %f", c.Personality.LongSessionCompletion)
	}
	if c.Personality.LongSessionWindow <= 0 {
		return fmt.Errorf("personality.long_session_window must be positive, got %v", c.Personality.LongSessionWindow)
	}

	if c.TimeDecayFactor < 0 {
		return fmt.Errorf("time_decay_factor must be non-negative, got %f", c.TimeDecayFactor)
	}
	if c.MaxSameTypeRecommendations < 1 {
		return fmt.Errorf("max_same_type_recommendations must be positive, got %d", c.MaxSameTypeRecommendations)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}

	s := c.Strategy
	if s.CollaborativeFilteringUserCount < 1 {
		return fmt.Errorf("strategy.collaborative_filtering_user_count must be positive, got %d", s.CollaborativeFilteringUserCount)
	}
	if s.CollaborativeMinPeerRating < 1 || s.CollaborativeMinPeerRating > 10 {
		return fmt.Errorf("strategy.collaborative_min_peer_rating must be in [1, 10], got %d", s.CollaborativeMinPeerRating)
	}
	if s.MaxCandidatesPerStrategy < 1 {
		return fmt.Errorf("strategy.max_candidates_per_strategy must be positive, got %d", s.MaxCandidatesPerStrategy)
	}
	if s.BatchRecommendationLimit < 1 {
		return fmt.Errorf("strategy.batch_recommendation_limit must be positive, got %d", s.BatchRecommendationLimit)
	}
	if s.MaxGroupRecommendations < 0 {
		return fmt.Errorf("strategy.max_group_recommendations must be non-negative, got %d", s.MaxGroupRecommendations)
	}
	if s.TrendingWindow <= 0 {
		return fmt.Errorf("strategy.trending_window must be positive, got %v", s.TrendingWindow)
	}
	if s.DefaultLimit < 1 {
		return fmt.Errorf("strategy.default_limit must be positive, got %d", s.DefaultLimit)
	}
	if s.MaxLimit < s.DefaultLimit {
		return fmt.Errorf("strategy.max_limit must be >= strategy.default_limit, got %d < %d", s.MaxLimit, s.DefaultLimit)
	}
	if s.StrategyTimeout <= 0 {
		return fmt.Errorf("strategy.strategy_timeout must be positive, got %v", s.StrategyTimeout)
	}

	if c.Expiry.ContentRecommendationExpiry <= 0 {
		return fmt.Errorf("expiry.content_recommendation_expiry must be positive, got %v", c.Expiry.ContentRecommendationExpiry)
	}
	if c.Expiry.GroupRecommendationExpiry <= 0 {
		return fmt.Errorf("expiry.group_recommendation_expiry must be positive, got %v", c.Expiry.GroupRecommendationExpiry)
	}

	return nil
}

// ClampLimit maps a requested result size into [1, MaxLimit], substituting
// DefaultLimit for non-positive requests.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (c Config) ClampLimit(limit int) int {
	if limit <= 0 {
		return c.Strategy.DefaultLimit
	}
	if limit > c.Strategy.MaxLimit {
		return c.Strategy.MaxLimit
	}
	return limit
}
