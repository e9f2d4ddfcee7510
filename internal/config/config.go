// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	ProfileStore ProfileStoreConfig `koanf:"profile_store"`
	Cache        CacheConfig        `koanf:"cache"`
	Events       EventsConfig       `koanf:"events"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Scheduler    SchedulerConfig    `koanf:"scheduler"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	// BreakerFailureThreshold is the number of consecutive store failures that
	// opens the circuit breaker guarding the real-time path.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// Profile store backends.
const (
	ProfileStoreDuckDB = "duckdb"
	ProfileStoreBadger = "badger"
)

// ProfileStoreConfig selects where preference profiles are persisted.
type ProfileStoreConfig struct {
	// Backend is duckdb (shared with the rest of the data) or badger.
	Backend string `koanf:"backend"`

	// BadgerPath is the Badger directory. Empty opens an in-memory store.
	BadgerPath string `koanf:"badger_path"`
}

// CacheConfig holds settings for the compatibility/similar-user/trending cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend"` // memory or redis
	TTL           time.Duration `koanf:"ttl"`
	KeyPrefix     string        `koanf:"key_prefix"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
}

// Event transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// EventsConfig holds event bus settings.
type EventsConfig struct {
	// Transport is gochannel (in-process) or nats.
	Transport string `koanf:"transport"`

	NATSURL    string `koanf:"nats_url"`
	QueueGroup string `koanf:"queue_group"`

	// CloseTimeout bounds router shutdown.
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// RecommendConfig holds the recommendation core tunables as flat keys.
// RecommendConfig() on Config turns them into a recommend.Config.
type RecommendConfig struct {
	MinRelevanceScore                 float64 `koanf:"min_relevance_score"`
	MinSimilarityScore                float64 `koanf:"min_similarity_score"`
	MinConfidenceThreshold            float64 `koanf:"min_confidence_threshold"`
	MinInteractionsForRecommendations int     `koanf:"min_interactions_for_recommendations"`
	GroupMemberMinCompatibility       float64 `koanf:"group_member_min_compatibility"`

	GenreWeight       float64 `koanf:"genre_weight"`
	PlatformWeight    float64 `koanf:"platform_weight"`
	EraWeight         float64 `koanf:"era_weight"`
	RatingWeight      float64 `koanf:"rating_weight"`
	PersonalityWeight float64 `koanf:"personality_weight"`

	TimeDecayFactor            float64       `koanf:"time_decay_factor"`
	MaxSameTypeRecommendations int           `koanf:"max_same_type_recommendations"`
	CacheTTL                   time.Duration `koanf:"cache_ttl"`

	CollaborativeFilteringUserCount int           `koanf:"collaborative_filtering_user_count"`
	CollaborativeMinPeerRating      int           `koanf:"collaborative_min_peer_rating"`
	PersonalGenreThreshold          float64       `koanf:"personal_genre_threshold"`
	MaxCandidatesPerStrategy        int           `koanf:"max_candidates_per_strategy"`
	BatchRecommendationLimit        int           `koanf:"batch_recommendation_limit"`
	MaxGroupRecommendations         int           `koanf:"max_group_recommendations"`
	TrendingWindow                  time.Duration `koanf:"trending_window"`
	TrendingBaseRelevance           float64       `koanf:"trending_base_relevance"`
	DefaultLimit                    int           `koanf:"default_limit"`
	MaxLimit                        int           `koanf:"max_limit"`
	StrategyTimeout                 time.Duration `koanf:"strategy_timeout"`

	ContentRecommendationExpiry time.Duration `koanf:"content_recommendation_expiry"`
	GroupRecommendationExpiry   time.Duration `koanf:"group_recommendation_expiry"`

	Personality PersonalityConfig `koanf:"personality"`
}

// PersonalityConfig holds the personality classifier thresholds and matrix values.
type PersonalityConfig struct {
	MinInteractions       int           `koanf:"min_interactions"`
	BingeCompletionRate   float64       `koanf:"binge_completion_rate"`
	BingeLongSessionShare float64       `koanf:"binge_long_session_share"`
	LongSessionCompletion float64       `koanf:"long_session_completion"`
	LongSessionWindow     time.Duration `koanf:"long_session_window"`
	ExplorerDiversity     float64       `koanf:"explorer_diversity"`
	CriticRatingVariance  float64       `koanf:"critic_rating_variance"`
	CriticMinRatings      int           `koanf:"critic_min_ratings"`
	SameCompatibility     float64       `koanf:"same_compatibility"`
	CasualCompatibility   float64       `koanf:"casual_compatibility"`
	MediumCompatibility   float64       `koanf:"medium_compatibility"`
}

// SchedulerConfig holds the batch generation schedule.
type SchedulerConfig struct {
	// EnableSchedulers turns the periodic generation, refresh and cleanup
	// services on. Manual CLI runs work either way.
	EnableSchedulers bool `koanf:"enable_schedulers"`

	GenerationInterval time.Duration `koanf:"generation_interval"`
	RefreshInterval    time.Duration `koanf:"refresh_interval"`
	RefreshHoursBack   int           `koanf:"refresh_hours_back"`
	CleanupInterval    time.Duration `koanf:"cleanup_interval"`
	RunOnStartup       bool          `koanf:"run_on_startup"`

	Workers       int     `koanf:"workers"`
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// SecurityConfig holds authentication, authorization and request limiting settings
type SecurityConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	// AdminRole is the casbin role allowed on /admin routes.
	AdminRole string `koanf:"admin_role"`

	// CasbinPolicyPath optionally replaces the built-in policy.
	CasbinPolicyPath string `koanf:"casbin_policy_path"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// RecommendConfig builds the immutable recommendation core configuration.
func (c *Config) RecommendConfig() recommend.Config {
	r := c.Recommend
	p := r.Personality
	return recommend.Config{
		Thresholds: recommend.ThresholdConfig{
			MinRelevanceScore:                 r.MinRelevanceScore,
			MinSimilarityScore:                r.MinSimilarityScore,
			MinConfidenceThreshold:            r.MinConfidenceThreshold,
			MinInteractionsForRecommendations: r.MinInteractionsForRecommendations,
			GroupMemberMinCompatibility:       r.GroupMemberMinCompatibility,
		},
		Weights: recommend.DimensionWeights{
			Genre:       r.GenreWeight,
			Platform:    r.PlatformWeight,
			Era:         r.EraWeight,
			Rating:      r.RatingWeight,
			Personality: r.PersonalityWeight,
		},
		Personality: recommend.PersonalityConfig{
			MinInteractions:       p.MinInteractions,
			BingeCompletionRate:   p.BingeCompletionRate,
			BingeLongSessionShare: p.BingeLongSessionShare,
			LongSessionCompletion: p.LongSessionCompletion,
			LongSessionWindow:     p.LongSessionWindow,
			ExplorerDiversity:     p.ExplorerDiversity,
			CriticRatingVariance:  p.CriticRatingVariance,
			CriticMinRatings:      p.CriticMinRatings,
			SameCompatibility:     p.SameCompatibility,
			CasualCompatibility:   p.CasualCompatibility,
			MediumCompatibility:   p.MediumCompatibility,
		},
		Strategy: recommend.StrategyConfig{
			CollaborativeFilteringUserCount: r.CollaborativeFilteringUserCount,
			CollaborativeMinPeerRating:      r.CollaborativeMinPeerRating,
			PersonalGenreThreshold:          r.PersonalGenreThreshold,
			MaxCandidatesPerStrategy:        r.MaxCandidatesPerStrategy,
			BatchRecommendationLimit:        r.BatchRecommendationLimit,
			MaxGroupRecommendations:         r.MaxGroupRecommendations,
			TrendingWindow:                  r.TrendingWindow,
			TrendingBaseRelevance:           r.TrendingBaseRelevance,
			DefaultLimit:                    r.DefaultLimit,
			MaxLimit:                        r.MaxLimit,
			StrategyTimeout:                 r.StrategyTimeout,
		},
		Expiry: recommend.ExpiryConfig{
			ContentRecommendationExpiry: r.ContentRecommendationExpiry,
			GroupRecommendationExpiry:   r.GroupRecommendationExpiry,
		},
		TimeDecayFactor:            r.TimeDecayFactor,
		MaxSameTypeRecommendations: r.MaxSameTypeRecommendations,
		CacheTTL:                   r.CacheTTL,
	}
}

// recommendDefaults mirrors recommend.DefaultConfig into the flat koanf layout.
func recommendDefaults() RecommendConfig {
	d := recommend.DefaultConfig()
	return RecommendConfig{
		MinRelevanceScore:                 d.Thresholds.MinRelevanceScore,
		MinSimilarityScore:                d.Thresholds.MinSimilarityScore,
		MinConfidenceThreshold:            d.Thresholds.MinConfidenceThreshold,
		MinInteractionsForRecommendations: d.Thresholds.MinInteractionsForRecommendations,
		GroupMemberMinCompatibility:       d.Thresholds.GroupMemberMinCompatibility,
		GenreWeight:                       d.Weights.Genre,
		PlatformWeight:                    d.Weights.Platform,
		EraWeight:                         d.Weights.Era,
		RatingWeight:                      d.Weights.Rating,
		PersonalityWeight:                 d.Weights.Personality,
		TimeDecayFactor:                   d.TimeDecayFactor,
		MaxSameTypeRecommendations:        d.MaxSameTypeRecommendations,
		CacheTTL:                          d.CacheTTL,
		CollaborativeFilteringUserCount:   d.Strategy.CollaborativeFilteringUserCount,
		CollaborativeMinPeerRating:        d.Strategy.CollaborativeMinPeerRating,
		PersonalGenreThreshold:            d.Strategy.PersonalGenreThreshold,
		MaxCandidatesPerStrategy:          d.Strategy.MaxCandidatesPerStrategy,
		BatchRecommendationLimit:          d.Strategy.BatchRecommendationLimit,
		MaxGroupRecommendations:           d.Strategy.MaxGroupRecommendations,
		TrendingWindow:                    d.Strategy.TrendingWindow,
		TrendingBaseRelevance:             d.Strategy.TrendingBaseRelevance,
		DefaultLimit:                      d.Strategy.DefaultLimit,
		MaxLimit:                          d.Strategy.MaxLimit,
		StrategyTimeout:                   d.Strategy.StrategyTimeout,
		ContentRecommendationExpiry:       d.Expiry.ContentRecommendationExpiry,
		GroupRecommendationExpiry:         d.Expiry.GroupRecommendationExpiry,
		Personality: PersonalityConfig{
			MinInteractions:       d.Personality.MinInteractions,
			BingeCompletionRate:   d.Personality.BingeCompletionRate,
			BingeLongSessionShare: d.Personality.BingeLongSessionShare,
			LongSessionCompletion: d.Personality.LongSessionCompletion,
			LongSessionWindow:     d.Personality.LongSessionWindow,
			ExplorerDiversity:     d.Personality.ExplorerDiversity,
			CriticRatingVariance:  d.Personality.CriticRatingVariance,
			CriticMinRatings:      d.Personality.CriticMinRatings,
			SameCompatibility:     d.Personality.SameCompatibility,
			CasualCompatibility:   d.Personality.CasualCompatibility,
			MediumCompatibility:   d.Personality.MediumCompatibility,
		},
	}
}
