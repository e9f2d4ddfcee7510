// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                    "/data/reelmatch.duckdb",
			MaxMemory:               "1GB",
			Threads:                 0, // 0 = use runtime.NumCPU()
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		ProfileStore: ProfileStoreConfig{
			Backend:    ProfileStoreDuckDB,
			BadgerPath: "/data/profiles",
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       15 * time.Minute,
			KeyPrefix: "reelmatch:",
			RedisAddr: "127.0.0.1:6379",
		},
		Events: EventsConfig{
			Transport:    TransportGoChannel,
			NATSURL:      "nats://127.0.0.1:4222",
			QueueGroup:   "reelmatch",
			CloseTimeout: 10 * time.Second,
		},
		Recommend: recommendDefaults(),
		Scheduler: SchedulerConfig{
			EnableSchedulers:   true,
			GenerationInterval: 24 * time.Hour,
			RefreshInterval:    time.Hour,
			RefreshHoursBack:   2,
			CleanupInterval:    6 * time.Hour,
			RunOnStartup:       false,
			Workers:            4,
			RatePerSecond:      0, // Unlimited
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			JWTIssuer:       "",
			AdminRole:       "admin",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Database
	"duckdb_path":               "database.path",
	"duckdb_max_memory":         "database.max_memory",
	"duckdb_threads":            "database.threads",
	"db_breaker_failures":       "database.breaker_failure_threshold",
	"db_breaker_timeout":        "database.breaker_timeout",
	"profile_store_backend":     "profile_store.backend",
	"profile_store_badger_path": "profile_store.badger_path",

	// Cache
	"cache_backend":    "cache.backend",
	"cache_ttl":        "cache.ttl",
	"cache_key_prefix": "cache.key_prefix",
	"redis_addr":       "cache.redis_addr",
	"redis_password":   "cache.redis_password",
	"redis_db":         "cache.redis_db",

	// Events
	"events_transport":     "events.transport",
	"nats_url":             "events.nats_url",
	"nats_queue_group":     "events.queue_group",
	"events_close_timeout": "events.close_timeout",

	// Recommendation core
	"recommend_min_relevance_score":      "recommend.min_relevance_score",
	"recommend_min_similarity_score":     "recommend.min_similarity_score",
	"recommend_min_confidence_threshold": "recommend.min_confidence_threshold",
	"recommend_min_interactions":         "recommend.min_interactions_for_recommendations",
	"recommend_group_member_min":         "recommend.group_member_min_compatibility",
	"recommend_genre_weight":             "recommend.genre_weight",
	"recommend_platform_weight":          "recommend.platform_weight",
	"recommend_era_weight":               "recommend.era_weight",
	"recommend_rating_weight":            "recommend.rating_weight",
	"recommend_personality_weight":       "recommend.personality_weight",
	"recommend_time_decay_factor":        "recommend.time_decay_factor",
	"recommend_max_same_type":            "recommend.max_same_type_recommendations",
	"recommend_cache_ttl":                "recommend.cache_ttl",
	"recommend_cf_user_count":            "recommend.collaborative_filtering_user_count",
	"recommend_cf_min_peer_rating":       "recommend.collaborative_min_peer_rating",
	"recommend_max_candidates":           "recommend.max_candidates_per_strategy",
	"recommend_batch_limit":              "recommend.batch_recommendation_limit",
	"recommend_max_group":                "recommend.max_group_recommendations",
	"recommend_trending_window":          "recommend.trending_window",
	"recommend_default_limit":            "recommend.default_limit",
	"recommend_max_limit":                "recommend.max_limit",
	"recommend_strategy_timeout":         "recommend.strategy_timeout",
	"recommend_content_expiry":           "recommend.content_recommendation_expiry",
	"recommend_group_expiry":             "recommend.group_recommendation_expiry",

	// Scheduler
	"enable_schedulers":             "scheduler.enable_schedulers",
	"scheduler_generation_interval": "scheduler.generation_interval",
	"scheduler_refresh_interval":    "scheduler.refresh_interval",
	"scheduler_refresh_hours_back":  "scheduler.refresh_hours_back",
	"scheduler_cleanup_interval":    "scheduler.cleanup_interval",
	"scheduler_run_on_startup":      "scheduler.run_on_startup",
	"scheduler_workers":             "scheduler.workers",
	"scheduler_rate_per_second":     "scheduler.rate_per_second",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"admin_role":          "security.admin_role",
	"casbin_policy_path":  "security.casbin_policy_path",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_CF_USER_COUNT -> recommend.collaborative_filtering_user_count
//   - ENABLE_SCHEDULERS -> scheduler.enable_schedulers
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// For unmapped keys, return empty string to skip them
	return ""
}
