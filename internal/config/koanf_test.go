// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/reelmatch.duckdb" {
		t.Errorf("Database.Path = %q, want /data/reelmatch.duckdb", cfg.Database.Path)
	}
	if cfg.ProfileStore.Backend != ProfileStoreDuckDB {
		t.Errorf("ProfileStore.Backend = %q, want duckdb", cfg.ProfileStore.Backend)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Events.Transport != TransportGoChannel {
		t.Errorf("Events.Transport = %q, want gochannel", cfg.Events.Transport)
	}
	if !cfg.Scheduler.EnableSchedulers {
		t.Error("Scheduler.EnableSchedulers should be true by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestRecommendConfig_DefaultsMatchCore(t *testing.T) {
	got := defaultConfig().RecommendConfig()
	want := recommend.DefaultConfig()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecommendConfig() = %+v\nwant %+v", got, want)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("RECOMMEND_MIN_RELEVANCE_SCORE", "0.45")
	t.Setenv("RECOMMEND_CF_USER_COUNT", "25")
	t.Setenv("RECOMMEND_CONTENT_EXPIRY", "72h")
	t.Setenv("ENABLE_SCHEDULERS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Scheduler.EnableSchedulers {
		t.Error("ENABLE_SCHEDULERS=false not applied")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}

	rc := cfg.RecommendConfig()
	if rc.Thresholds.MinRelevanceScore != 0.45 {
		t.Errorf("MinRelevanceScore = %v, want 0.45", rc.Thresholds.MinRelevanceScore)
	}
	if rc.Strategy.CollaborativeFilteringUserCount != 25 {
		t.Errorf("CollaborativeFilteringUserCount = %d, want 25", rc.Strategy.CollaborativeFilteringUserCount)
	}
	if rc.Expiry.ContentRecommendationExpiry != 72*time.Hour {
		t.Errorf("ContentRecommendationExpiry = %v, want 72h", rc.Expiry.ContentRecommendationExpiry)
	}
	// Untouched keys keep their defaults.
	if rc.Expiry.GroupRecommendationExpiry != 336*time.Hour {
		t.Errorf("GroupRecommendationExpiry = %v, want 336h", rc.Expiry.GroupRecommendationExpiry)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7070
cache:
  backend: redis
  redis_addr: cache:6379
recommend:
  genre_weight: 0.5
  personality:
    medium_compatibility: 0.55
scheduler:
  workers: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SCHEDULER_WORKERS", "2")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Scheduler.Workers != 2 {
		t.Errorf("Scheduler.Workers = %d, want env override 2", cfg.Scheduler.Workers)
	}
	rc := cfg.RecommendConfig()
	if rc.Weights.Genre != 0.5 || rc.Personality.MediumCompatibility != 0.55 {
		t.Errorf("recommend overrides not applied: weights=%+v personality=%+v", rc.Weights, rc.Personality)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RECOMMEND_MIN_RELEVANCE_SCORE", "1.5")

	if _, err := LoadWithKoanf(); err == nil || !strings.Contains(err.Error(), "min_relevance_score") {
		t.Errorf("LoadWithKoanf() error = %v, want min_relevance_score range error", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"RECOMMEND_MAX_SAME_TYPE", "recommend.max_same_type_recommendations"},
		{"RECOMMEND_GROUP_EXPIRY", "recommend.group_recommendation_expiry"},
		{"ENABLE_SCHEDULERS", "scheduler.enable_schedulers"},
		{"REDIS_ADDR", "cache.redis_addr"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"unknown profile store", func(c *Config) { c.ProfileStore.Backend = "sqlite" }, "PROFILE_STORE_BACKEND"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" }, "REDIS_ADDR"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "CACHE_BACKEND"},
		{"bad nats url", func(c *Config) { c.Events.Transport = TransportNATS; c.Events.NATSURL = "http://x" }, "NATS_URL"},
		{"unknown transport", func(c *Config) { c.Events.Transport = "kafka" }, "EVENTS_TRANSPORT"},
		{"zero workers", func(c *Config) { c.Scheduler.Workers = 0 }, "SCHEDULER_WORKERS"},
		{"zero interval", func(c *Config) { c.Scheduler.RefreshInterval = 0 }, "intervals"},
		{"zero interval disabled", func(c *Config) { c.Scheduler.EnableSchedulers = false; c.Scheduler.RefreshInterval = 0 }, ""},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"long jwt secret", func(c *Config) { c.Security.JWTSecret = strings.Repeat("x", 32) }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"bad recommend", func(c *Config) { c.Recommend.MaxLimit = 1; c.Recommend.DefaultLimit = 5 }, "max_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
