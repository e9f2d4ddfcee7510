// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package config loads and validates Reelmatch configuration.

# Configuration Sources

LoadWithKoanf layers three sources, later ones winning:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/reelmatch/config.yaml, /etc/reelmatch/config.yml
  - Environment variables, through an explicit mapping table

Unmapped environment variables are ignored.

# Sections

  - server: HTTP listener (HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT)
  - database: DuckDB file and circuit breaker (DUCKDB_PATH, DUCKDB_MAX_MEMORY)
  - profile_store: duckdb or badger (PROFILE_STORE_BACKEND)
  - cache: memory or redis (CACHE_BACKEND, CACHE_TTL, REDIS_ADDR)
  - events: gochannel or nats (EVENTS_TRANSPORT, NATS_URL)
  - recommend: recommendation core tunables (RECOMMEND_*)
  - scheduler: batch generation schedule (ENABLE_SCHEDULERS, SCHEDULER_*)
  - security: JWT, admin role, rate limiting, CORS (JWT_SECRET, ADMIN_ROLE)
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example YAML

	server:
	  port: 8080
	recommend:
	  min_relevance_score: 0.35
	  collaborative_filtering_user_count: 15
	  personality:
	    medium_compatibility: 0.6
	scheduler:
	  enable_schedulers: true
	  generation_interval: 24h

# Recommendation Core

Config.RecommendConfig returns the immutable recommend.Config handed to the
engines. Validate runs recommend.Config.Validate on it, so a loaded Config
always yields a valid core configuration.
*/
package config
