// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a TTL-aware byte cache shared by the recommendation engines.
// Both Memory and Redis implement it.
//
// Usage:
//
//	var s Store = NewMemory(15 * time.Minute)
//
//	if err := SetJSON(ctx, s, "compat:1:2", 0.82, 0); err != nil {
//	    return err
//	}
//	score, ok, err := GetJSON[float64](ctx, s, "compat:1:2")
type Store interface {
	// Get returns the value and true when the key exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A non-positive ttl uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases background resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	// BackendMemory is the in-process TTL map (default).
	BackendMemory Backend = "memory"

	// BackendRedis is a shared Redis instance.
	BackendRedis Backend = "redis"
)

// Config holds configuration for creating a Store.
type Config struct {
	// Backend selects the implementation (memory or redis).
	Backend Backend

	// TTL is the default time-to-live for entries.
	TTL time.Duration

	// KeyPrefix namespaces every Redis key. Ignored by the memory backend.
	KeyPrefix string

	// Redis connection settings, used only by the redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a Store for the configured backend.
//
//nolint:gocritic // cfg passed by value for immutability
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(cfg.TTL), nil
	case BackendRedis:
		return NewRedis(ctx, RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
