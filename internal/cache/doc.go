// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package cache provides the TTL cache abstraction used by the recommendation
// engines for compatibility scores, similar-user lists and trending media.
//
// # Implementations
//
//   - Memory: process-local map with per-entry expiry, a background sweeper and
//     hit/miss statistics. The default for single-instance deployments.
//   - Redis: shared cache for multi-instance deployments, built on go-redis.
//     Keys are namespaced with a configurable prefix; prefix invalidation uses
//     SCAN so it never blocks the server.
//
// # Values
//
// Store works on raw bytes. GetJSON and SetJSON encode values with goccy/go-json:
//
//	users, ok, err := cache.GetJSON[[]models.SimilarUser](ctx, store, key)
//	if err != nil {
//	    return nil, err
//	}
//	if !ok {
//	    users = compute()
//	    _ = cache.SetJSON(ctx, store, key, users, ttl)
//	}
//
// # Staleness
//
// Entries are allowed to be stale for up to their TTL. Callers that know a
// source record changed call Delete or DeletePrefix; see the eventprocessor
// package for profile-driven invalidation.
//
// # Thread Safety
//
// All implementations are safe for concurrent use.
package cache
