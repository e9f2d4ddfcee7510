// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package models defines the domain records shared by the recommendation core,
// the storage adapters and the HTTP layer.
//
// # Record Ownership
//
// The records fall into two groups:
//
//   - External, read-only to the core: InteractionRecord, Media, User, Group.
//     These are produced by the surrounding platform (watch tracking, catalog,
//     identity, group management) and only queried here.
//   - Owned by the core: PreferenceProfile, ContentRecommendation,
//     GroupRecommendation and RecommendationFeedback.
//
// # Lifecycles
//
// A PreferenceProfile exists once per user. It is created lazily on first
// access and fully recomputed on every preference update.
//
// Content and group recommendations are created by the generation pipeline and
// carry a fixed lifetime (ExpiresAt). Their flags (viewed, dismissed,
// added-to-library/joined) are monotonic: normal flow only ever sets them.
//
// Feedback is append-only.
//
// # Serialization
//
// All records carry json tags and are encoded with goccy/go-json by the API,
// cache and event layers.
package models
