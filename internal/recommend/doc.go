// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend holds the shared contracts of the recommendation core.
//
// # Architecture
//
// Data flows one way through the subpackages:
//
//	interactions -> preference -> profile -> compatibility / algorithms
//	             -> engine (persisted recommendations) -> analytics
//
// The scheduler drives preference and engine in batch.
//
//   - scoremath: pure numerics (cosine similarity, normalization, decay, confidence)
//   - storage: profile persistence with atomic get-or-create and per-user write serialization
//   - preference: taste profile derivation and personality classification
//   - compatibility: pairwise user similarity and similar-user ranking
//   - algorithms: candidate generation strategies and relevance scoring
//   - reranking: genre diversification
//   - engine: real-time composition, persisted generation, state transitions, feedback
//   - scheduler: batch generation with per-user failure isolation
//   - analytics: engagement and conversion reporting
//
// This package itself has no dependencies on the subpackages. It defines the
// immutable Config, the error taxonomy, the Clock and the repository
// interfaces the data store implements.
//
// # Configuration
//
// Config is a value. Engines copy it at construction:
//
//	cfg := recommend.DefaultConfig()
//	cfg.Thresholds.MinRelevanceScore = 0.4
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	prefs := preference.NewEngine(repo, store, cfg, clock, logger)
//
// # Errors
//
// Callers test errors with errors.Is against ErrNotFound, ErrInvalidInput,
// ErrForbidden and ErrBatchInProgress. Insufficient data is never an error;
// it selects the trending fallback.
package recommend
