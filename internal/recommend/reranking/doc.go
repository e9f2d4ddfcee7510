// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package reranking implements post-processing of generated candidates.
//
// Reranking is applied after the strategies have produced their candidates:
//
//	Strategies -> Merge (dedupe) -> Diversify (per-genre cap) -> Final Ranking
//
// Merge combines strategy outputs and keeps the highest-relevance copy of
// each media item. Diversify walks the merged list in order, drops items whose
// genres are already saturated, sorts the survivors by relevance and
// truncates to the requested size.
//
// Both functions are pure and return new slices.
package reranking
