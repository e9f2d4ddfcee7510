// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/reelmatch/internal/models"
)

// Strategy generates scored recommendation candidates for one user.
type Strategy interface {
	// Name returns the strategy identifier used in logs and metrics.
	Name() string

	// Type returns the recommendation type the strategy produces.
	Type() models.RecommendationType

	// Generate returns at most in.Limit candidates, best first.
	Generate(ctx context.Context, in Input) ([]Candidate, error)
}

// Input is the per-request data a strategy works from.
type Input struct {
	// UserID is the recipient.
	UserID int64

	// Profile is the recipient's preference profile. Never nil.
	Profile *models.PreferenceProfile

	// Exclude holds media ids that must not be returned.
	Exclude map[int64]struct{}

	// Seed is the context item for content-based generation. Optional.
	Seed *models.Media

	// Limit caps the number of candidates returned.
	Limit int
}

// Excluded reports whether mediaID must be skipped.
//
//nolint:gocritic // value receiver keeps Input immutable
func (in Input) Excluded(mediaID int64) bool {
	_, ok := in.Exclude[mediaID]
	return ok
}

// Candidate is a scored, not yet persisted recommendation.
type Candidate struct {
	Media     models.Media
	Type      models.RecommendationType
	Reason    models.ReasonCode
	Relevance float64

	// Subject is the explanation subject: the matched genre, the seed title,
	// or the number of contributing peers. Empty when not applicable.
	Subject string
}

// ExcludeSet builds an exclusion set from interactions and additional ids.
func ExcludeSet(interactions []models.InteractionRecord, extra ...int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(interactions)+len(extra))
	for i := range interactions {
		set[interactions[i].MediaID] = struct{}{}
	}
	for _, id := range extra {
		set[id] = struct{}{}
	}
	return set
}

// SortCandidates orders candidates by relevance descending, breaking ties by media id.
func SortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Relevance != c[j].Relevance {
			return c[i].Relevance > c[j].Relevance
		}
		return c[i].Media.ID < c[j].Media.ID
	})
}

// ContextCancelled checks if the context has been cancelled.
// Use this in long-running loops to support graceful cancellation.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func quota(limit, ceiling int) int {
	if limit <= 0 {
		return 0
	}
	if ceiling > 0 && limit > ceiling {
		return ceiling
	}
	return limit
}

func truncate(c []Candidate, n int) []Candidate {
	if len(c) > n {
		return c[:n]
	}
	return c
}
