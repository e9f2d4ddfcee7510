// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ContentBased recommends items resembling a seed item: anything that shares
// a genre or the media type with it. Candidates are scored against the
// user's profile, not against the seed.
type ContentBased struct {
	media recommend.MediaReader
	cfg   recommend.Config
}

// NewContentBased creates the content-based strategy.
//
//nolint:gocritic // cfg passed by value for immutability
func NewContentBased(media recommend.MediaReader, cfg recommend.Config) *ContentBased {
	return &ContentBased{media: media, cfg: cfg}
}

// Name implements Strategy.
func (c *ContentBased) Name() string { return "content_based" }

// Type implements Strategy.
func (c *ContentBased) Type() models.RecommendationType { return models.RecommendationContentBased }

// Generate implements Strategy. Without a seed it returns nothing.
func (c *ContentBased) Generate(ctx context.Context, in Input) ([]Candidate, error) {
	n := quota(in.Limit, c.cfg.Strategy.MaxCandidatesPerStrategy)
	if n == 0 || in.Seed == nil || in.Profile == nil {
		return nil, nil
	}

	items, err := c.media.FindAllMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	weights := c.cfg.Weights.Relevance()
	seed := in.Seed
	var out []Candidate

	for i := range items {
		if i%256 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		m := &items[i]
		if m.ID == seed.ID || in.Excluded(m.ID) {
			continue
		}
		if m.Type != seed.Type && !m.SharesGenre(seed) {
			continue
		}

		score := CalculateContentRelevanceScore(weights, in.Profile, m)
		if score < c.cfg.Thresholds.MinRelevanceScore {
			continue
		}
		out = append(out, Candidate{
			Media:     *m,
			Type:      models.RecommendationContentBased,
			Reason:    models.ReasonSimilarContent,
			Relevance: score,
			Subject:   seed.Title,
		})
	}

	SortCandidates(out)
	return truncate(out, n), nil
}
