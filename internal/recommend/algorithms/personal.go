// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Personal recommends catalog items in the genres the user prefers most.
//
// Only genres whose preference exceeds PersonalGenreThreshold are scanned,
// strongest first. Every candidate is scored with CalculateContentRelevanceScore
// and kept when it reaches MinRelevanceScore.
type Personal struct {
	media recommend.MediaReader
	cfg   recommend.Config
}

// NewPersonal creates the personal strategy.
//
//nolint:gocritic // cfg passed by value for immutability
func NewPersonal(media recommend.MediaReader, cfg recommend.Config) *Personal {
	return &Personal{media: media, cfg: cfg}
}

// Name implements Strategy.
func (p *Personal) Name() string { return "personal" }

// Type implements Strategy.
func (p *Personal) Type() models.RecommendationType { return models.RecommendationPersonal }

// Generate implements Strategy.
func (p *Personal) Generate(ctx context.Context, in Input) ([]Candidate, error) {
	n := quota(in.Limit, p.cfg.Strategy.MaxCandidatesPerStrategy)
	if n == 0 || in.Profile == nil {
		return nil, nil
	}

	genres := topGenres(in.Profile.GenrePreferences, p.cfg.Strategy.PersonalGenreThreshold)
	if len(genres) == 0 {
		return nil, nil
	}

	weights := p.cfg.Weights.Relevance()
	seen := make(map[int64]struct{})
	var out []Candidate

	for _, genre := range genres {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		items, err := p.media.FindMediaByGenre(ctx, genre)
		if err != nil {
			return nil, fmt.Errorf("find media by genre %q: %w", genre, err)
		}
		for i := range items {
			m := &items[i]
			if in.Excluded(m.ID) {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}

			score := CalculateContentRelevanceScore(weights, in.Profile, m)
			if score < p.cfg.Thresholds.MinRelevanceScore {
				continue
			}
			out = append(out, Candidate{
				Media:     *m,
				Type:      models.RecommendationPersonal,
				Reason:    models.ReasonGenreMatch,
				Relevance: score,
				Subject:   bestGenre(in.Profile.GenrePreferences, m.Genres),
			})
		}
	}

	SortCandidates(out)
	return truncate(out, n), nil
}

// topGenres returns genres scoring above threshold, strongest first, ties by name.
func topGenres(prefs map[string]float64, threshold float64) []string {
	genres := make([]string, 0, len(prefs))
	for g, v := range prefs {
		if v > threshold {
			genres = append(genres, g)
		}
	}
	sort.Slice(genres, func(i, j int) bool {
		if prefs[genres[i]] != prefs[genres[j]] {
			return prefs[genres[i]] > prefs[genres[j]]
		}
		return genres[i] < genres[j]
	})
	return genres
}
