// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const (
	trendingCacheName = "trending"

	// trendingPoolFactor sizes the cached trending pool relative to the
	// per-strategy cap, leaving room for per-user exclusions.
	trendingPoolFactor = 5

	// popularityFillWeight scales catalog-popularity fill items so they rank
	// below items with real recommendation volume.
	popularityFillWeight = 0.5
)

// Trending recommends media with the most recommendation volume inside the
// trending window. When the window has too little volume (a cold start) the
// remainder is filled from catalog popularity.
//
// The trending pool is shared by every user and cached per pool size.
type Trending struct {
	media  recommend.MediaReader
	cache  cache.Store
	clock  recommend.Clock
	cfg    recommend.Config
	logger zerolog.Logger
}

// NewTrending creates the trending strategy. A nil store disables caching.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewTrending(media recommend.MediaReader, store cache.Store, clock recommend.Clock, cfg recommend.Config, logger zerolog.Logger) *Trending {
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	return &Trending{
		media:  media,
		cache:  store,
		clock:  clock,
		cfg:    cfg,
		logger: logger.With().Str("component", "trending").Logger(),
	}
}

// Name implements Strategy.
func (t *Trending) Name() string { return "trending" }

// Type implements Strategy.
func (t *Trending) Type() models.RecommendationType { return models.RecommendationTrending }

// Generate implements Strategy.
func (t *Trending) Generate(ctx context.Context, in Input) ([]Candidate, error) {
	n := quota(in.Limit, t.cfg.Strategy.MaxCandidatesPerStrategy)
	if n == 0 {
		return nil, nil
	}

	pool, err := t.pool(ctx)
	if err != nil {
		return nil, err
	}

	base := t.cfg.Strategy.TrendingBaseRelevance
	maxCount := 0
	for i := range pool {
		if pool[i].Count > maxCount {
			maxCount = pool[i].Count
		}
	}

	seen := make(map[int64]struct{}, n)
	out := make([]Candidate, 0, n)
	for i := range pool {
		if len(out) == n {
			break
		}
		m := pool[i].Media
		if in.Excluded(m.ID) || pool[i].Count <= 0 {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, Candidate{
			Media:     m,
			Type:      models.RecommendationTrending,
			Reason:    models.ReasonTrending,
			Relevance: base * float64(pool[i].Count) / float64(maxCount),
		})
	}

	if len(out) < n {
		fill, err := t.popularityFill(ctx, in, seen, n-len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, fill...)
	}

	SortCandidates(out)
	return out, nil
}

// Invalidate drops the cached trending pool.
func (t *Trending) Invalidate(ctx context.Context) error {
	if t.cache == nil {
		return nil
	}
	metrics.RecordCacheInvalidation(trendingCacheName)
	return t.cache.DeletePrefix(ctx, "trending:")
}

func (t *Trending) poolSize() int {
	size := t.cfg.Strategy.MaxCandidatesPerStrategy * trendingPoolFactor
	if size <= 0 {
		size = 100
	}
	return size
}

func (t *Trending) pool(ctx context.Context) ([]models.TrendingMedia, error) {
	size := t.poolSize()
	key := fmt.Sprintf("trending:%d", size)

	if t.cache != nil {
		cached, ok, err := cache.GetJSON[[]models.TrendingMedia](ctx, t.cache, key)
		switch {
		case err != nil:
			t.logger.Warn().Err(err).Str("key", key).Msg("trending cache read failed")
		case ok:
			metrics.RecordCacheHit(trendingCacheName)
			return cached, nil
		default:
			metrics.RecordCacheMiss(trendingCacheName)
		}
	}

	since := t.clock.Now().Add(-t.cfg.Strategy.TrendingWindow)
	pool, err := t.media.FindTrendingMedia(ctx, since, size)
	if err != nil {
		return nil, fmt.Errorf("find trending media: %w", err)
	}

	if t.cache != nil {
		if err := cache.SetJSON(ctx, t.cache, key, pool, t.cfg.CacheTTL); err != nil {
			t.logger.Warn().Err(err).Str("key", key).Msg("trending cache write failed")
		}
	}
	return pool, nil
}

func (t *Trending) popularityFill(ctx context.Context, in Input, seen map[int64]struct{}, n int) ([]Candidate, error) {
	items, err := t.media.FindAllMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PopularityScore != items[j].PopularityScore {
			return items[i].PopularityScore > items[j].PopularityScore
		}
		return items[i].ID < items[j].ID
	})

	var maxPop float64
	if len(items) > 0 {
		maxPop = items[0].PopularityScore
	}

	base := t.cfg.Strategy.TrendingBaseRelevance
	out := make([]Candidate, 0, n)
	for i := range items {
		if len(out) == n {
			break
		}
		m := items[i]
		if _, dup := seen[m.ID]; dup || in.Excluded(m.ID) {
			continue
		}
		relevance := 0.0
		if maxPop > 0 && m.PopularityScore > 0 {
			relevance = base * popularityFillWeight * m.PopularityScore / maxPop
		}
		out = append(out, Candidate{
			Media:     m,
			Type:      models.RecommendationTrending,
			Reason:    models.ReasonTrending,
			Relevance: relevance,
		})
	}
	return out, nil
}
