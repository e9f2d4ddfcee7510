// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/algorithms"
	"github.com/tomtom215/reelmatch/internal/recommend/reranking"
)

// job is one strategy invocation with its own quota.
type job struct {
	strategy algorithms.Strategy
	limit    int
}

// runStrategies runs the jobs concurrently and returns their outputs in job
// order. The first failure cancels the others and is returned.
func (e *Engine) runStrategies(ctx context.Context, in algorithms.Input, jobs ...job) ([][]algorithms.Candidate, error) {
	results := make([][]algorithms.Candidate, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, j := range jobs {
		if j.strategy == nil || j.limit <= 0 {
			continue
		}
		g.Go(func() error {
			input := in
			input.Limit = j.limit
			out, err := j.strategy.Generate(gctx, input)
			if err != nil {
				metrics.RecordStrategyError(j.strategy.Name())
				return fmt.Errorf("%s strategy: %w", j.strategy.Name(), err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// tier is a strategy job and the number of result slots its output may claim.
type tier struct {
	job
	quota int
}

// runTiers runs the tier jobs concurrently and pairs each output with its quota.
func (e *Engine) runTiers(ctx context.Context, in algorithms.Input, tiers ...tier) ([]reranking.Tier, error) {
	jobs := make([]job, len(tiers))
	for i := range tiers {
		jobs[i] = tiers[i].job
	}
	lists, err := e.runStrategies(ctx, in, jobs...)
	if err != nil {
		return nil, err
	}
	out := make([]reranking.Tier, len(tiers))
	for i := range tiers {
		out[i] = reranking.Tier{Candidates: lists[i], Quota: tiers[i].quota}
	}
	return out, nil
}

// GetRealTimeRecommendations computes up to limit recommendations without
// persisting them.
//
// With a known context media item content-based candidates claim up to half
// the limit and collaborative ones the remaining slots. Without one,
// collaborative candidates come first. In both cases trending items fill any
// slots left open. Users without enough interactions only receive trending
// items. An unknown contextMediaID is ignored.
func (e *Engine) GetRealTimeRecommendations(ctx context.Context, userID int64, contextMediaID *int64, limit int) ([]models.RealTimeRecommendation, error) {
	start := time.Now()
	defer func() { metrics.RecordRealTimeRequest(time.Since(start)) }()

	limit = e.cfg.ClampLimit(limit)
	if timeout := e.cfg.Strategy.StrategyTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	uc, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seed, err := e.resolveSeed(ctx, userID, contextMediaID)
	if err != nil {
		return nil, err
	}

	in := algorithms.Input{
		UserID:  userID,
		Profile: uc.profile,
		Exclude: algorithms.ExcludeSet(uc.history),
		Seed:    seed,
	}
	if seed != nil {
		in.Exclude[seed.ID] = struct{}{}
	}

	// Trending runs alongside the primary strategies so it can fill whatever
	// slots they leave open.
	var tiers []reranking.Tier
	switch {
	case !uc.sufficient:
		tiers, err = e.runTiers(ctx, in,
			tier{job{e.strategies.Trending, limit}, 0},
		)
	case seed != nil:
		contentQuota := limit / 2
		tiers, err = e.runTiers(ctx, in,
			tier{job{e.strategies.ContentBased, contentQuota}, contentQuota},
			tier{job{e.strategies.Collaborative, limit}, 0},
			tier{job{e.strategies.Trending, limit}, 0},
		)
	default:
		tiers, err = e.runTiers(ctx, in,
			tier{job{e.strategies.Collaborative, limit}, 0},
			tier{job{e.strategies.Trending, limit}, 0},
		)
	}
	if err != nil {
		return nil, err
	}

	ranked := reranking.Blend(tiers, e.cfg.MaxSameTypeRecommendations, limit)

	out := make([]models.RealTimeRecommendation, len(ranked))
	for i := range ranked {
		c := &ranked[i]
		out[i] = models.RealTimeRecommendation{
			Media:          c.Media,
			Type:           c.Type,
			Reason:         c.Reason,
			RelevanceScore: c.Relevance,
			Explanation:    Explain(c.Reason, c.Subject),
		}
	}

	e.logger.Debug().
		Int64("user_id", userID).
		Bool("sufficient_data", uc.sufficient).
		Bool("has_context", seed != nil).
		Int("count", len(out)).
		Dur("duration", time.Since(start)).
		Msg("real-time recommendations computed")

	return out, nil
}

func (e *Engine) resolveSeed(ctx context.Context, userID int64, mediaID *int64) (*models.Media, error) {
	if mediaID == nil {
		return nil, nil
	}
	m, err := e.repo.FindMediaByID(ctx, *mediaID)
	if errors.Is(err, recommend.ErrNotFound) {
		e.logger.Debug().Int64("user_id", userID).Int64("media_id", *mediaID).Msg("context media not found, ignoring")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load context media %d: %w", *mediaID, err)
	}
	return m, nil
}
