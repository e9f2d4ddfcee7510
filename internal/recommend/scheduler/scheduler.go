// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Batch kinds used in logs and metrics.
const (
	KindFull    = "full"
	KindRefresh = "refresh"
)

// Generator is the per-user generation pipeline. *engine.Engine satisfies it.
type Generator interface {
	DeleteExpiredForUser(ctx context.Context, userID int64) (int, error)
	GenerateContent(ctx context.Context, userID int64) (int, error)
	GenerateGroups(ctx context.Context, userID int64) (int, error)
}

// UserSource selects the users a batch covers.
type UserSource interface {
	FindUsersWithMinInteractions(ctx context.Context, min int) ([]int64, error)
	FindUsersActiveSince(ctx context.Context, since time.Time, min int) ([]int64, error)
}

// Config tunes batch execution.
type Config struct {
	// Workers bounds concurrently processed users. Defaults to 4.
	Workers int

	// RatePerSecond paces user dispatch. Zero disables pacing.
	RatePerSecond float64

	// Burst is the limiter burst size. Defaults to Workers.
	Burst int
}

// Summary describes one batch run.
type Summary struct {
	Kind                 string         `json:"kind"`
	TotalUsers           int            `json:"total_users"`
	Successful           int            `json:"successful"`
	Failed               int            `json:"failed"`
	TotalRecommendations int            `json:"total_recommendations"`
	ErrorTypes           map[string]int `json:"error_types"`
	ProcessingTime       time.Duration  `json:"processing_time"`
}

// Scheduler regenerates recommendations for many users at once. Only one
// full batch runs at a time per Scheduler; refreshes are not exclusive.
type Scheduler struct {
	generator Generator
	users     UserSource
	rcfg      recommend.Config
	cfg       Config
	clock     recommend.Clock
	logger    zerolog.Logger

	batchMu sync.Mutex
}

// New creates a scheduler.
//
//nolint:gocritic // rcfg and logger passed by value for immutability
func New(generator Generator, users UserSource, rcfg recommend.Config, cfg Config, clock recommend.Clock, logger zerolog.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Workers
	}
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	return &Scheduler{
		generator: generator,
		users:     users,
		rcfg:      rcfg,
		cfg:       cfg,
		clock:     clock,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// GenerateForUser clears the user's expired recommendations and generates
// fresh content and group recommendations. It returns the number saved.
// Failures and panics are logged and counted, never returned.
func (s *Scheduler) GenerateForUser(ctx context.Context, userID int64) int {
	n, err := s.generateForUser(ctx, userID)
	if err != nil {
		errType := ClassifyError(err)
		metrics.RecordGenerationError(errType)
		s.logger.Warn().Err(err).Int64("user_id", userID).Str("error_type", errType).Msg("generation failed")
		return 0
	}
	return n
}

// generateForUser runs the pipeline, converting a panic into a *PanicError.
func (s *Scheduler) generateForUser(ctx context.Context, userID int64) (total int, err error) {
	defer func() {
		if r := recover(); r != nil {
			total, err = 0, &PanicError{UserID: userID, Value: r}
		}
	}()

	if _, err := s.generator.DeleteExpiredForUser(ctx, userID); err != nil {
		return 0, err
	}
	content, err := s.generator.GenerateContent(ctx, userID)
	if err != nil {
		return 0, err
	}
	groups, err := s.generator.GenerateGroups(ctx, userID)
	if err != nil {
		return 0, err
	}
	return content + groups, nil
}

// GenerateForAllUsers regenerates recommendations for every user with enough
// interactions. It returns ErrBatchInProgress while another full batch runs.
func (s *Scheduler) GenerateForAllUsers(ctx context.Context) (Summary, error) {
	if !s.batchMu.TryLock() {
		return Summary{}, recommend.ErrBatchInProgress
	}
	defer s.batchMu.Unlock()

	ids, err := s.users.FindUsersWithMinInteractions(ctx, s.rcfg.Thresholds.MinInteractionsForRecommendations)
	if err != nil {
		metrics.RecordGenerationError(ClassifyError(err))
		return Summary{}, fmt.Errorf("select users for full generation: %w", err)
	}
	return s.run(ctx, KindFull, ids), nil
}

// RefreshForActiveUsers regenerates recommendations for users with an
// interaction updated in the last hoursBack hours.
func (s *Scheduler) RefreshForActiveUsers(ctx context.Context, hoursBack int) (Summary, error) {
	if hoursBack <= 0 {
		return Summary{}, fmt.Errorf("hours back must be positive, got %d: %w", hoursBack, recommend.ErrInvalidInput)
	}
	since := s.clock.Now().Add(-time.Duration(hoursBack) * time.Hour)
	ids, err := s.users.FindUsersActiveSince(ctx, since, s.rcfg.Thresholds.MinInteractionsForRecommendations)
	if err != nil {
		metrics.RecordGenerationError(ClassifyError(err))
		return Summary{}, fmt.Errorf("select active users since %s: %w", since.Format(time.RFC3339), err)
	}
	return s.run(ctx, KindRefresh, ids), nil
}

// run processes ids on the worker pool. Cancellation stops dispatch; users
// already dispatched finish.
func (s *Scheduler) run(ctx context.Context, kind string, ids []int64) Summary {
	start := time.Now()
	metrics.SetBatchInProgress(true)
	defer metrics.SetBatchInProgress(false)

	s.logger.Info().Str("kind", kind).Int("users", len(ids)).Int("workers", s.cfg.Workers).Msg("batch generation starting")

	var limiter *rate.Limiter
	if s.cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RatePerSecond), s.cfg.Burst)
	}

	var (
		mu      sync.Mutex
		summary = Summary{Kind: kind, TotalUsers: len(ids), ErrorTypes: make(map[string]int)}
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		g.Go(func() error {
			n, err := s.generateForUser(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errType := ClassifyError(err)
				summary.Failed++
				summary.ErrorTypes[errType]++
				metrics.RecordGenerationError(errType)
				s.logger.Warn().Err(err).Int64("user_id", id).Str("error_type", errType).Msg("user generation failed")
				return nil
			}
			summary.Successful++
			summary.TotalRecommendations += n
			return nil
		})
	}
	_ = g.Wait()

	summary.ProcessingTime = time.Since(start)
	metrics.RecordBatch(kind, summary.Successful, summary.Failed, summary.ProcessingTime)

	ev := s.logger.Info()
	if ctx.Err() != nil {
		ev = s.logger.Warn().Err(ctx.Err())
	}
	ev.Str("kind", kind).
		Int("total_users", summary.TotalUsers).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("recommendations", summary.TotalRecommendations).
		Dur("duration", summary.ProcessingTime).
		Msg("batch generation finished")

	return summary
}
