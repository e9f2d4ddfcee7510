// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

// BatchRunner runs batch generation. *scheduler.Scheduler satisfies it.
type BatchRunner interface {
	GenerateForAllUsers(ctx context.Context) (scheduler.Summary, error)
	RefreshForActiveUsers(ctx context.Context, hoursBack int) (scheduler.Summary, error)
}

// BatchObserver is told about every completed batch.
// *eventprocessor.Publisher satisfies it.
type BatchObserver interface {
	BatchCompleted(ctx context.Context, summary scheduler.Summary)
}

// ExpiredCleaner deletes expired recommendations. *engine.Engine satisfies it.
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// BatchJobs runs batches and announces their summaries. The scheduled
// services, the admin endpoints and the CLI all go through it so every
// completed batch produces a batch.completed event.
type BatchJobs struct {
	runner   BatchRunner
	observer BatchObserver
	logger   zerolog.Logger
}

// NewBatchJobs creates batch jobs. observer may be nil.
//
//nolint:gocritic // logger passed by value for immutability
func NewBatchJobs(runner BatchRunner, observer BatchObserver, logger zerolog.Logger) *BatchJobs {
	return &BatchJobs{
		runner:   runner,
		observer: observer,
		logger:   logger.With().Str("component", "batch_jobs").Logger(),
	}
}

// GenerateForAllUsers runs a full batch.
func (j *BatchJobs) GenerateForAllUsers(ctx context.Context) (scheduler.Summary, error) {
	summary, err := j.runner.GenerateForAllUsers(ctx)
	if err != nil {
		return summary, err
	}
	j.completed(ctx, summary)
	return summary, nil
}

// RefreshForActiveUsers refreshes users active within hoursBack hours.
func (j *BatchJobs) RefreshForActiveUsers(ctx context.Context, hoursBack int) (scheduler.Summary, error) {
	summary, err := j.runner.RefreshForActiveUsers(ctx, hoursBack)
	if err != nil {
		return summary, err
	}
	j.completed(ctx, summary)
	return summary, nil
}

func (j *BatchJobs) completed(ctx context.Context, summary scheduler.Summary) {
	j.logger.Info().
		Str("kind", summary.Kind).
		Int("total_users", summary.TotalUsers).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("recommendations", summary.TotalRecommendations).
		Dur("duration", summary.ProcessingTime).
		Msg("Batch completed")
	if j.observer != nil {
		j.observer.BatchCompleted(ctx, summary)
	}
}
