// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// defaultJobTimeout bounds a single scheduled run.
const defaultJobTimeout = 30 * time.Minute

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// PeriodicConfig configures a PeriodicService.
type PeriodicConfig struct {
	// Name identifies the service in supervisor logs.
	Name string

	// Enabled false keeps the service idle until shutdown.
	Enabled bool

	Interval     time.Duration
	RunOnStartup bool

	// Timeout bounds each run. Defaults to 30 minutes.
	Timeout time.Duration
}

// PeriodicService runs a job on a ticker under supervision. A failing run is
// logged and retried on the next tick; only context cancellation ends Serve.
type PeriodicService struct {
	cfg    PeriodicConfig
	job    Job
	logger zerolog.Logger
}

// NewPeriodicService creates a periodic service.
//
//nolint:gocritic // logger passed by value for immutability
func NewPeriodicService(cfg PeriodicConfig, job Job, logger zerolog.Logger) *PeriodicService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultJobTimeout
	}
	return &PeriodicService{
		cfg:    cfg,
		job:    job,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// NewGenerationService regenerates recommendations for all eligible users
// every GenerationInterval.
//
//nolint:gocritic // logger passed by value for immutability
func NewGenerationService(jobs *BatchJobs, cfg config.SchedulerConfig, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService(PeriodicConfig{
		Name:         "generation-service",
		Enabled:      cfg.EnableSchedulers,
		Interval:     cfg.GenerationInterval,
		RunOnStartup: cfg.RunOnStartup,
	}, func(ctx context.Context) error {
		_, err := jobs.GenerateForAllUsers(ctx)
		return err
	}, logger)
}

// NewRefreshService refreshes users active within RefreshHoursBack hours
// every RefreshInterval.
//
//nolint:gocritic // logger passed by value for immutability
func NewRefreshService(jobs *BatchJobs, cfg config.SchedulerConfig, logger zerolog.Logger) *PeriodicService {
	hoursBack := cfg.RefreshHoursBack
	return NewPeriodicService(PeriodicConfig{
		Name:     "refresh-service",
		Enabled:  cfg.EnableSchedulers,
		Interval: cfg.RefreshInterval,
	}, func(ctx context.Context) error {
		_, err := jobs.RefreshForActiveUsers(ctx, hoursBack)
		return err
	}, logger)
}

// NewCleanupService deletes expired recommendations every CleanupInterval.
//
//nolint:gocritic // logger passed by value for immutability
func NewCleanupService(cleaner ExpiredCleaner, cfg config.SchedulerConfig, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService(PeriodicConfig{
		Name:     "cleanup-service",
		Enabled:  cfg.EnableSchedulers,
		Interval: cfg.CleanupInterval,
	}, func(ctx context.Context) error {
		_, err := cleaner.CleanupExpired(ctx)
		return err
	}, logger)
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	if !s.cfg.Enabled || s.cfg.Interval <= 0 {
		s.logger.Info().Msg("Scheduler disabled, idling")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Bool("run_on_startup", s.cfg.RunOnStartup).
		Msg("Scheduled service starting")

	if s.cfg.RunOnStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduled service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := s.job(runCtx)
	switch {
	case err == nil:
		s.logger.Debug().Dur("duration", time.Since(start)).Msg("Scheduled run complete")
	case errors.Is(err, recommend.ErrBatchInProgress):
		s.logger.Info().Msg("Previous batch still running, skipping this tick")
	case ctx.Err() != nil:
		// Shutdown interrupted the run.
	default:
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled run failed")
	}
}

// String names the service in supervisor logs.
func (s *PeriodicService) String() string {
	return s.cfg.Name
}
