// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package scheduler runs the per-user generation pipeline over many users.

A batch selects its users from the interaction store, then processes them on
a bounded worker pool, optionally paced by a token bucket. Each user is
isolated: an error or panic in one user's pipeline is classified, counted in
the Summary and in Prometheus, and logged. It never aborts the batch.

	s := scheduler.New(eng, repo, cfg, scheduler.Config{Workers: 8, RatePerSecond: 50}, nil, logger)
	summary, err := s.GenerateForAllUsers(ctx)
	if errors.Is(err, recommend.ErrBatchInProgress) {
		// another full batch is still running
	}

Cancelling ctx stops dispatching new users. Users already running finish
with the cancelled context, which usually fails them fast.

Periodic execution lives in internal/supervisor/services.
*/
package scheduler
