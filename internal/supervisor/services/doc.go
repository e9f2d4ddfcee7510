// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services provides suture.Service wrappers for Reelmatch components.

Every wrapper implements suture.Service (Serve(ctx) error) and fmt.Stringer,
returns ctx.Err() on shutdown and any other error to request a restart.

# Available Services

HTTPServerService wraps *http.Server. Cancellation triggers Shutdown bounded
by the configured timeout.

PeriodicService runs a Job on a ticker. Three constructors cover the batch
schedule:

	NewGenerationService  full regeneration every GenerationInterval
	NewRefreshService     recently active users every RefreshInterval
	NewCleanupService     expired recommendation removal every CleanupInterval

When scheduling is disabled they idle until shutdown, so the tree layout is
the same either way. A tick that finds a full batch still running is skipped.

BatchJobs sits between the scheduler and its callers and publishes a
batch.completed event after every finished batch.

The event bus (eventprocessor.Bus) implements suture.Service itself and needs
no wrapper.
*/
package services
