// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package database implements the recommendation data store on DuckDB.

DB satisfies recommend.Repository: it reads the interaction history, media
catalog, identities and groups supplied by the surrounding platform, and it
persists preference profiles, content and group recommendations and feedback.
Seed writers (UpsertMedia, UpsertUser, UpsertGroup, InsertInteraction) load
the platform-owned tables for the CLI and tests.

Error Handling:

Single-record finders wrap recommend.ErrNotFound when the row does not exist.
Every driver failure is wrapped with recommend.ErrDataStore so callers can
classify it without importing the driver:

	m, err := db.FindMediaByID(ctx, id)
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		// skip
	case err != nil:
		return err
	}

Resilience:

CircuitBreakerRepository decorates any recommend.Repository with a
sony/gobreaker breaker. Only ErrDataStore-class failures count against it.
An open breaker rejects calls with an error wrapping gobreaker.ErrOpenState.

	repo := database.NewCircuitBreakerRepository(db, database.DefaultCircuitBreakerConfig(), logger)

Observability:

Every query records latency and error counts through metrics.RecordDBQuery.
Calls without a deadline get a 30 second timeout.
*/
package database
