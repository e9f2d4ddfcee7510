// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "errors"

var (
	// ErrNotFound is returned for an unknown user, media, group, profile or
	// recommendation id. Repositories wrap it with the entity they looked for.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for out-of-range ratings and malformed parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when a user acts on a record owned by another user.
	ErrForbidden = errors.New("forbidden")

	// ErrDataStore marks failures of the backing store. Store adapters join it
	// with the driver error so callers can classify without importing the driver.
	ErrDataStore = errors.New("data store failure")

	// ErrBatchInProgress is returned when a full batch is requested while one is running.
	ErrBatchInProgress = errors.New("batch generation already in progress")
)
