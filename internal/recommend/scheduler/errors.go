// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package scheduler

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Error type labels reported in summaries and metrics.
const (
	ErrorTypeNotFound     = "not_found"
	ErrorTypeInvalidInput = "invalid_input"
	ErrorTypeDataStore    = "data_store"
	ErrorTypePanic        = "panic"
	ErrorTypeInternal     = "internal"
)

// PanicError carries a panic recovered while generating for one user.
type PanicError struct {
	UserID int64
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic generating for user %d: %v", e.UserID, e.Value)
}

// ClassifyError maps a generation failure to its error type label.
func ClassifyError(err error) string {
	var pe *PanicError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return ErrorTypePanic
	case errors.Is(err, recommend.ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, recommend.ErrInvalidInput):
		return ErrorTypeInvalidInput
	case errors.Is(err, recommend.ErrDataStore),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return ErrorTypeDataStore
	default:
		return ErrorTypeInternal
	}
}
