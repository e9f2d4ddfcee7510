// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// AccessLog logs one line per request. Requests slower than slowThreshold
// and 5xx responses are logged at warn; everything else at debug.
//
//nolint:gocritic // logger passed by value for immutability
func AccessLog(logger zerolog.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)

			next.ServeHTTP(wrapper, r)

			elapsed := time.Since(start)
			event := logger.Debug()
			if wrapper.statusCode >= http.StatusInternalServerError || (slowThreshold > 0 && elapsed > slowThreshold) {
				event = logger.Warn()
			}

			event.
				Str("request_id", logging.RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Dur("duration", elapsed).
				Msg("HTTP request")
		})
	}
}
