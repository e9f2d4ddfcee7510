// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package middleware provides chi-compatible HTTP middleware shared by the
// API router: request ids, Prometheus instrumentation and access logging.
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog(logger, 500*time.Millisecond))
//	r.Use(middleware.PrometheusMetrics)
//
// Metrics and access logs label requests with the matched chi route pattern
// (for example /api/v1/recommendations/{id}/view) rather than the raw path,
// which keeps label cardinality bounded.
package middleware
