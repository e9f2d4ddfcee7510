// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// GenerateAll handles POST /api/v1/admin/generate. It runs a full batch in
// the request and returns its summary; a concurrent batch yields 409.
func (h *Handler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logging.Ctx(r.Context()).Info().Msg("Full generation requested")

	summary, err := h.deps.Batches.GenerateForAllUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, summary, start, 0)
}

// RefreshActive handles POST /api/v1/admin/refresh?hours=.
func (h *Handler) RefreshActive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hours, err := parseRefreshHours(r, h.refreshHoursBack)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("hours_back", hours).Msg("Active-user refresh requested")

	summary, err := h.deps.Batches.RefreshForActiveUsers(r.Context(), hours)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, summary, start, 0)
}

// Analytics handles GET /api/v1/admin/analytics?since=&until=.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	since, until, err := parseAnalyticsWindow(r, h.clock.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	report, err := h.deps.Reporter.Report(r.Context(), since, until)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, report, start, 0)
}
