// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/compatibility"
)

// Profile handles GET /api/v1/profile. A user without a stored profile gets
// a freshly created empty one.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := callerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.deps.Profiles.GetOrCreateProfile(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, profile, start, 0)
}

// RefreshProfile handles POST /api/v1/profile/refresh. It recomputes the
// profile from the interaction history and returns the stored result.
func (h *Handler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := callerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.deps.Profiles.UpdatePreferences(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	profile, err := h.deps.Profiles.GetOrCreateProfile(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, profile, start, 0)
}

// SimilarUsers handles GET /api/v1/users/similar.
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := callerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	users, err := h.deps.Compatibility.FindSimilarUsers(r.Context(), userID, h.cfg.ClampLimit(limit))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, users, start, len(users))
}

// compatibilityResponse is the body of GET /users/{id}/compatibility.
type compatibilityResponse struct {
	UserID      int64 `json:"user_id"`
	OtherUserID int64 `json:"other_user_id"`
	compatibility.Breakdown
}

// UserCompatibility handles GET /api/v1/users/{id}/compatibility.
func (h *Handler) UserCompatibility(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := callerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	otherID, err := pathUserID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if otherID == userID {
		respondError(w, r, fmt.Errorf("compatibility with yourself is undefined: %w", recommend.ErrInvalidInput))
		return
	}

	breakdown, err := h.deps.Compatibility.Breakdown(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, compatibilityResponse{
		UserID:      userID,
		OtherUserID: otherID,
		Breakdown:   breakdown,
	}, start, 0)
}
