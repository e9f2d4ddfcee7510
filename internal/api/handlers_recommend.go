// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// RealTimeRecommendations handles GET /api/v1/recommendations.
// Optional query: limit, context_media_id (seeds content-based results).
func (h *Handler) RealTimeRecommendations(w http.ResponseWriter, r *http.Request) {
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
	seed, err := parseOptionalInt64(r, "context_media_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	recs, err := h.deps.Recommender.GetRealTimeRecommendations(r.Context(), userID, seed, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, recs, start, len(recs))
}

// ActiveRecommendations handles GET /api/v1/recommendations/active.
func (h *Handler) ActiveRecommendations(w http.ResponseWriter, r *http.Request) {
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

	recs, err := h.deps.Recommender.ActiveRecommendations(r.Context(), userID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, recs, start, len(recs))
}

// contentTransition is one of the content recommendation state changes.
type contentTransition func(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error)

// groupTransition is one of the group recommendation state changes.
type groupTransition func(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error)

// handleContentTransition wraps a content state change as a handler.
func (h *Handler) handleContentTransition(transition contentTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := callerID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		recID, err := pathRecommendationID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		rec, err := transition(r.Context(), userID, recID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondSuccess(w, rec, start, 0)
	}
}

// handleGroupTransition wraps a group state change as a handler.
func (h *Handler) handleGroupTransition(transition groupTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := callerID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		recID, err := pathRecommendationID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		rec, err := transition(r.Context(), userID, recID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondSuccess(w, rec, start, 0)
	}
}

// MarkViewed handles POST /api/v1/recommendations/{id}/view.
func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	h.handleContentTransition(h.deps.Recommender.MarkViewed)(w, r)
}

// Dismiss handles POST /api/v1/recommendations/{id}/dismiss.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.handleContentTransition(h.deps.Recommender.Dismiss)(w, r)
}

// MarkAddedToLibrary handles POST /api/v1/recommendations/{id}/library.
func (h *Handler) MarkAddedToLibrary(w http.ResponseWriter, r *http.Request) {
	h.handleContentTransition(h.deps.Recommender.MarkAddedToLibrary)(w, r)
}

// ContentFeedback handles POST /api/v1/recommendations/{id}/feedback.
func (h *Handler) ContentFeedback(w http.ResponseWriter, r *http.Request) {
	h.submitFeedback(w, r, models.FeedbackTargetContent)
}

// ActiveGroupRecommendations handles GET /api/v1/groups/recommendations.
func (h *Handler) ActiveGroupRecommendations(w http.ResponseWriter, r *http.Request) {
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

	recs, err := h.deps.Recommender.ActiveGroupRecommendations(r.Context(), userID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, recs, start, len(recs))
}

// MarkGroupViewed handles POST /api/v1/groups/recommendations/{id}/view.
func (h *Handler) MarkGroupViewed(w http.ResponseWriter, r *http.Request) {
	h.handleGroupTransition(h.deps.Recommender.MarkGroupViewed)(w, r)
}

// DismissGroup handles POST /api/v1/groups/recommendations/{id}/dismiss.
func (h *Handler) DismissGroup(w http.ResponseWriter, r *http.Request) {
	h.handleGroupTransition(h.deps.Recommender.DismissGroup)(w, r)
}

// MarkJoined handles POST /api/v1/groups/recommendations/{id}/join.
func (h *Handler) MarkJoined(w http.ResponseWriter, r *http.Request) {
	h.handleGroupTransition(h.deps.Recommender.MarkJoined)(w, r)
}

// GroupFeedback handles POST /api/v1/groups/recommendations/{id}/feedback.
func (h *Handler) GroupFeedback(w http.ResponseWriter, r *http.Request) {
	h.submitFeedback(w, r, models.FeedbackTargetGroup)
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request, target models.FeedbackTarget) {
	start := time.Now()
	userID, err := callerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	recID, err := pathRecommendationID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.TargetType != "" && req.TargetType != target {
		respondError(w, r, fmt.Errorf("target_type %s does not match a %s route: %w", req.TargetType, target, recommend.ErrInvalidInput))
		return
	}

	fb, err := h.deps.Recommender.SubmitFeedback(r.Context(), userID, target, recID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, fb, start, 0)
}
