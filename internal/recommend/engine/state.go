// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// maxCommentLength bounds feedback comments.
const maxCommentLength = 2000

// Transition names used in logs and metrics.
const (
	transitionView    = "view"
	transitionDismiss = "dismiss"
	transitionLibrary = "library"
	transitionJoin    = "join"

	targetContent = "content"
	targetGroup   = "group"
)

// loadContent fetches a live content recommendation owned by userID.
func (e *Engine) loadContent(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error) {
	rec, err := e.repo.FindContentRecommendationByID(ctx, recID)
	if err != nil {
		return nil, fmt.Errorf("content recommendation %s: %w", recID, err)
	}
	if rec.IsExpired(e.clock.Now()) {
		return nil, fmt.Errorf("content recommendation %s expired: %w", recID, recommend.ErrNotFound)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("content recommendation %s: %w", recID, recommend.ErrForbidden)
	}
	return rec, nil
}

// loadGroup fetches a live group recommendation owned by userID.
func (e *Engine) loadGroup(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error) {
	rec, err := e.repo.FindGroupRecommendationByID(ctx, recID)
	if err != nil {
		return nil, fmt.Errorf("group recommendation %s: %w", recID, err)
	}
	if rec.IsExpired(e.clock.Now()) {
		return nil, fmt.Errorf("group recommendation %s expired: %w", recID, recommend.ErrNotFound)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("group recommendation %s: %w", recID, recommend.ErrForbidden)
	}
	return rec, nil
}

// updateContent applies set to a content recommendation under the user's
// lock. set reports whether anything changed; unchanged records are not saved.
func (e *Engine) updateContent(ctx context.Context, userID int64, recID, transition string, set func(*models.ContentRecommendation) bool) (*models.ContentRecommendation, bool, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rec, err := e.loadContent(ctx, userID, recID)
	if err != nil {
		return nil, false, err
	}
	if !set(rec) {
		return rec, false, nil
	}
	if err := e.repo.SaveContentRecommendation(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("save content recommendation %s: %w", recID, err)
	}
	metrics.RecordStateTransition(targetContent, transition)
	return rec, true, nil
}

func (e *Engine) updateGroup(ctx context.Context, userID int64, recID, transition string, set func(*models.GroupRecommendation) bool) (*models.GroupRecommendation, bool, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rec, err := e.loadGroup(ctx, userID, recID)
	if err != nil {
		return nil, false, err
	}
	if !set(rec) {
		return rec, false, nil
	}
	if err := e.repo.SaveGroupRecommendation(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("save group recommendation %s: %w", recID, err)
	}
	metrics.RecordStateTransition(targetGroup, transition)
	return rec, true, nil
}

// flip sets *flag and reports whether it changed.
func flip(flag *bool) bool {
	if *flag {
		return false
	}
	*flag = true
	return true
}

// MarkViewed marks a content recommendation as seen.
func (e *Engine) MarkViewed(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error) {
	rec, _, err := e.updateContent(ctx, userID, recID, transitionView, func(r *models.ContentRecommendation) bool {
		return flip(&r.Viewed)
	})
	return rec, err
}

// MarkAddedToLibrary records that the user added the recommended item to their library.
func (e *Engine) MarkAddedToLibrary(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error) {
	rec, _, err := e.updateContent(ctx, userID, recID, transitionLibrary, func(r *models.ContentRecommendation) bool {
		return flip(&r.AddedToLibrary)
	})
	return rec, err
}

// Dismiss rejects a content recommendation, records negative feedback and
// recomputes the user's preferences. Dismissing twice is a no-op.
func (e *Engine) Dismiss(ctx context.Context, userID int64, recID string) (*models.ContentRecommendation, error) {
	rec, changed, err := e.updateContent(ctx, userID, recID, transitionDismiss, func(r *models.ContentRecommendation) bool {
		return flip(&r.Dismissed)
	})
	if err != nil || !changed {
		return rec, err
	}
	e.recordDismissal(ctx, userID, models.FeedbackTargetContent, recID)
	return rec, nil
}

// MarkGroupViewed marks a group recommendation as seen.
func (e *Engine) MarkGroupViewed(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error) {
	rec, _, err := e.updateGroup(ctx, userID, recID, transitionView, func(r *models.GroupRecommendation) bool {
		return flip(&r.Viewed)
	})
	return rec, err
}

// MarkJoined records that the user joined the recommended group.
func (e *Engine) MarkJoined(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error) {
	rec, _, err := e.updateGroup(ctx, userID, recID, transitionJoin, func(r *models.GroupRecommendation) bool {
		return flip(&r.Joined)
	})
	return rec, err
}

// DismissGroup rejects a group recommendation, records negative feedback and
// recomputes the user's preferences. Dismissing twice is a no-op.
func (e *Engine) DismissGroup(ctx context.Context, userID int64, recID string) (*models.GroupRecommendation, error) {
	rec, changed, err := e.updateGroup(ctx, userID, recID, transitionDismiss, func(r *models.GroupRecommendation) bool {
		return flip(&r.Dismissed)
	})
	if err != nil || !changed {
		return rec, err
	}
	e.recordDismissal(ctx, userID, models.FeedbackTargetGroup, recID)
	return rec, nil
}

// recordDismissal saves the implicit negative feedback for a dismissal and
// recomputes preferences. The dismissal is already persisted, so failures are
// logged rather than returned.
func (e *Engine) recordDismissal(ctx context.Context, userID int64, target models.FeedbackTarget, recID string) {
	fb := &models.RecommendationFeedback{
		ID:         uuid.NewString(),
		UserID:     userID,
		TargetType: target,
		TargetID:   recID,
		Polarity:   models.FeedbackNegative,
		CreatedAt:  e.clock.Now(),
	}
	if err := e.repo.SaveFeedback(ctx, fb); err != nil {
		e.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("recommendation_id", recID).
			Msg("saving dismissal feedback failed")
		return
	}
	metrics.RecordFeedback(string(target), string(fb.Polarity))
	e.notifyFeedback(ctx, fb)
	e.refreshPreferences(ctx, userID)
}

// SubmitFeedback records an explicit 1-5 rating on a recommendation the user
// owns and recomputes the user's preferences. Ratings of 4 or more are positive.
func (e *Engine) SubmitFeedback(
	ctx context.Context,
	userID int64,
	target models.FeedbackTarget,
	recID string,
	rating int,
	comment string,
) (*models.RecommendationFeedback, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("feedback target %q: %w", target, recommend.ErrInvalidInput)
	}
	if rating < models.MinFeedbackRating || rating > models.MaxFeedbackRating {
		return nil, fmt.Errorf("rating %d outside [%d, %d]: %w",
			rating, models.MinFeedbackRating, models.MaxFeedbackRating, recommend.ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, fmt.Errorf("comment longer than %d bytes: %w", maxCommentLength, recommend.ErrInvalidInput)
	}

	var err error
	switch target {
	case models.FeedbackTargetContent:
		_, err = e.loadContent(ctx, userID, recID)
	case models.FeedbackTargetGroup:
		_, err = e.loadGroup(ctx, userID, recID)
	}
	if err != nil {
		return nil, err
	}

	fb := &models.RecommendationFeedback{
		ID:         uuid.NewString(),
		UserID:     userID,
		TargetType: target,
		TargetID:   recID,
		Polarity:   models.PolarityForRating(rating),
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  e.clock.Now(),
	}
	if err := e.repo.SaveFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	metrics.RecordFeedback(string(target), string(fb.Polarity))
	e.notifyFeedback(ctx, fb)
	e.refreshPreferences(ctx, userID)
	return fb, nil
}

// refreshPreferences recomputes the user's profile. Failures are logged; the
// triggering transition has already been persisted.
func (e *Engine) refreshPreferences(ctx context.Context, userID int64) {
	if _, err := e.preferences.UpdatePreferences(ctx, userID); err != nil {
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("preference refresh after feedback failed")
	}
}

// ActiveRecommendations returns the user's live, undismissed content
// recommendations, most relevant first.
func (e *Engine) ActiveRecommendations(ctx context.Context, userID int64, limit int) ([]models.ContentRecommendation, error) {
	recs, err := e.repo.FindActiveContentRecommendations(ctx, userID, e.clock.Now(), e.cfg.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find active recommendations for user %d: %w", userID, err)
	}
	return recs, nil
}

// ActiveGroupRecommendations returns the user's live, undismissed group
// recommendations, most compatible first.
func (e *Engine) ActiveGroupRecommendations(ctx context.Context, userID int64, limit int) ([]models.GroupRecommendation, error) {
	recs, err := e.repo.FindActiveGroupRecommendations(ctx, userID, e.clock.Now(), e.cfg.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find active group recommendations for user %d: %w", userID, err)
	}
	return recs, nil
}

func (e *Engine) notifyFeedback(ctx context.Context, fb *models.RecommendationFeedback) {
	if e.feedback != nil {
		cp := *fb
		e.feedback.FeedbackRecorded(ctx, &cp)
	}
}
