// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// FeedbackTarget identifies what kind of recommendation feedback refers to.
type FeedbackTarget string

const (
	FeedbackTargetContent FeedbackTarget = "CONTENT"
	FeedbackTargetGroup   FeedbackTarget = "GROUP"
)

// Valid reports whether the target is one of the known values.
func (t FeedbackTarget) Valid() bool {
	return t == FeedbackTargetContent || t == FeedbackTargetGroup
}

// FeedbackPolarity is the direction of a feedback signal.
type FeedbackPolarity string

const (
	FeedbackPositive FeedbackPolarity = "POSITIVE"
	FeedbackNegative FeedbackPolarity = "NEGATIVE"
)

// Feedback rating bounds and the threshold at which a rating counts as positive.
const (
	MinFeedbackRating      = 1
	MaxFeedbackRating      = 5
	PositiveFeedbackRating = 4
)

// PolarityForRating maps an explicit 1-5 rating to a polarity.
func PolarityForRating(rating int) FeedbackPolarity {
	if rating >= PositiveFeedbackRating {
		return FeedbackPositive
	}
	return FeedbackNegative
}

// RecommendationFeedback is an append-only feedback entry on a recommendation.
type RecommendationFeedback struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// UserID is the user giving feedback.
	UserID int64 `json:"user_id"`

	// TargetType is the kind of recommendation referenced.
	TargetType FeedbackTarget `json:"target_type"`

	// TargetID is the recommendation ID.
	TargetID string `json:"target_id"`

	// Polarity is the feedback direction.
	Polarity FeedbackPolarity `json:"polarity"`

	// Rating is the explicit 1-5 rating, 0 for implicit feedback (dismiss).
	Rating int `json:"rating"`

	// Comment is optional free text.
	Comment string `json:"comment,omitempty"`

	// CreatedAt is when the feedback was recorded.
	CreatedAt time.Time `json:"created_at"`
}
