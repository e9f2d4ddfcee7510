// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// RecommendationType identifies the strategy that produced a content recommendation.
type RecommendationType string

const (
	RecommendationPersonal      RecommendationType = "PERSONAL"
	RecommendationContentBased  RecommendationType = "CONTENT_BASED"
	RecommendationCollaborative RecommendationType = "COLLABORATIVE"
	RecommendationTrending      RecommendationType = "TRENDING"
)

// RecommendationTypes lists every content recommendation type in reporting order.
var RecommendationTypes = []RecommendationType{
	RecommendationPersonal,
	RecommendationContentBased,
	RecommendationCollaborative,
	RecommendationTrending,
}

// ReasonCode is the machine-readable reason attached to a recommendation.
// Explanation text is rendered from it.
type ReasonCode string

const (
	// ReasonGenreMatch: the item matches one of the user's preferred genres.
	ReasonGenreMatch ReasonCode = "GENRE_MATCH"

	// ReasonSimilarContent: the item resembles a seed item the user looked at.
	ReasonSimilarContent ReasonCode = "SIMILAR_CONTENT"

	// ReasonSimilarUsers: users with compatible taste rated the item highly.
	ReasonSimilarUsers ReasonCode = "SIMILAR_USERS"

	// ReasonTrending: the item is popular right now.
	ReasonTrending ReasonCode = "TRENDING"

	// ReasonCompatibleMembers: a group's members have compatible taste.
	ReasonCompatibleMembers ReasonCode = "COMPATIBLE_MEMBERS"
)

// ContentRecommendation is a persisted media recommendation for one user.
type ContentRecommendation struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// UserID is the recipient.
	UserID int64 `json:"user_id"`

	// MediaID is the recommended item.
	MediaID int64 `json:"media_id"`

	// Type is the producing strategy.
	Type RecommendationType `json:"type"`

	// Reason is the reason code the explanation was rendered from.
	Reason ReasonCode `json:"reason"`

	// RelevanceScore is the predicted fit in [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// Explanation is human-readable text derived from Reason.
	Explanation string `json:"explanation"`

	// Viewed is set once the user has seen the recommendation.
	Viewed bool `json:"viewed"`

	// Dismissed is set when the user rejects the recommendation.
	Dismissed bool `json:"dismissed"`

	// AddedToLibrary is set when the user adds the item to their library.
	AddedToLibrary bool `json:"added_to_library"`

	// CreatedAt is the generation time.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the recommendation stops being surfaced. Always after CreatedAt.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the recommendation is past its lifetime at now.
func (r *ContentRecommendation) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// GroupRecommendation is a persisted social group recommendation for one user.
type GroupRecommendation struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// UserID is the recipient.
	UserID int64 `json:"user_id"`

	// GroupID is the recommended group.
	GroupID int64 `json:"group_id"`

	// CompatibilityScore is the average member compatibility in [0,1].
	CompatibilityScore float64 `json:"compatibility_score"`

	// Reason is the reason code the explanation was rendered from.
	Reason ReasonCode `json:"reason"`

	// Explanation is human-readable text derived from Reason.
	Explanation string `json:"explanation"`

	// Viewed is set once the user has seen the recommendation.
	Viewed bool `json:"viewed"`

	// Dismissed is set when the user rejects the recommendation.
	Dismissed bool `json:"dismissed"`

	// Joined is set when the user joins the group.
	Joined bool `json:"joined"`

	// CreatedAt is the generation time.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the recommendation stops being surfaced. Always after CreatedAt.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the recommendation is past its lifetime at now.
func (r *GroupRecommendation) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// RealTimeRecommendation is a computed, not persisted, content recommendation.
type RealTimeRecommendation struct {
	Media          Media              `json:"media"`
	Type           RecommendationType `json:"type"`
	Reason         ReasonCode         `json:"reason"`
	RelevanceScore float64            `json:"relevance_score"`
	Explanation    string             `json:"explanation"`
}
