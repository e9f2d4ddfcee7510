// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// InteractionStatus is the watch state a user recorded for a media item.
type InteractionStatus string

const (
	// StatusPlanned means the item is on the user's list but not started.
	StatusPlanned InteractionStatus = "PLANNED"

	// StatusWatching means the user is partway through the item.
	StatusWatching InteractionStatus = "WATCHING"

	// StatusCompleted means the user finished the item.
	StatusCompleted InteractionStatus = "COMPLETED"

	// StatusDropped means the user abandoned the item.
	StatusDropped InteractionStatus = "DROPPED"
)

// Valid reports whether the status is one of the known values.
func (s InteractionStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusWatching, StatusCompleted, StatusDropped:
		return true
	default:
		return false
	}
}

// Rating bounds for interaction ratings.
const (
	MinInteractionRating = 1
	MaxInteractionRating = 10
)

// InteractionRecord is one user's engagement with one media item.
// Many exist per user; the core never mutates them.
type InteractionRecord struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// UserID is the owning user.
	UserID int64 `json:"user_id"`

	// MediaID is the media item interacted with.
	MediaID int64 `json:"media_id"`

	// Status is the recorded watch state.
	Status InteractionStatus `json:"status"`

	// Rating is the user's 1-10 rating, nil when unrated.
	Rating *int `json:"rating,omitempty"`

	// CompletionPercentage is how much of the item was watched (0-100).
	CompletionPercentage float64 `json:"completion_percentage"`

	// CreatedAt is when the interaction started.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the last change to the interaction.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the interaction is in the COMPLETED state.
func (r *InteractionRecord) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// HasRating reports whether the interaction carries a usable rating.
func (r *InteractionRecord) HasRating() bool {
	return r.Rating != nil && *r.Rating >= MinInteractionRating && *r.Rating <= MaxInteractionRating
}

// RatingValue returns the rating as a float, or 0 when unrated.
func (r *InteractionRecord) RatingValue() float64 {
	if !r.HasRating() {
		return 0
	}
	return float64(*r.Rating)
}

// Duration returns the time between the interaction starting and its last update.
func (r *InteractionRecord) Duration() time.Duration {
	if r.UpdatedAt.Before(r.CreatedAt) {
		return 0
	}
	return r.UpdatedAt.Sub(r.CreatedAt)
}
