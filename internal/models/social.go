// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// User is the identity record supplied by the platform.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Active     bool      `json:"active"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Group is a social group users can join.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
	MemberCount int    `json:"member_count"`
}

// SimilarUser is one entry of a ranked similar-user list.
type SimilarUser struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}

// TrendingMedia is a media item with its recent popularity count.
type TrendingMedia struct {
	Media Media `json:"media"`
	Count int   `json:"count"`
}
