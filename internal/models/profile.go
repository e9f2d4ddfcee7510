// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// ViewingPersonality is a coarse behavioral archetype derived from interaction patterns.
type ViewingPersonality string

const (
	// PersonalityCasual is the default archetype and the one assigned to users
	// without enough signal.
	PersonalityCasual ViewingPersonality = "CASUAL"

	// PersonalityBingeWatcher finishes most of what it starts, often in one sitting.
	PersonalityBingeWatcher ViewingPersonality = "BINGE_WATCHER"

	// PersonalityExplorer spreads attention across many genres.
	PersonalityExplorer ViewingPersonality = "EXPLORER"

	// PersonalityCritic rates with a wide spread.
	PersonalityCritic ViewingPersonality = "CRITIC"
)

// Valid reports whether the personality is one of the known values.
func (p ViewingPersonality) Valid() bool {
	switch p {
	case PersonalityCasual, PersonalityBingeWatcher, PersonalityExplorer, PersonalityCritic:
		return true
	default:
		return false
	}
}

// PreferenceProfile is a user's derived taste vector plus behavioral summary.
type PreferenceProfile struct {
	// UserID is the owning user.
	UserID int64 `json:"user_id"`

	// GenrePreferences maps genre label to a normalized score in [0,1].
	GenrePreferences map[string]float64 `json:"genre_preferences"`

	// PlatformPreferences maps platform label to a normalized score in [0,1].
	PlatformPreferences map[string]float64 `json:"platform_preferences"`

	// EraPreferences maps release decade label to a normalized score in [0,1].
	EraPreferences map[string]float64 `json:"era_preferences"`

	// ViewingPersonality is the classified archetype.
	ViewingPersonality ViewingPersonality `json:"viewing_personality"`

	// ConfidenceScore estimates how trustworthy the profile is, in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`

	// TotalInteractions is the number of interactions the profile was built from.
	TotalInteractions int `json:"total_interactions"`

	// TotalCompleted is the number of COMPLETED interactions.
	TotalCompleted int `json:"total_completed"`

	// CompletionRate is TotalCompleted / TotalInteractions, in [0,1].
	CompletionRate float64 `json:"completion_rate"`

	// AverageUserRating is the mean of the user's ratings (1-10), 0 when unrated.
	AverageUserRating float64 `json:"average_user_rating"`

	// RatingVariance is the population variance of the user's ratings.
	RatingVariance float64 `json:"rating_variance"`

	// CreatedAt is when the profile was first created.
	CreatedAt time.Time `json:"created_at"`

	// LastCalculatedAt is when the profile was last fully recomputed.
	// Zero for a profile that was created but never calculated.
	LastCalculatedAt time.Time `json:"last_calculated_at"`
}

// NewPreferenceProfile returns an empty CASUAL profile for the user.
func NewPreferenceProfile(userID int64, now time.Time) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:              userID,
		GenrePreferences:    map[string]float64{},
		PlatformPreferences: map[string]float64{},
		EraPreferences:      map[string]float64{},
		ViewingPersonality:  PersonalityCasual,
		CreatedAt:           now,
	}
}

// Clone returns a deep copy of the profile.
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.GenrePreferences = cloneScores(p.GenrePreferences)
	c.PlatformPreferences = cloneScores(p.PlatformPreferences)
	c.EraPreferences = cloneScores(p.EraPreferences)
	return &c
}

func cloneScores(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
