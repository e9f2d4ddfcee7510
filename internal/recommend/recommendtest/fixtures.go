// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommendtest

import (
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

// Now is the fixed instant tests pin their clocks to.
var Now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// Rating returns a pointer to v for InteractionRecord.Rating.
func Rating(v int) *int {
	return &v
}

// Movie builds a movie released in year with the given genres on "Netflix".
func Movie(id int64, title string, year int, rating float64, genres ...string) models.Media {
	return models.Media{
		ID:              id,
		Title:           title,
		Type:            models.MediaTypeMovie,
		Genres:          genres,
		Platforms:       []string{"Netflix"},
		ReleaseYear:     year,
		AverageRating:   rating,
		PopularityScore: float64(100 - id),
	}
}

// Completed builds a COMPLETED interaction watched in a single two-hour sitting
// that ended ago before Now.
func Completed(userID, mediaID int64, rating int, ago time.Duration) models.InteractionRecord {
	end := Now.Add(-ago)
	rec := models.InteractionRecord{
		UserID:               userID,
		MediaID:              mediaID,
		Status:               models.StatusCompleted,
		CompletionPercentage: 100,
		CreatedAt:            end.Add(-2 * time.Hour),
		UpdatedAt:            end,
	}
	if rating > 0 {
		rec.Rating = Rating(rating)
	}
	return rec
}

// Profile builds a calculated profile with the given genre preferences, a
// single "Netflix" platform and "2010s" era preference.
func Profile(userID int64, personality models.ViewingPersonality, confidence float64, interactions int, genres map[string]float64) models.PreferenceProfile {
	p := models.NewPreferenceProfile(userID, Now.Add(-30*24*time.Hour))
	for g, v := range genres {
		p.GenrePreferences[g] = v
	}
	p.PlatformPreferences["Netflix"] = 1
	p.EraPreferences["2010s"] = 1
	p.ViewingPersonality = personality
	p.ConfidenceScore = confidence
	p.TotalInteractions = interactions
	p.LastCalculatedAt = Now
	return *p
}
