// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"math"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/scoremath"
)

// neutralAlignment is used for the rating term when either side has no rating.
const neutralAlignment = 0.5

// CalculateContentRelevanceScore scores how well media fits profile, in [0, 1].
func CalculateContentRelevanceScore(w recommend.RelevanceWeights, profile *models.PreferenceProfile, media *models.Media) float64 {
	genre := genreAlignment(profile.GenrePreferences, media.Genres)
	platform := platformAlignment(profile.PlatformPreferences, media.Platforms)
	era := profile.EraPreferences[media.Era()]
	rating := ratingAlignment(profile.AverageUserRating, media.AverageRating)

	score, err := scoremath.WeightedAverage(
		[]float64{genre, platform, era, rating},
		[]float64{w.Genre, w.Platform, w.Era, w.Rating},
	)
	if err != nil {
		return 0
	}
	return scoremath.Clamp01(score)
}

func genreAlignment(prefs map[string]float64, genres []string) float64 {
	if len(genres) == 0 {
		return 0
	}
	var sum float64
	for _, g := range genres {
		sum += prefs[g]
	}
	return sum / float64(len(genres))
}

func platformAlignment(prefs map[string]float64, platforms []string) float64 {
	var best float64
	for _, p := range platforms {
		if v := prefs[p]; v > best {
			best = v
		}
	}
	return best
}

func ratingAlignment(userAvg, mediaRating float64) float64 {
	if userAvg <= 0 || mediaRating <= 0 {
		return neutralAlignment
	}
	return scoremath.Clamp01(1 - math.Abs(mediaRating-userAvg)/10)
}

// bestGenre returns the item genre the profile prefers most.
func bestGenre(prefs map[string]float64, genres []string) string {
	best, bestScore := "", -1.0
	for _, g := range genres {
		if v := prefs[g]; v > bestScore {
			best, bestScore = g, v
		}
	}
	return best
}
