// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package compatibility

import (
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/scoremath"
)

// Breakdown holds the per-dimension terms of a compatibility score.
type Breakdown struct {
	Genre       float64 `json:"genre"`
	Platform    float64 `json:"platform"`
	Era         float64 `json:"era"`
	Personality float64 `json:"personality"`
	Score       float64 `json:"score"`
}

// Score computes the compatibility of two profiles. The result is symmetric
// in its arguments and lies in [0, 1].
//
//nolint:gocritic // cfg passed by value for immutability
func Score(cfg recommend.Config, a, b *models.PreferenceProfile) Breakdown {
	w := cfg.Weights.Compatibility()

	bd := Breakdown{
		Genre:       scoremath.CosineSimilarity(a.GenrePreferences, b.GenrePreferences),
		Platform:    scoremath.CosineSimilarity(a.PlatformPreferences, b.PlatformPreferences),
		Era:         scoremath.CosineSimilarity(a.EraPreferences, b.EraPreferences),
		Personality: Personality(cfg.Personality, a.ViewingPersonality, b.ViewingPersonality),
	}

	// Weights are normalized, so the sum is never zero here.
	score, err := scoremath.WeightedAverage(
		[]float64{bd.Genre, bd.Platform, bd.Era, bd.Personality},
		[]float64{w.Genre, w.Platform, w.Era, w.Personality},
	)
	if err != nil {
		score = 0
	}
	bd.Score = scoremath.Clamp01(score)
	return bd
}

// Personality looks up the personality compatibility matrix.
//
//	same personality     -> SameCompatibility
//	CASUAL with anything -> CasualCompatibility
//	any other pair       -> MediumCompatibility
//
//nolint:gocritic // cfg passed by value for immutability
func Personality(cfg recommend.PersonalityConfig, a, b models.ViewingPersonality) float64 {
	switch {
	case a == b:
		return cfg.SameCompatibility
	case a == models.PersonalityCasual || b == models.PersonalityCasual:
		return cfg.CasualCompatibility
	default:
		return cfg.MediumCompatibility
	}
}
