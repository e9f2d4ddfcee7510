// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package preference

import (
	"math"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/scoremath"
)

// unratedBase is the per-label base score when no interaction with the label is rated.
const unratedBase = 0.5

// Signals are the behavioral summary values derived from an interaction history.
type Signals struct {
	TotalInteractions int
	TotalCompleted    int
	CompletionRate    float64
	LongSessionShare  float64
	GenreDiversity    float64
	AverageRating     float64
	RatingVariance    float64
	RatingCount       int
}

// Analysis is the full derivation of a profile from interactions.
type Analysis struct {
	Genres      map[string]float64
	Platforms   map[string]float64
	Eras        map[string]float64
	Signals     Signals
	Personality models.ViewingPersonality
	Confidence  float64
}

// labelAccumulator gathers per-label evidence for one dimension.
type labelAccumulator struct {
	count     int
	ratingSum float64
	rated     int
	decaySum  float64
}

type dimension map[string]*labelAccumulator

func (d dimension) add(label string, rec *models.InteractionRecord, decay float64) {
	acc, ok := d[label]
	if !ok {
		acc = &labelAccumulator{}
		d[label] = acc
	}
	acc.count++
	acc.decaySum += decay
	if rec.HasRating() {
		acc.ratingSum += rescaleRating(rec.RatingValue())
		acc.rated++
	}
}

// scores computes base * log(count+1) * meanDecay per label, then normalizes.
func (d dimension) scores() map[string]float64 {
	raw := make(map[string]float64, len(d))
	for label, acc := range d {
		base := unratedBase
		if acc.rated > 0 {
			base = acc.ratingSum / float64(acc.rated)
		}
		meanDecay := acc.decaySum / float64(acc.count)
		raw[label] = base * math.Log(float64(acc.count)+1) * meanDecay
	}
	return scoremath.NormalizeScores(raw)
}

func (d dimension) counts() map[string]float64 {
	out := make(map[string]float64, len(d))
	for label, acc := range d {
		out[label] = float64(acc.count)
	}
	return out
}

// rescaleRating maps a 1-10 rating onto [0, 1].
func rescaleRating(r float64) float64 {
	span := float64(models.MaxInteractionRating - models.MinInteractionRating)
	return scoremath.Clamp01((r - models.MinInteractionRating) / span)
}

// Analyze derives preference maps, signals, personality and confidence from
// an interaction history. media resolves media ids; interactions whose media
// is missing still count toward the totals but not toward any dimension.
// profileCreatedAt anchors the profile age used by the confidence curve.
//
//nolint:gocritic // cfg passed by value for immutability
func Analyze(
	cfg recommend.Config,
	interactions []models.InteractionRecord,
	media map[int64]*models.Media,
	profileCreatedAt, now time.Time,
) Analysis {
	genres, platforms, eras := dimension{}, dimension{}, dimension{}

	var (
		completed    int
		longSessions int
		ratings      = make([]float64, 0, len(interactions))
	)

	for i := range interactions {
		rec := &interactions[i]

		if rec.IsCompleted() {
			completed++
		}
		if isLongSession(cfg.Personality, rec) {
			longSessions++
		}
		if rec.HasRating() {
			ratings = append(ratings, rec.RatingValue())
		}

		m, ok := media[rec.MediaID]
		if !ok || m == nil {
			continue
		}
		decay := scoremath.ApplyTimeDecay(1, rec.UpdatedAt, now, cfg.TimeDecayFactor)
		for _, g := range m.Genres {
			genres.add(g, rec, decay)
		}
		for _, p := range m.Platforms {
			platforms.add(p, rec, decay)
		}
		eras.add(m.Era(), rec, decay)
	}

	total := len(interactions)
	sig := Signals{
		TotalInteractions: total,
		TotalCompleted:    completed,
		GenreDiversity:    scoremath.CalculateDiversity(genres.counts()),
		AverageRating:     scoremath.Mean(ratings),
		RatingVariance:    scoremath.Variance(ratings),
		RatingCount:       len(ratings),
	}
	if total > 0 {
		sig.CompletionRate = float64(completed) / float64(total)
		sig.LongSessionShare = float64(longSessions) / float64(total)
	}

	return Analysis{
		Genres:      genres.scores(),
		Platforms:   platforms.scores(),
		Eras:        eras.scores(),
		Signals:     sig,
		Personality: Classify(cfg.Personality, sig),
		Confidence: scoremath.CalculateConfidenceScore(
			total,
			scoremath.DaysBetween(profileCreatedAt, now),
			sig.GenreDiversity,
		),
	}
}

// isLongSession reports whether the interaction was (nearly) finished within
// the long-session window.
func isLongSession(cfg recommend.PersonalityConfig, rec *models.InteractionRecord) bool {
	return rec.CompletionPercentage >= cfg.LongSessionCompletion && rec.Duration() <= cfg.LongSessionWindow
}

// Classify applies the fixed personality decision order.
//
//nolint:gocritic // cfg passed by value for immutability
func Classify(cfg recommend.PersonalityConfig, s Signals) models.ViewingPersonality {
	switch {
	case s.TotalInteractions < cfg.MinInteractions:
		return models.PersonalityCasual
	case s.CompletionRate > cfg.BingeCompletionRate && s.LongSessionShare >= cfg.BingeLongSessionShare:
		return models.PersonalityBingeWatcher
	case s.GenreDiversity > cfg.ExplorerDiversity:
		return models.PersonalityExplorer
	case s.RatingCount >= cfg.CriticMinRatings && s.RatingVariance > cfg.CriticRatingVariance:
		return models.PersonalityCritic
	default:
		return models.PersonalityCasual
	}
}

// apply copies the analysis into the profile. It fully replaces every derived field.
func (a *Analysis) apply(p *models.PreferenceProfile, now time.Time) {
	p.GenrePreferences = a.Genres
	p.PlatformPreferences = a.Platforms
	p.EraPreferences = a.Eras
	p.ViewingPersonality = a.Personality
	p.ConfidenceScore = a.Confidence
	p.TotalInteractions = a.Signals.TotalInteractions
	p.TotalCompleted = a.Signals.TotalCompleted
	p.CompletionRate = a.Signals.CompletionRate
	p.AverageUserRating = a.Signals.AverageRating
	p.RatingVariance = a.Signals.RatingVariance
	p.LastCalculatedAt = now
}
