// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package scoremath provides the numeric primitives shared by the
// recommendation engines. Every function is pure and safe for concurrent use.
package scoremath

import (
	"errors"
	"math"
	"sort"
	"time"
)

var (
	// ErrZeroWeights is returned by WeightedAverage when the weights sum to zero.
	ErrZeroWeights = errors.New("weights sum to zero")

	// ErrLengthMismatch is returned by WeightedAverage when values and weights differ in length.
	ErrLengthMismatch = errors.New("values and weights length mismatch")
)

// Confidence curve parameters.
const (
	ConfidenceVolumeWeight    = 0.6
	ConfidenceTimeWeight      = 0.2
	ConfidenceDiversityWeight = 0.2
	ConfidenceVolumeRate      = 0.05
	ConfidenceTimeRate        = 0.02
)

const hoursPerDay = 24.0

// Clamp01 bounds v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizeScores rescales scores so the maximum maps to 1.0 while relative
// ordering is preserved. Non-positive and NaN inputs become 0. An all-zero
// input stays all zeros.
func NormalizeScores(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	var maxScore float64
	for _, s := range scores {
		if !math.IsNaN(s) && !math.IsInf(s, 0) && s > maxScore {
			maxScore = s
		}
	}

	for k, s := range scores {
		if maxScore == 0 || math.IsNaN(s) || s <= 0 {
			out[k] = 0
			continue
		}
		if math.IsInf(s, 1) {
			out[k] = 1
			continue
		}
		out[k] = s / maxScore
	}
	return out
}

// CosineSimilarity treats two label maps as sparse vectors over the union of
// their keys. It returns 0 when either norm is 0 and clamps into [0, 1].
// Keys are visited in sorted order so the result is bit-for-bit symmetric.
func CosineSimilarity(a, b map[string]float64) float64 {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var dot, normA, normB float64
	for _, k := range keys {
		va, vb := a[k], b[k]
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return Clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// WeightedAverage returns sum(value*weight) / sum(weight).
func WeightedAverage(values, weights []float64) (float64, error) {
	if len(values) != len(weights) {
		return 0, ErrLengthMismatch
	}
	var num, den float64
	for i := range values {
		num += values[i] * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0, ErrZeroWeights
	}
	return num / den, nil
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, 0 for fewer than 2 samples.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values))
}

// StandardDeviation returns the population standard deviation, 0 for fewer
// than 2 samples.
func StandardDeviation(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// DaysBetween returns the non-negative number of days from then to now.
func DaysBetween(then, now time.Time) float64 {
	if !now.After(then) {
		return 0
	}
	return now.Sub(then).Hours() / hoursPerDay
}

// ApplyTimeDecay scales base by exp(-decayFactor * days) where days is the age
// of eventTime at now. Event times in the future count as zero days.
func ApplyTimeDecay(base float64, eventTime, now time.Time, decayFactor float64) float64 {
	return base * math.Exp(-decayFactor*DaysBetween(eventTime, now))
}

// CalculateConfidenceScore blends saturating volume and time curves with a
// diversity term. The result is non-decreasing in interactionCount and
// timeSpanDays and always in [0, 1]. Zero interactions give 0.
func CalculateConfidenceScore(interactionCount int, timeSpanDays, diversity float64) float64 {
	if interactionCount <= 0 {
		return 0
	}
	if timeSpanDays < 0 || math.IsNaN(timeSpanDays) {
		timeSpanDays = 0
	}
	volume := 1 - math.Exp(-ConfidenceVolumeRate*float64(interactionCount))
	span := 1 - math.Exp(-ConfidenceTimeRate*timeSpanDays)
	return Clamp01(ConfidenceVolumeWeight*volume +
		ConfidenceTimeWeight*span +
		ConfidenceDiversityWeight*Clamp01(diversity))
}

// CalculateDiversity returns the Shannon entropy of the distribution divided
// by ln(n), where n counts the positive entries. One or zero categories give 0.
func CalculateDiversity(categoryScores map[string]float64) float64 {
	var total float64
	n := 0
	for _, v := range categoryScores {
		if v > 0 && !math.IsNaN(v) {
			total += v
			n++
		}
	}
	if n < 2 || total == 0 {
		return 0
	}

	var entropy float64
	for _, v := range categoryScores {
		if v <= 0 || math.IsNaN(v) {
			continue
		}
		p := v / total
		entropy -= p * math.Log(p)
	}
	return Clamp01(entropy / math.Log(float64(n)))
}
