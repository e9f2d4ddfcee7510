// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package scoremath

import (
	"errors"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestNormalizeScores(t *testing.T) {
	t.Parallel()

	t.Run("max maps to one and order preserved", func(t *testing.T) {
		in := map[string]float64{"Action": 4, "Drama": 2, "Comedy": 1}
		out := NormalizeScores(in)

		if !almostEqual(out["Action"], 1.0) {
			t.Errorf("max = %f, want 1.0", out["Action"])
		}
		if !(out["Action"] > out["Drama"] && out["Drama"] > out["Comedy"]) {
			t.Errorf("order not preserved: %v", out)
		}
		if !almostEqual(out["Drama"], 0.5) {
			t.Errorf("Drama = %f, want 0.5", out["Drama"])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if out := NormalizeScores(nil); len(out) != 0 {
			t.Errorf("NormalizeScores(nil) = %v, want empty", out)
		}
	})

	t.Run("non-positive and NaN clamp to zero", func(t *testing.T) {
		out := NormalizeScores(map[string]float64{"a": 2, "b": -1, "c": math.NaN(), "d": 0})
		for _, k := range []string{"b", "c", "d"} {
			if out[k] != 0 {
				t.Errorf("%s = %f, want 0", k, out[k])
			}
		}
		if out["a"] != 1 {
			t.Errorf("a = %f, want 1", out["a"])
		}
	})

	t.Run("all zero stays zero", func(t *testing.T) {
		out := NormalizeScores(map[string]float64{"a": 0, "b": 0})
		for k, v := range out {
			if v != 0 {
				t.Errorf("%s = %f, want 0", k, v)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := map[string]float64{"a": 10}
		_ = NormalizeScores(in)
		if in["a"] != 10 {
			t.Errorf("input mutated: %v", in)
		}
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	v := map[string]float64{"Action": 1, "Drama": 0.5, "Horror": 0.2}

	tests := []struct {
		name string
		a, b map[string]float64
		want float64
	}{
		{"self similarity", v, v, 1.0},
		{"zero vector", v, map[string]float64{}, 0},
		{"nil vector", nil, v, 0},
		{"disjoint", map[string]float64{"a": 1}, map[string]float64{"b": 1}, 0},
		{"scaled copy", map[string]float64{"a": 1, "b": 2}, map[string]float64{"a": 2, "b": 4}, 1.0},
		{"half overlap", map[string]float64{"a": 1, "b": 1}, map[string]float64{"a": 1}, 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
			if rev := CosineSimilarity(tt.b, tt.a); !almostEqual(rev, got) {
				t.Errorf("not symmetric: %f vs %f", got, rev)
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	t.Parallel()

	got, err := WeightedAverage([]float64{1, 0.5}, []float64{3, 1})
	if err != nil {
		t.Fatalf("WeightedAverage() error = %v", err)
	}
	if !almostEqual(got, 0.875) {
		t.Errorf("WeightedAverage() = %f, want 0.875", got)
	}

	if _, err := WeightedAverage([]float64{1}, []float64{0}); !errors.Is(err, ErrZeroWeights) {
		t.Errorf("zero weights error = %v, want ErrZeroWeights", err)
	}
	if _, err := WeightedAverage([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatch error = %v, want ErrLengthMismatch", err)
	}
}

func TestStandardDeviation(t *testing.T) {
	t.Parallel()

	if got := StandardDeviation([]float64{5}); got != 0 {
		t.Errorf("single sample = %f, want 0", got)
	}
	if got := StandardDeviation(nil); got != 0 {
		t.Errorf("empty = %f, want 0", got)
	}
	if got := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 2) {
		t.Errorf("StandardDeviation() = %f, want 2", got)
	}
	if got := Variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 4) {
		t.Errorf("Variance() = %f, want 4", got)
	}
}

func TestApplyTimeDecay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := ApplyTimeDecay(2, now, now, 0.01); !almostEqual(got, 2) {
		t.Errorf("same instant = %f, want 2", got)
	}
	if got := ApplyTimeDecay(1, now.Add(48*time.Hour), now, 0.5); !almostEqual(got, 1) {
		t.Errorf("future event = %f, want 1", got)
	}

	tenDays := ApplyTimeDecay(1, now.Add(-10*24*time.Hour), now, 0.1)
	if !almostEqual(tenDays, math.Exp(-1)) {
		t.Errorf("ten days at 0.1 = %f, want e^-1", tenDays)
	}

	older := ApplyTimeDecay(1, now.Add(-20*24*time.Hour), now, 0.1)
	if older >= tenDays {
		t.Errorf("older signal %f should decay below newer %f", older, tenDays)
	}
}

func TestCalculateConfidenceScore(t *testing.T) {
	t.Parallel()

	if got := CalculateConfidenceScore(0, 100, 1); got != 0 {
		t.Errorf("zero interactions = %f, want 0", got)
	}
	if got := CalculateConfidenceScore(-4, 100, 1); got != 0 {
		t.Errorf("negative interactions = %f, want 0", got)
	}

	t.Run("non-decreasing in count", func(t *testing.T) {
		prev := 0.0
		for n := 1; n <= 500; n++ {
			c := CalculateConfidenceScore(n, 30, 0.5)
			if c < prev {
				t.Fatalf("confidence decreased at n=%d: %f < %f", n, c, prev)
			}
			if c < 0 || c > 1 {
				t.Fatalf("confidence out of range at n=%d: %f", n, c)
			}
			prev = c
		}
	})

	t.Run("non-decreasing in time span", func(t *testing.T) {
		prev := 0.0
		for d := 0.0; d <= 1000; d += 10 {
			c := CalculateConfidenceScore(10, d, 0.5)
			if c < prev {
				t.Fatalf("confidence decreased at days=%f", d)
			}
			prev = c
		}
	})

	t.Run("saturates", func(t *testing.T) {
		c := CalculateConfidenceScore(1_000_000, 1_000_000, 1)
		if c > 1 || c < 0.99 {
			t.Errorf("saturated confidence = %f, want ~1", c)
		}
	})
}

func TestCalculateDiversity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores map[string]float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single category", map[string]float64{"Action": 1}, 0},
		{"uniform", map[string]float64{"a": 1, "b": 1, "c": 1, "d": 1}, 1},
		{"zeros ignored", map[string]float64{"a": 1, "b": 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDiversity(tt.scores); !almostEqual(got, tt.want) {
				t.Errorf("CalculateDiversity() = %f, want %f", got, tt.want)
			}
		})
	}

	skewed := CalculateDiversity(map[string]float64{"a": 10, "b": 1, "c": 1})
	if skewed <= 0 || skewed >= 1 {
		t.Errorf("skewed diversity = %f, want in (0, 1)", skewed)
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	cases := map[float64]float64{-1: 0, 0.4: 0.4, 3: 1}
	for in, want := range cases {
		if got := Clamp01(in); got != want {
			t.Errorf("Clamp01(%f) = %f, want %f", in, got, want)
		}
	}
	if got := Clamp01(math.NaN()); got != 0 {
		t.Errorf("Clamp01(NaN) = %f, want 0", got)
	}
}
