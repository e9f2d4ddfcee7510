// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import (
	"testing"
	"time"
)

func TestDecadeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year int
		want string
	}{
		{1994, "1990s"},
		{2000, "2000s"},
		{2019, "2010s"},
		{0, UnknownEra},
		{-5, UnknownEra},
	}

	for _, tt := range tests {
		if got := DecadeLabel(tt.year); got != tt.want {
			t.Errorf("DecadeLabel(%d) = %q, want %q", tt.year, got, tt.want)
		}
	}
}

func TestMedia_SharesGenre(t *testing.T) {
	t.Parallel()

	a := &Media{Genres: []string{"Action", "Thriller"}}
	b := &Media{Genres: []string{"Comedy", "Thriller"}}
	c := &Media{Genres: []string{"Drama"}}

	if !a.SharesGenre(b) {
		t.Error("expected Action/Thriller to share a genre with Comedy/Thriller")
	}
	if a.SharesGenre(c) {
		t.Error("expected no shared genre with Drama")
	}
}

func TestInteractionRecord_Rating(t *testing.T) {
	t.Parallel()

	rating := func(v int) *int { return &v }

	tests := []struct {
		name      string
		rating    *int
		hasRating bool
		value     float64
	}{
		{"unrated", nil, false, 0},
		{"valid", rating(7), true, 7},
		{"below range", rating(0), false, 0},
		{"above range", rating(11), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &InteractionRecord{Rating: tt.rating}
			if got := r.HasRating(); got != tt.hasRating {
				t.Errorf("HasRating() = %v, want %v", got, tt.hasRating)
			}
			if got := r.RatingValue(); got != tt.value {
				t.Errorf("RatingValue() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestInteractionRecord_Duration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := &InteractionRecord{CreatedAt: start, UpdatedAt: start.Add(3 * time.Hour)}
	if got := r.Duration(); got != 3*time.Hour {
		t.Errorf("Duration() = %v, want 3h", got)
	}

	backwards := &InteractionRecord{CreatedAt: start, UpdatedAt: start.Add(-time.Hour)}
	if got := backwards.Duration(); got != 0 {
		t.Errorf("Duration() with UpdatedAt before CreatedAt = %v, want 0", got)
	}
}

func TestPolarityForRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating int
		want   FeedbackPolarity
	}{
		{1, FeedbackNegative},
		{3, FeedbackNegative},
		{4, FeedbackPositive},
		{5, FeedbackPositive},
	}

	for _, tt := range tests {
		if got := PolarityForRating(tt.rating); got != tt.want {
			t.Errorf("PolarityForRating(%d) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestPreferenceProfile_Clone(t *testing.T) {
	t.Parallel()

	now := time.Now()
	p := NewPreferenceProfile(7, now)
	p.GenrePreferences["Action"] = 1.0

	c := p.Clone()
	c.GenrePreferences["Action"] = 0.2
	c.GenrePreferences["Drama"] = 0.5

	if p.GenrePreferences["Action"] != 1.0 {
		t.Errorf("clone mutation leaked into original: %v", p.GenrePreferences)
	}
	if _, ok := p.GenrePreferences["Drama"]; ok {
		t.Error("clone key leaked into original")
	}
	if c.ViewingPersonality != PersonalityCasual {
		t.Errorf("ViewingPersonality = %s, want CASUAL", c.ViewingPersonality)
	}
}

func TestRecommendation_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rec := &ContentRecommendation{CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	if rec.IsExpired(now) {
		t.Error("fresh recommendation reported expired")
	}
	if !rec.IsExpired(now.Add(time.Hour)) {
		t.Error("recommendation at ExpiresAt should be expired")
	}

	group := &GroupRecommendation{CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	if !group.IsExpired(now.Add(2 * time.Minute)) {
		t.Error("group recommendation past ExpiresAt should be expired")
	}
}
