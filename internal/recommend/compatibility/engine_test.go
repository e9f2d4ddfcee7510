// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package compatibility

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/recommendtest"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

func newTestEngine(t *testing.T, repo *recommendtest.Repository) (*Engine, *cache.Memory) {
	t.Helper()
	mem := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	clock := recommend.FixedClock{T: recommendtest.Now}
	store := storage.NewProfileStore(repo, repo, clock, zerolog.Nop())
	return NewEngine(store, repo, mem, recommend.DefaultConfig(), zerolog.Nop()), mem
}

func seedProfile(t *testing.T, repo *recommendtest.Repository, p models.PreferenceProfile) {
	t.Helper()
	repo.AddUser(p.UserID)
	if err := repo.SaveProfile(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
}

func TestPersonality(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig().Personality
	tests := []struct {
		name string
		a, b models.ViewingPersonality
		want float64
	}{
		{"same critic", models.PersonalityCritic, models.PersonalityCritic, 1.0},
		{"same casual", models.PersonalityCasual, models.PersonalityCasual, 1.0},
		{"casual with explorer", models.PersonalityCasual, models.PersonalityExplorer, 0.8},
		{"binge with casual", models.PersonalityBingeWatcher, models.PersonalityCasual, 0.8},
		{"explorer with critic", models.PersonalityExplorer, models.PersonalityCritic, 0.6},
		{"binge with explorer", models.PersonalityBingeWatcher, models.PersonalityExplorer, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Personality(cfg, tt.a, tt.b); got != tt.want {
				t.Errorf("Personality(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Personality(cfg, tt.b, tt.a); got != tt.want {
				t.Errorf("Personality(%s, %s) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestScore_IdenticalProfiles(t *testing.T) {
	t.Parallel()

	p := recommendtest.Profile(1, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1, "Drama": 0.5})
	q := p
	q.UserID = 2

	bd := Score(recommend.DefaultConfig(), &p, &q)
	if math.Abs(bd.Score-1) > 1e-9 {
		t.Errorf("Score(identical) = %v, want 1", bd.Score)
	}
}

func TestScore_Symmetric(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	a := recommendtest.Profile(1, models.PersonalityExplorer, 0.8, 20, map[string]float64{"Action": 1, "Comedy": 0.3})
	b := recommendtest.Profile(2, models.PersonalityCasual, 0.6, 12, map[string]float64{"Comedy": 1, "Horror": 0.7})
	b.PlatformPreferences = map[string]float64{"Hulu": 1}

	ab := Score(cfg, &a, &b)
	ba := Score(cfg, &b, &a)
	if ab != ba {
		t.Errorf("Score not symmetric: %+v vs %+v", ab, ba)
	}
	if ab.Score < 0 || ab.Score > 1 {
		t.Errorf("Score out of range: %v", ab.Score)
	}
	if ab.Platform != 0 {
		t.Errorf("Platform similarity = %v, want 0 for disjoint platforms", ab.Platform)
	}
}

func TestScore_EmptyProfiles(t *testing.T) {
	t.Parallel()

	a := models.NewPreferenceProfile(1, recommendtest.Now)
	b := models.NewPreferenceProfile(2, recommendtest.Now)

	// Only the personality term contributes: CASUAL/CASUAL at weight 0.2 of 1.0.
	got := Score(recommend.DefaultConfig(), a, b).Score
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Score(empty) = %v, want 0.2", got)
	}
}

func TestEngine_CalculateUserCompatibility_CachedSymmetrically(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	seedProfile(t, repo, recommendtest.Profile(1, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1}))
	seedProfile(t, repo, recommendtest.Profile(2, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1, "Drama": 1}))
	e, mem := newTestEngine(t, repo)
	ctx := context.Background()

	ab, err := e.CalculateUserCompatibility(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := mem.Get(ctx, "compat:1:2"); !ok {
		t.Fatal("pair score was not cached under compat:1:2")
	}

	ba, err := e.CalculateUserCompatibility(ctx, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("compatibility(1,2) = %v, compatibility(2,1) = %v", ab, ba)
	}
	// The cached read consults the pair key and its mirror.
	if stats := mem.GetStats(); stats.Hits != 2 {
		t.Errorf("cache hits = %d, want 2", stats.Hits)
	}
}

func TestEngine_InvalidateUser_DropsPairScores(t *testing.T) {
	t.Parallel()

	for _, invalidated := range []int64{1, 2} {
		repo := recommendtest.New()
		seedProfile(t, repo, recommendtest.Profile(1, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1}))
		seedProfile(t, repo, recommendtest.Profile(2, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1}))
		seedProfile(t, repo, recommendtest.Profile(3, models.PersonalityCritic, 0.8, 20, map[string]float64{"Action": 1}))
		e, _ := newTestEngine(t, repo)
		ctx := context.Background()

		before, err := e.CalculateUserCompatibility(ctx, 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.CalculateUserCompatibility(ctx, 2, 3); err != nil {
			t.Fatal(err)
		}

		// User 2 now prefers something else entirely.
		changed := recommendtest.Profile(2, models.PersonalityExplorer, 0.8, 20, map[string]float64{"Romance": 1})
		changed.PlatformPreferences = map[string]float64{"Hulu": 1}
		changed.EraPreferences = map[string]float64{"1980s": 1}
		if err := repo.SaveProfile(ctx, &changed); err != nil {
			t.Fatal(err)
		}

		if stale, _ := e.CalculateUserCompatibility(ctx, 1, 2); stale != before {
			t.Fatalf("score changed before invalidation: %v -> %v", before, stale)
		}
		if err := e.InvalidateUser(ctx, invalidated); err != nil {
			t.Fatal(err)
		}
		after, err := e.CalculateUserCompatibility(ctx, 2, 1)
		if err != nil {
			t.Fatal(err)
		}
		if after >= before {
			t.Errorf("invalidate user %d: compatibility(1,2) = %v, want below cached %v", invalidated, after, before)
		}
	}
}

func TestEngine_CalculateUserCompatibility_UnknownUser(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	e, _ := newTestEngine(t, repo)

	_, err := e.CalculateUserCompatibility(context.Background(), 1, 99)
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEngine_FindSimilarUsers(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	action := map[string]float64{"Action": 1, "Thriller": 0.6}
	seedProfile(t, repo, recommendtest.Profile(1, models.PersonalityCritic, 0.9, 30, action))
	seedProfile(t, repo, recommendtest.Profile(3, models.PersonalityCritic, 0.9, 30, action))
	seedProfile(t, repo, recommendtest.Profile(2, models.PersonalityCritic, 0.9, 30, action))
	// Low confidence is never a candidate.
	seedProfile(t, repo, recommendtest.Profile(4, models.PersonalityCritic, 0.1, 30, action))
	// Too few interactions.
	seedProfile(t, repo, recommendtest.Profile(5, models.PersonalityCritic, 0.9, 2, action))
	// Dissimilar taste falls under MinSimilarityScore.
	dissimilar := recommendtest.Profile(6, models.PersonalityExplorer, 0.9, 30, map[string]float64{"Romance": 1})
	dissimilar.PlatformPreferences = map[string]float64{"Hulu": 1}
	dissimilar.EraPreferences = map[string]float64{"1980s": 1}
	seedProfile(t, repo, dissimilar)

	e, _ := newTestEngine(t, repo)
	ctx := context.Background()

	got, err := e.FindSimilarUsers(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("FindSimilarUsers() returned %d users, want 2: %+v", len(got), got)
	}
	// Equal scores tie-break by user id.
	if got[0].UserID != 2 || got[1].UserID != 3 {
		t.Errorf("order = [%d %d], want [2 3]", got[0].UserID, got[1].UserID)
	}
	if got[0].Username != "user2" {
		t.Errorf("username = %q, want user2", got[0].Username)
	}

	limited, err := e.FindSimilarUsers(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].UserID != 2 {
		t.Errorf("FindSimilarUsers(limit=1) = %+v, want only user 2", limited)
	}

	none, err := e.FindSimilarUsers(ctx, 1, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("FindSimilarUsers(limit=0) = %+v, %v; want empty", none, err)
	}
}

func TestEngine_FindSimilarUsers_InvalidateUser(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	action := map[string]float64{"Action": 1}
	seedProfile(t, repo, recommendtest.Profile(1, models.PersonalityCritic, 0.9, 30, action))
	seedProfile(t, repo, recommendtest.Profile(2, models.PersonalityCritic, 0.9, 30, action))
	e, _ := newTestEngine(t, repo)
	ctx := context.Background()

	first, err := e.FindSimilarUsers(ctx, 1, 10)
	if err != nil || len(first) != 1 {
		t.Fatalf("FindSimilarUsers() = %+v, %v", first, err)
	}

	seedProfile(t, repo, recommendtest.Profile(3, models.PersonalityCritic, 0.9, 30, action))

	cached, _ := e.FindSimilarUsers(ctx, 1, 10)
	if len(cached) != 1 {
		t.Errorf("cached result changed before invalidation: %+v", cached)
	}

	if err := e.InvalidateUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	fresh, _ := e.FindSimilarUsers(ctx, 1, 10)
	if len(fresh) != 2 {
		t.Errorf("after invalidation got %d users, want 2", len(fresh))
	}
}

func TestEngine_NilCache(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	seedProfile(t, repo, recommendtest.Profile(1, models.PersonalityCritic, 0.9, 30, map[string]float64{"Action": 1}))
	seedProfile(t, repo, recommendtest.Profile(2, models.PersonalityCritic, 0.9, 30, map[string]float64{"Action": 1}))
	store := storage.NewProfileStore(repo, repo, recommend.FixedClock{T: recommendtest.Now}, zerolog.Nop())
	e := NewEngine(store, repo, nil, recommend.DefaultConfig(), zerolog.Nop())
	ctx := context.Background()

	if _, err := e.CalculateUserCompatibility(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.FindSimilarUsers(ctx, 1, 5); err != nil {
		t.Fatal(err)
	}
	if err := e.InvalidateUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
}
