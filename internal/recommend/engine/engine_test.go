// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/compatibility"
	"github.com/tomtom215/reelmatch/internal/recommend/preference"
	"github.com/tomtom215/reelmatch/internal/recommend/recommendtest"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

func newTestEngine(t *testing.T, repo *recommendtest.Repository) *Engine {
	t.Helper()
	mem := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })

	cfg := recommend.DefaultConfig()
	clock := recommend.FixedClock{T: recommendtest.Now}
	logger := zerolog.Nop()

	store := storage.NewProfileStore(repo, repo, clock, logger)
	prefs := preference.NewEngine(repo, repo, store, cfg, clock, logger)
	compat := compatibility.NewEngine(store, repo, mem, cfg, logger)
	strategies := DefaultStrategies(repo, compat, mem, cfg, clock, logger)
	return NewEngine(repo, prefs, compat, strategies, cfg, clock, logger)
}

// seedCatalog adds movies 1..n, each with its own genre so diversification
// never drops any of them.
func seedCatalog(repo *recommendtest.Repository, n int) {
	genres := []string{"Action", "Drama", "Comedy", "Horror", "Sci-Fi", "Romance", "Thriller", "Documentary"}
	for i := 1; i <= n; i++ {
		repo.AddMedia(recommendtest.Movie(int64(i), "Movie", 2015, 7, genres[(i-1)%len(genres)]))
	}
}

func seedContent(t *testing.T, repo *recommendtest.Repository, id string, userID int64, expiresAt time.Time) {
	t.Helper()
	rec := &models.ContentRecommendation{
		ID:             id,
		UserID:         userID,
		MediaID:        1,
		Type:           models.RecommendationTrending,
		Reason:         models.ReasonTrending,
		RelevanceScore: 0.5,
		CreatedAt:      recommendtest.Now.Add(-time.Hour),
		ExpiresAt:      expiresAt,
	}
	if err := repo.SaveContentRecommendation(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func seedGroupRec(t *testing.T, repo *recommendtest.Repository, id string, userID int64, expiresAt time.Time) {
	t.Helper()
	rec := &models.GroupRecommendation{
		ID:                 id,
		UserID:             userID,
		GroupID:            10,
		CompatibilityScore: 0.7,
		Reason:             models.ReasonCompatibleMembers,
		CreatedAt:          recommendtest.Now.Add(-time.Hour),
		ExpiresAt:          expiresAt,
	}
	if err := repo.SaveGroupRecommendation(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason  models.ReasonCode
		subject string
		want    string
	}{
		{models.ReasonGenreMatch, "Drama", "Because you enjoy Drama"},
		{models.ReasonGenreMatch, "", "Matches your favorite genres"},
		{models.ReasonSimilarContent, "Heat", "Because you watched Heat"},
		{models.ReasonSimilarUsers, "1", "Rated highly by a user with similar taste"},
		{models.ReasonSimilarUsers, "3", "Rated highly by 3 users with similar taste"},
		{models.ReasonTrending, "", "Trending now"},
		{models.ReasonCompatibleMembers, "2", "2 members of this group share your taste"},
		{"UNKNOWN", "x", "Recommended for you"},
	}
	for _, tt := range tests {
		if got := Explain(tt.reason, tt.subject); got != tt.want {
			t.Errorf("Explain(%s, %q) = %q, want %q", tt.reason, tt.subject, got, tt.want)
		}
	}
}

func TestGetRealTimeRecommendations_ColdStart(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedCatalog(repo, 4)
	e := newTestEngine(t, repo)

	recs, err := e.GetRealTimeRecommendations(context.Background(), 1, nil, 10)
	if err != nil {
		t.Fatalf("GetRealTimeRecommendations() error = %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d recommendations, want 4", len(recs))
	}
	for i, r := range recs {
		if r.Type != models.RecommendationTrending {
			t.Errorf("recs[%d].Type = %s, want TRENDING", i, r.Type)
		}
		if r.Explanation != "Trending now" {
			t.Errorf("recs[%d].Explanation = %q", i, r.Explanation)
		}
		if want := int64(i + 1); r.Media.ID != want {
			t.Errorf("recs[%d].Media.ID = %d, want %d (popularity order)", i, r.Media.ID, want)
		}
	}
	if len(repo.ContentRecommendations()) != 0 {
		t.Error("real-time recommendations must not be persisted")
	}
}

func TestGetRealTimeRecommendations_ExcludesHistory(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedCatalog(repo, 8)
	for id := int64(1); id <= 5; id++ {
		repo.AddInteraction(recommendtest.Completed(1, id, 8, time.Duration(id)*24*time.Hour))
	}
	e := newTestEngine(t, repo)

	unknown := int64(999)
	recs, err := e.GetRealTimeRecommendations(context.Background(), 1, &unknown, 0)
	if err != nil {
		t.Fatalf("GetRealTimeRecommendations() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	for _, r := range recs {
		if r.Media.ID <= 5 {
			t.Errorf("media %d was already watched", r.Media.ID)
		}
	}
}

func TestGetRealTimeRecommendations_WithSeed(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	repo.AddMedia(
		recommendtest.Movie(1, "Heat", 2015, 8, "Action"),
		recommendtest.Movie(2, "Ronin", 2016, 8, "Action"),
		recommendtest.Movie(3, "Casino", 2014, 8, "Drama"),
		recommendtest.Movie(4, "Alien", 2013, 8, "Horror"),
		recommendtest.Movie(5, "Up", 2012, 8, "Comedy"),
		recommendtest.Movie(6, "Big", 2011, 8, "Romance"),
	)
	for id := int64(3); id <= 6; id++ {
		repo.AddInteraction(recommendtest.Completed(1, id, 8, 24*time.Hour))
	}
	repo.AddInteraction(recommendtest.Completed(1, 3, 9, 48*time.Hour))
	e := newTestEngine(t, repo)
	if _, err := e.preferences.UpdatePreferences(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	seed := int64(1)
	recs, err := e.GetRealTimeRecommendations(context.Background(), 1, &seed, 4)
	if err != nil {
		t.Fatalf("GetRealTimeRecommendations() error = %v", err)
	}
	for _, r := range recs {
		if r.Media.ID == seed {
			t.Error("seed item must not be recommended")
		}
	}
	if len(recs) != 1 || recs[0].Media.ID != 2 {
		t.Fatalf("recs = %+v, want only media 2", recs)
	}
	if recs[0].Type != models.RecommendationContentBased || recs[0].Explanation != "Because you watched Heat" {
		t.Errorf("recs[0] = %+v", recs[0])
	}
}

func TestGenerateContent_SkipsActiveMedia(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedCatalog(repo, 3)
	e := newTestEngine(t, repo)
	ctx := context.Background()

	n, err := e.GenerateContent(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("GenerateContent() = %d, want 3", n)
	}
	for _, rec := range repo.ContentRecommendations() {
		if rec.Type != models.RecommendationTrending {
			t.Errorf("type = %s, want TRENDING for a cold-start user", rec.Type)
		}
		if want := recommendtest.Now.Add(7 * 24 * time.Hour); !rec.ExpiresAt.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v", rec.ExpiresAt, want)
		}
		if rec.ID == "" || rec.Explanation == "" {
			t.Errorf("incomplete record %+v", rec)
		}
	}

	n, err = e.GenerateContent(ctx, 1)
	if err != nil {
		t.Fatalf("second GenerateContent() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second GenerateContent() = %d, want 0 while recommendations are active", n)
	}
}

func TestGenerateContent_InteractionError(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	boom := errors.New("store down")
	repo.InteractionsErr = func(int64) error { return boom }
	e := newTestEngine(t, repo)

	if _, err := e.GenerateContent(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("GenerateContent() error = %v, want %v", err, boom)
	}
}

func TestGenerateGroups(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	ctx := context.Background()
	taste := map[string]float64{"Action": 1, "Drama": 0.6}
	for _, id := range []int64{1, 2, 3, 4} {
		repo.AddUser(id)
		p := recommendtest.Profile(id, models.PersonalityCritic, 0.8, 20, taste)
		if err := repo.SaveProfile(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	repo.SetUserActive(4, false)

	repo.AddGroup(models.Group{ID: 10, Name: "Action fans", Public: true}, 2, 3)
	repo.AddGroup(models.Group{ID: 11, Name: "Dormant", Public: true}, 4)
	repo.AddGroup(models.Group{ID: 12, Name: "Private", Public: false}, 2)
	repo.AddGroup(models.Group{ID: 13, Name: "Mine", Public: true}, 1, 2)
	e := newTestEngine(t, repo)

	n, err := e.GenerateGroups(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateGroups() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("GenerateGroups() = %d, want 1", n)
	}
	recs := repo.GroupRecommendations()
	if recs[0].GroupID != 10 {
		t.Errorf("GroupID = %d, want 10", recs[0].GroupID)
	}
	if recs[0].CompatibilityScore < 0.99 {
		t.Errorf("CompatibilityScore = %f, want ~1", recs[0].CompatibilityScore)
	}
	if recs[0].Explanation != "2 members of this group share your taste" {
		t.Errorf("Explanation = %q", recs[0].Explanation)
	}

	n, err = e.GenerateGroups(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second GenerateGroups() = %d, want 0 while the recommendation is active", n)
	}
}

func TestTransitions_Ownership(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	repo.AddUser(2)
	seedContent(t, repo, "live", 1, recommendtest.Now.Add(time.Hour))
	seedContent(t, repo, "old", 1, recommendtest.Now)
	e := newTestEngine(t, repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		recID  string
		want   error
	}{
		{"owner", 1, "live", nil},
		{"other user", 2, "live", recommend.ErrForbidden},
		{"unknown", 1, "missing", recommend.ErrNotFound},
		{"expired", 1, "old", recommend.ErrNotFound},
	}
	for _, tt := range tests {
		_, err := e.MarkViewed(ctx, tt.userID, tt.recID)
		if tt.want == nil && err != nil {
			t.Errorf("%s: MarkViewed() error = %v", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s: MarkViewed() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	rec, err := repo.FindContentRecommendationByID(ctx, "live")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Viewed {
		t.Error("Viewed was not persisted")
	}
}

func TestMarkAddedToLibrary(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedContent(t, repo, "r1", 1, recommendtest.Now.Add(time.Hour))
	e := newTestEngine(t, repo)

	rec, err := e.MarkAddedToLibrary(context.Background(), 1, "r1")
	if err != nil {
		t.Fatalf("MarkAddedToLibrary() error = %v", err)
	}
	if !rec.AddedToLibrary || rec.Dismissed {
		t.Errorf("rec = %+v", rec)
	}
}

func TestDismiss_RecordsFeedbackOnce(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedContent(t, repo, "r1", 1, recommendtest.Now.Add(time.Hour))
	e := newTestEngine(t, repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := e.Dismiss(ctx, 1, "r1")
		if err != nil {
			t.Fatalf("Dismiss() #%d error = %v", i+1, err)
		}
		if !rec.Dismissed {
			t.Errorf("Dismiss() #%d returned an undismissed record", i+1)
		}
	}

	fb := repo.Feedback()
	if len(fb) != 1 {
		t.Fatalf("feedback entries = %d, want 1", len(fb))
	}
	if fb[0].Polarity != models.FeedbackNegative || fb[0].Rating != 0 || fb[0].TargetType != models.FeedbackTargetContent {
		t.Errorf("feedback = %+v", fb[0])
	}

	p, err := repo.FindProfileByUser(ctx, 1)
	if err != nil {
		t.Fatalf("profile was not recomputed: %v", err)
	}
	if !p.LastCalculatedAt.Equal(recommendtest.Now) {
		t.Errorf("LastCalculatedAt = %v, want %v", p.LastCalculatedAt, recommendtest.Now)
	}

	active, err := e.ActiveRecommendations(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("dismissed recommendation is still active: %+v", active)
	}
}

func TestDismiss_FeedbackFailureKeepsDismissal(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedContent(t, repo, "r1", 1, recommendtest.Now.Add(time.Hour))
	seedGroupRec(t, repo, "g1", 1, recommendtest.Now.Add(time.Hour))
	repo.SaveFeedbackErr = errors.New("feedback table locked")
	e := newTestEngine(t, repo)
	ctx := context.Background()

	rec, err := e.Dismiss(ctx, 1, "r1")
	if err != nil || rec == nil || !rec.Dismissed {
		t.Fatalf("Dismiss() = %+v, %v; want the dismissed record and no error", rec, err)
	}
	stored, err := repo.FindContentRecommendationByID(ctx, "r1")
	if err != nil || !stored.Dismissed {
		t.Errorf("stored dismissal = %+v, %v", stored, err)
	}

	grp, err := e.DismissGroup(ctx, 1, "g1")
	if err != nil || grp == nil || !grp.Dismissed {
		t.Fatalf("DismissGroup() = %+v, %v; want the dismissed record and no error", grp, err)
	}
	if len(repo.Feedback()) != 0 {
		t.Errorf("feedback = %+v, want none saved", repo.Feedback())
	}
}

func TestGenerate_SkipsDismissedUntilExpiry(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	ctx := context.Background()
	repo.AddUser(1)
	seedCatalog(repo, 1)
	e := newTestEngine(t, repo)

	if n, err := e.GenerateContent(ctx, 1); err != nil || n != 1 {
		t.Fatalf("GenerateContent() = %d, %v; want 1", n, err)
	}
	first := repo.ContentRecommendations()[0]
	if _, err := e.Dismiss(ctx, 1, first.ID); err != nil {
		t.Fatal(err)
	}
	if n, err := e.GenerateContent(ctx, 1); err != nil || n != 0 {
		t.Errorf("GenerateContent() after dismissal = %d, %v; want 0", n, err)
	}

	taste := map[string]float64{"Action": 1}
	for _, id := range []int64{2, 3} {
		repo.AddUser(id)
		p := recommendtest.Profile(id, models.PersonalityCritic, 0.8, 20, taste)
		if err := repo.SaveProfile(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	p := recommendtest.Profile(1, models.PersonalityCritic, 0.8, 20, taste)
	if err := repo.SaveProfile(ctx, &p); err != nil {
		t.Fatal(err)
	}
	repo.AddGroup(models.Group{ID: 20, Name: "Action fans", Public: true}, 2, 3)

	if n, err := e.GenerateGroups(ctx, 1); err != nil || n != 1 {
		t.Fatalf("GenerateGroups() = %d, %v; want 1", n, err)
	}
	grp := repo.GroupRecommendations()[0]
	if _, err := e.DismissGroup(ctx, 1, grp.ID); err != nil {
		t.Fatal(err)
	}
	if n, err := e.GenerateGroups(ctx, 1); err != nil || n != 0 {
		t.Errorf("GenerateGroups() after dismissal = %d, %v; want 0", n, err)
	}
}

func TestGroupTransitions(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	seedGroupRec(t, repo, "g1", 1, recommendtest.Now.Add(time.Hour))
	seedGroupRec(t, repo, "g2", 1, recommendtest.Now.Add(time.Hour))
	e := newTestEngine(t, repo)
	ctx := context.Background()

	if _, err := e.MarkGroupViewed(ctx, 1, "g1"); err != nil {
		t.Fatal(err)
	}
	rec, err := e.MarkJoined(ctx, 1, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Viewed || !rec.Joined {
		t.Errorf("g1 = %+v", rec)
	}

	if _, err := e.DismissGroup(ctx, 1, "g2"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.DismissGroup(ctx, 2, "g1"); !errors.Is(err, recommend.ErrForbidden) {
		t.Errorf("DismissGroup() by another user error = %v, want ErrForbidden", err)
	}

	active, err := e.ActiveGroupRecommendations(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != "g1" {
		t.Errorf("active = %+v, want only g1", active)
	}
	if fb := repo.Feedback(); len(fb) != 1 || fb[0].TargetType != models.FeedbackTargetGroup {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  models.FeedbackTarget
		recID   string
		rating  int
		comment string
		want    models.FeedbackPolarity
		wantErr error
	}{
		{"positive", models.FeedbackTargetContent, "r1", 4, "  loved it ", models.FeedbackPositive, nil},
		{"top", models.FeedbackTargetContent, "r1", 5, "", models.FeedbackPositive, nil},
		{"negative", models.FeedbackTargetContent, "r1", 3, "", models.FeedbackNegative, nil},
		{"group", models.FeedbackTargetGroup, "g1", 1, "", models.FeedbackNegative, nil},
		{"rating zero", models.FeedbackTargetContent, "r1", 0, "", "", recommend.ErrInvalidInput},
		{"rating six", models.FeedbackTargetContent, "r1", 6, "", "", recommend.ErrInvalidInput},
		{"bad target", "PLAYLIST", "r1", 3, "", "", recommend.ErrInvalidInput},
		{"long comment", models.FeedbackTargetContent, "r1", 3, strings.Repeat("x", maxCommentLength+1), "", recommend.ErrInvalidInput},
		{"unknown rec", models.FeedbackTargetContent, "nope", 3, "", "", recommend.ErrNotFound},
		{"wrong kind", models.FeedbackTargetGroup, "r1", 3, "", "", recommend.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := recommendtest.New()
			repo.AddUser(1)
			seedContent(t, repo, "r1", 1, recommendtest.Now.Add(time.Hour))
			seedGroupRec(t, repo, "g1", 1, recommendtest.Now.Add(time.Hour))
			e := newTestEngine(t, repo)

			fb, err := e.SubmitFeedback(context.Background(), 1, tt.target, tt.recID, tt.rating, tt.comment)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SubmitFeedback() error = %v, want %v", err, tt.wantErr)
				}
				if len(repo.Feedback()) != 0 {
					t.Error("rejected feedback was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("SubmitFeedback() error = %v", err)
			}
			if fb.Polarity != tt.want || fb.Rating != tt.rating {
				t.Errorf("feedback = %+v", fb)
			}
			if fb.Comment != strings.TrimSpace(tt.comment) {
				t.Errorf("Comment = %q", fb.Comment)
			}
			if len(repo.Feedback()) != 1 {
				t.Errorf("feedback entries = %d, want 1", len(repo.Feedback()))
			}
		})
	}
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	repo := recommendtest.New()
	repo.AddUser(1)
	repo.AddUser(2)
	seedContent(t, repo, "a", 1, recommendtest.Now)
	seedContent(t, repo, "b", 1, recommendtest.Now.Add(time.Hour))
	seedGroupRec(t, repo, "c", 1, recommendtest.Now.Add(-time.Minute))
	seedContent(t, repo, "d", 2, recommendtest.Now.Add(-time.Hour))
	e := newTestEngine(t, repo)
	ctx := context.Background()

	n, err := e.DeleteExpiredForUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DeleteExpiredForUser() = %d, want 2", n)
	}

	n, err = e.CleanupExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}
	if left := repo.ContentRecommendations(); len(left) != 1 || left[0].ID != "b" {
		t.Errorf("remaining = %+v, want only b", left)
	}
}
