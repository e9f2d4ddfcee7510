// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/recommendtest"
)

// testDBSemaphore serializes tests holding a DuckDB connection.
// Concurrent CGO calls from many in-memory databases hang under CI pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestInteractions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, rec := range []models.InteractionRecord{
		recommendtest.Completed(1, 10, 8, 72*time.Hour),
		recommendtest.Completed(1, 11, 0, 48*time.Hour),
		recommendtest.Completed(1, 12, 6, 2*time.Hour),
		recommendtest.Completed(2, 10, 9, 30*24*time.Hour),
		recommendtest.Completed(2, 11, 7, 29*24*time.Hour),
		recommendtest.Completed(3, 10, 5, time.Hour),
	} {
		rec := rec
		if _, err := db.InsertInteraction(ctx, &rec); err != nil {
			t.Fatalf("InsertInteraction() error = %v", err)
		}
		if rec.ID == 0 {
			t.Fatal("InsertInteraction() did not assign an id")
		}
	}

	got, err := db.FindInteractionsByUser(ctx, 1)
	if err != nil {
		t.Fatalf("FindInteractionsByUser() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("FindInteractionsByUser() returned %d records, want 3", len(got))
	}
	if got[0].MediaID != 10 || got[0].Rating == nil || *got[0].Rating != 8 {
		t.Errorf("first interaction = %+v, want media 10 rated 8", got[0])
	}
	if got[1].Rating != nil {
		t.Errorf("unrated interaction has rating %d", *got[1].Rating)
	}
	if got[0].Status != models.StatusCompleted || got[0].CompletionPercentage != 100 {
		t.Errorf("status/completion = %s/%v", got[0].Status, got[0].CompletionPercentage)
	}
	if want := recommendtest.Now.Add(-72 * time.Hour); !got[0].UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", got[0].UpdatedAt, want)
	}

	empty, err := db.FindInteractionsByUser(ctx, 99)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("FindInteractionsByUser(unknown) = %v, %v; want empty slice", empty, err)
	}

	n, err := db.CountInteractionsByUser(ctx, 2)
	if err != nil || n != 2 {
		t.Errorf("CountInteractionsByUser(2) = %d, %v; want 2", n, err)
	}

	tests := []struct {
		name  string
		since time.Time
		min   int
		want  []int64
	}{
		{"min one", time.Time{}, 1, []int64{1, 2, 3}},
		{"min two", time.Time{}, 2, []int64{1, 2}},
		{"recent and min two", recommendtest.Now.Add(-24 * time.Hour), 2, []int64{1}},
		{"recent and min one", recommendtest.Now.Add(-24 * time.Hour), 1, []int64{1, 3}},
		{"none", time.Time{}, 10, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				ids []int64
				err error
			)
			if tt.since.IsZero() {
				ids, err = db.FindUsersWithMinInteractions(ctx, tt.min)
			} else {
				ids, err = db.FindUsersActiveSince(ctx, tt.since, tt.min)
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalIDs(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestInsertInteraction_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bad := recommendtest.Completed(1, 1, 0, time.Hour)
	bad.Status = "REWATCHING"
	if _, err := db.InsertInteraction(ctx, &bad); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("invalid status error = %v, want ErrInvalidInput", err)
	}

	rated := recommendtest.Completed(1, 1, 11, time.Hour)
	if _, err := db.InsertInteraction(ctx, &rated); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("out of range rating error = %v, want ErrInvalidInput", err)
	}
}

func TestMediaCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	heat := recommendtest.Movie(1, "Heat", 1995, 8.3, "Crime", "Drama")
	alien := recommendtest.Movie(2, "Alien", 1979, 8.5, "Horror", "Sci-Fi")
	arrival := recommendtest.Movie(3, "Arrival", 2016, 7.9, "Sci-Fi", "Drama")
	if err := db.UpsertMedia(ctx, heat, alien, arrival); err != nil {
		t.Fatalf("UpsertMedia() error = %v", err)
	}

	got, err := db.FindMediaByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindMediaByID() error = %v", err)
	}
	if got.Title != "Heat" || len(got.Genres) != 2 || got.Genres[0] != "Crime" || got.Platforms[0] != "Netflix" {
		t.Errorf("FindMediaByID() = %+v", got)
	}
	if got.ReleaseYear != 1995 || got.AverageRating != 8.3 || got.Type != models.MediaTypeMovie {
		t.Errorf("FindMediaByID() scalar fields = %+v", got)
	}

	if _, err := db.FindMediaByID(ctx, 42); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindMediaByID(missing) error = %v, want ErrNotFound", err)
	}

	drama, err := db.FindMediaByGenre(ctx, "Drama")
	if err != nil {
		t.Fatalf("FindMediaByGenre() error = %v", err)
	}
	if len(drama) != 2 || drama[0].ID != 1 || drama[1].ID != 3 {
		t.Errorf("FindMediaByGenre(Drama) = %v, want ids [1 3]", mediaIDs(drama))
	}

	// Re-upserting replaces the genre index.
	heat.Genres = []string{"Crime", "Thriller"}
	if err := db.UpsertMedia(ctx, heat); err != nil {
		t.Fatalf("UpsertMedia(update) error = %v", err)
	}
	drama, err = db.FindMediaByGenre(ctx, "Drama")
	if err != nil {
		t.Fatalf("FindMediaByGenre() error = %v", err)
	}
	if len(drama) != 1 || drama[0].ID != 3 {
		t.Errorf("after update FindMediaByGenre(Drama) = %v, want [3]", mediaIDs(drama))
	}

	all, err := db.FindAllMedia(ctx)
	if err != nil {
		t.Fatalf("FindAllMedia() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("FindAllMedia() returned %d items, want 3", len(all))
	}
}

func TestFindTrendingMedia(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertMedia(ctx,
		recommendtest.Movie(1, "A", 2020, 7, "Drama"),
		recommendtest.Movie(2, "B", 2020, 7, "Drama"),
		recommendtest.Movie(3, "C", 2020, 7, "Drama"),
	); err != nil {
		t.Fatalf("UpsertMedia() error = %v", err)
	}

	saves := []struct {
		id      string
		mediaID int64
		age     time.Duration
	}{
		{"r1", 2, time.Hour},
		{"r2", 2, 2 * time.Hour},
		{"r3", 3, time.Hour},
		{"r4", 1, 10 * 24 * time.Hour},
		{"r5", 1, 9 * 24 * time.Hour},
		{"r6", 1, 8 * 24 * time.Hour},
	}
	for i, s := range saves {
		rec := contentRec(s.id, int64(i+1), s.mediaID, 0.5, recommendtest.Now.Add(-s.age))
		if err := db.SaveContentRecommendation(ctx, &rec); err != nil {
			t.Fatalf("SaveContentRecommendation() error = %v", err)
		}
	}

	trending, err := db.FindTrendingMedia(ctx, recommendtest.Now.Add(-7*24*time.Hour), 0)
	if err != nil {
		t.Fatalf("FindTrendingMedia() error = %v", err)
	}
	if len(trending) != 2 {
		t.Fatalf("FindTrendingMedia() returned %d items, want 2", len(trending))
	}
	if trending[0].Media.ID != 2 || trending[0].Count != 2 || trending[1].Media.ID != 3 || trending[1].Count != 1 {
		t.Errorf("FindTrendingMedia() = %+v", trending)
	}

	limited, err := db.FindTrendingMedia(ctx, time.Time{}, 1)
	if err != nil {
		t.Fatalf("FindTrendingMedia(limit) error = %v", err)
	}
	if len(limited) != 1 || limited[0].Media.ID != 1 {
		t.Errorf("FindTrendingMedia(all time, 1) = %+v, want media 1", limited)
	}
}

func TestProfiles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.FindProfileByUser(ctx, 1); !errors.Is(err, recommend.ErrNotFound) {
		t.Fatalf("FindProfileByUser(missing) error = %v, want ErrNotFound", err)
	}

	for _, p := range []models.PreferenceProfile{
		recommendtest.Profile(1, models.PersonalityExplorer, 0.8, 20, map[string]float64{"Drama": 1, "Horror": 0.4}),
		recommendtest.Profile(2, models.PersonalityCasual, 0.2, 20, map[string]float64{"Drama": 1}),
		recommendtest.Profile(3, models.PersonalityCritic, 0.9, 3, map[string]float64{"Comedy": 1}),
		recommendtest.Profile(4, models.PersonalityBingeWatcher, 0.5, 8, map[string]float64{"Anime": 1}),
	} {
		p := p
		if err := db.SaveProfile(ctx, &p); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}
	}

	got, err := db.FindProfileByUser(ctx, 1)
	if err != nil {
		t.Fatalf("FindProfileByUser() error = %v", err)
	}
	if got.ViewingPersonality != models.PersonalityExplorer || got.GenrePreferences["Horror"] != 0.4 {
		t.Errorf("FindProfileByUser() = %+v", got)
	}
	if !got.LastCalculatedAt.Equal(recommendtest.Now) {
		t.Errorf("LastCalculatedAt = %v, want %v", got.LastCalculatedAt, recommendtest.Now)
	}

	got.ConfidenceScore = 0.1
	if err := db.SaveProfile(ctx, got); err != nil {
		t.Fatalf("SaveProfile(replace) error = %v", err)
	}

	candidates, err := db.FindCandidateProfiles(ctx, 4, 0.3, 5)
	if err != nil {
		t.Fatalf("FindCandidateProfiles() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("FindCandidateProfiles() = %d profiles, want 0 after lowering user 1 confidence", len(candidates))
	}

	candidates, err = db.FindCandidateProfiles(ctx, 1, 0.3, 5)
	if err != nil {
		t.Fatalf("FindCandidateProfiles() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].UserID != 4 {
		t.Errorf("FindCandidateProfiles(exclude 1) = %v, want only user 4", candidates)
	}
}

func TestUsersAndGroups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, u := range []models.User{
		{ID: 1, Username: "ana", Active: true, LastSeenAt: recommendtest.Now},
		{ID: 2, Username: "ben", Active: true},
		{ID: 3, Username: "cy", Active: false},
	} {
		u := u
		if err := db.UpsertUser(ctx, &u); err != nil {
			t.Fatalf("UpsertUser() error = %v", err)
		}
	}

	u, err := db.FindUserByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindUserByID() error = %v", err)
	}
	if u.Username != "ana" || !u.Active || !u.LastSeenAt.Equal(recommendtest.Now) {
		t.Errorf("FindUserByID() = %+v", u)
	}
	if _, err := db.FindUserByID(ctx, 9); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindUserByID(missing) error = %v, want ErrNotFound", err)
	}

	names, err := db.FindUsernames(ctx, []int64{1, 3, 9})
	if err != nil {
		t.Fatalf("FindUsernames() error = %v", err)
	}
	if len(names) != 2 || names[1] != "ana" || names[3] != "cy" {
		t.Errorf("FindUsernames() = %v", names)
	}
	if names, err := db.FindUsernames(ctx, nil); err != nil || len(names) != 0 {
		t.Errorf("FindUsernames(nil) = %v, %v", names, err)
	}

	if err := db.UpsertGroup(ctx, &models.Group{ID: 10, Name: "Noir", Public: true}, 2, 3, 2); err != nil {
		t.Fatalf("UpsertGroup() error = %v", err)
	}
	if err := db.UpsertGroup(ctx, &models.Group{ID: 11, Name: "Private", Public: false}, 2); err != nil {
		t.Fatalf("UpsertGroup() error = %v", err)
	}
	if err := db.UpsertGroup(ctx, &models.Group{ID: 12, Name: "Mine", Public: true}, 1); err != nil {
		t.Fatalf("UpsertGroup() error = %v", err)
	}

	g, err := db.FindGroupByID(ctx, 10)
	if err != nil {
		t.Fatalf("FindGroupByID() error = %v", err)
	}
	if g.Name != "Noir" || g.MemberCount != 2 || !g.Public {
		t.Errorf("FindGroupByID() = %+v", g)
	}

	members, err := db.FindGroupMembers(ctx, 10)
	if err != nil {
		t.Fatalf("FindGroupMembers() error = %v", err)
	}
	if len(members) != 2 || members[0].ID != 2 || members[1].Active {
		t.Errorf("FindGroupMembers() = %+v", members)
	}
	if _, err := db.FindGroupMembers(ctx, 99); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindGroupMembers(missing) error = %v, want ErrNotFound", err)
	}

	public, err := db.FindPublicGroupsExcludingMember(ctx, 1)
	if err != nil {
		t.Fatalf("FindPublicGroupsExcludingMember() error = %v", err)
	}
	if len(public) != 1 || public[0].ID != 10 {
		t.Errorf("FindPublicGroupsExcludingMember(1) = %+v, want only group 10", public)
	}
}

func TestContentRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := recommendtest.Now

	recs := []models.ContentRecommendation{
		contentRec("a", 1, 10, 0.4, now.Add(-time.Hour)),
		contentRec("b", 1, 11, 0.9, now.Add(-time.Hour)),
		contentRec("c", 1, 12, 0.7, now.Add(-8*24*time.Hour)),
		contentRec("d", 1, 13, 0.8, now.Add(-time.Hour)),
		contentRec("e", 2, 10, 0.5, now.Add(-time.Hour)),
	}
	recs[3].Dismissed = true
	for i := range recs {
		if err := db.SaveContentRecommendation(ctx, &recs[i]); err != nil {
			t.Fatalf("SaveContentRecommendation() error = %v", err)
		}
	}

	got, err := db.FindContentRecommendationByID(ctx, "b")
	if err != nil {
		t.Fatalf("FindContentRecommendationByID() error = %v", err)
	}
	if got.MediaID != 11 || got.Type != models.RecommendationPersonal || got.Reason != models.ReasonGenreMatch {
		t.Errorf("FindContentRecommendationByID() = %+v", got)
	}
	if !got.ExpiresAt.Equal(recs[1].ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, recs[1].ExpiresAt)
	}
	if _, err := db.FindContentRecommendationByID(ctx, "zzz"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindContentRecommendationByID(missing) error = %v, want ErrNotFound", err)
	}

	got.Viewed = true
	if err := db.SaveContentRecommendation(ctx, got); err != nil {
		t.Fatalf("SaveContentRecommendation(update) error = %v", err)
	}
	if again, _ := db.FindContentRecommendationByID(ctx, "b"); again == nil || !again.Viewed {
		t.Errorf("updated recommendation not persisted: %+v", again)
	}

	active, err := db.FindActiveContentRecommendations(ctx, 1, now, 0)
	if err != nil {
		t.Fatalf("FindActiveContentRecommendations() error = %v", err)
	}
	if ids := recIDs(active); len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Errorf("FindActiveContentRecommendations() = %v, want [b a]", ids)
	}
	limited, err := db.FindActiveContentRecommendations(ctx, 1, now, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("FindActiveContentRecommendations(limit 1) = %v, %v", recIDs(limited), err)
	}

	media, err := db.FindRecommendedMediaIDs(ctx, 1, now)
	if err != nil || !slices.Equal(media, []int64{10, 11, 13}) {
		t.Errorf("FindRecommendedMediaIDs() = %v, %v; want [10 11 13] with the dismissed media", media, err)
	}

	between, err := db.FindContentRecommendationsBetween(ctx, now.Add(-2*time.Hour), now)
	if err != nil {
		t.Fatalf("FindContentRecommendationsBetween() error = %v", err)
	}
	if len(between) != 4 {
		t.Errorf("FindContentRecommendationsBetween() returned %d, want 4", len(between))
	}

	n, err := db.DeleteExpiredContent(ctx, 2, now)
	if err != nil || n != 0 {
		t.Errorf("DeleteExpiredContent(2) = %d, %v; want 0", n, err)
	}
	n, err = db.DeleteExpiredContent(ctx, 1, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredContent(1) = %d, %v; want 1", n, err)
	}
	if _, err := db.FindContentRecommendationByID(ctx, "c"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("expired recommendation still present: %v", err)
	}
}

func TestGroupRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := recommendtest.Now

	recs := []models.GroupRecommendation{
		groupRec("g1", 1, 10, 0.6, now.Add(-time.Hour)),
		groupRec("g2", 1, 11, 0.9, now.Add(-time.Hour)),
		groupRec("g3", 1, 12, 0.8, now.Add(-15*24*time.Hour)),
		groupRec("g4", 2, 10, 0.7, now.Add(-15*24*time.Hour)),
	}
	recs[0].Joined = true
	for i := range recs {
		if err := db.SaveGroupRecommendation(ctx, &recs[i]); err != nil {
			t.Fatalf("SaveGroupRecommendation() error = %v", err)
		}
	}

	got, err := db.FindGroupRecommendationByID(ctx, "g1")
	if err != nil {
		t.Fatalf("FindGroupRecommendationByID() error = %v", err)
	}
	if !got.Joined || got.GroupID != 10 || got.Reason != models.ReasonCompatibleMembers {
		t.Errorf("FindGroupRecommendationByID() = %+v", got)
	}
	if _, err := db.FindGroupRecommendationByID(ctx, "nope"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindGroupRecommendationByID(missing) error = %v, want ErrNotFound", err)
	}

	active, err := db.FindActiveGroupRecommendations(ctx, 1, now, 10)
	if err != nil {
		t.Fatalf("FindActiveGroupRecommendations() error = %v", err)
	}
	if len(active) != 2 || active[0].ID != "g2" || active[1].ID != "g1" {
		t.Errorf("FindActiveGroupRecommendations() = %+v", active)
	}

	groups, err := db.FindRecommendedGroupIDs(ctx, 1, now)
	if err != nil || !slices.Equal(groups, []int64{10, 11}) {
		t.Errorf("FindRecommendedGroupIDs() = %v, %v; want [10 11]", groups, err)
	}

	between, err := db.FindGroupRecommendationsBetween(ctx, now.Add(-30*24*time.Hour), now)
	if err != nil || len(between) != 4 {
		t.Errorf("FindGroupRecommendationsBetween() = %d, %v; want 4", len(between), err)
	}

	n, err := db.DeleteExpiredGroup(ctx, 1, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredGroup(1) = %d, %v; want 1", n, err)
	}
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := recommendtest.Now

	content := []models.ContentRecommendation{
		contentRec("a", 1, 10, 0.5, now.Add(-8*24*time.Hour)),
		contentRec("b", 2, 10, 0.5, now.Add(-8*24*time.Hour)),
		contentRec("c", 2, 11, 0.5, now),
	}
	for i := range content {
		if err := db.SaveContentRecommendation(ctx, &content[i]); err != nil {
			t.Fatalf("SaveContentRecommendation() error = %v", err)
		}
	}
	group := groupRec("g", 3, 10, 0.5, now.Add(-15*24*time.Hour))
	if err := db.SaveGroupRecommendation(ctx, &group); err != nil {
		t.Fatalf("SaveGroupRecommendation() error = %v", err)
	}

	n, err := db.DeleteAllExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteAllExpired() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteAllExpired() = %d, want 3", n)
	}
	if _, err := db.FindContentRecommendationByID(ctx, "c"); err != nil {
		t.Errorf("unexpired recommendation removed: %v", err)
	}
}

func TestFeedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := recommendtest.Now

	entries := []models.RecommendationFeedback{
		{ID: "f1", UserID: 1, TargetType: models.FeedbackTargetContent, TargetID: "a", Polarity: models.FeedbackPositive, Rating: 5, Comment: "great", CreatedAt: now.Add(-time.Hour)},
		{ID: "f2", UserID: 1, TargetType: models.FeedbackTargetGroup, TargetID: "g", Polarity: models.FeedbackNegative, CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "f3", UserID: 2, TargetType: models.FeedbackTargetContent, TargetID: "b", Polarity: models.FeedbackNegative, Rating: 2, CreatedAt: now.Add(-48 * time.Hour)},
	}
	for i := range entries {
		if err := db.SaveFeedback(ctx, &entries[i]); err != nil {
			t.Fatalf("SaveFeedback() error = %v", err)
		}
	}
	if err := db.SaveFeedback(ctx, &entries[0]); err == nil {
		t.Error("SaveFeedback(duplicate id) succeeded, feedback must be append-only")
	}

	got, err := db.FindFeedbackBetween(ctx, now.Add(-2*time.Hour), now)
	if err != nil {
		t.Fatalf("FindFeedbackBetween() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "f1" || got[1].ID != "f2" {
		t.Fatalf("FindFeedbackBetween() = %+v", got)
	}
	if got[0].Comment != "great" || got[0].Rating != 5 || got[1].TargetType != models.FeedbackTargetGroup {
		t.Errorf("FindFeedbackBetween() fields = %+v", got)
	}
}

func TestStoreErrorsWrapDataStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.conn.ExecContext(ctx, `DROP TABLE media_genres`); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	_, err := db.FindMediaByGenre(ctx, "Drama")
	if !errors.Is(err, recommend.ErrDataStore) {
		t.Errorf("FindMediaByGenre() error = %v, want ErrDataStore", err)
	}
	if errors.Is(err, recommend.ErrNotFound) {
		t.Error("data store error must not read as not found")
	}
}

func contentRec(id string, userID, mediaID int64, score float64, created time.Time) models.ContentRecommendation {
	return models.ContentRecommendation{
		ID:             id,
		UserID:         userID,
		MediaID:        mediaID,
		Type:           models.RecommendationPersonal,
		Reason:         models.ReasonGenreMatch,
		RelevanceScore: score,
		Explanation:    "Matches your taste in Drama",
		CreatedAt:      created,
		ExpiresAt:      created.Add(7 * 24 * time.Hour),
	}
}

func groupRec(id string, userID, groupID int64, score float64, created time.Time) models.GroupRecommendation {
	return models.GroupRecommendation{
		ID:                 id,
		UserID:             userID,
		GroupID:            groupID,
		CompatibilityScore: score,
		Reason:             models.ReasonCompatibleMembers,
		Explanation:        "2 members share your taste",
		CreatedAt:          created,
		ExpiresAt:          created.Add(14 * 24 * time.Hour),
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mediaIDs(items []models.Media) []int64 {
	ids := make([]int64, len(items))
	for i, m := range items {
		ids[i] = m.ID
	}
	return ids
}

func recIDs(recs []models.ContentRecommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}
