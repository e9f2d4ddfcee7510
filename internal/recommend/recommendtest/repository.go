// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommendtest provides an in-memory recommend.Repository for tests.
package recommendtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// Repository is a map-backed implementation of recommend.Repository.
// Seeding helpers are safe to call concurrently with the query methods.
type Repository struct {
	*storage.MemoryProfileRepository

	mu           sync.RWMutex
	users        map[int64]models.User
	media        map[int64]models.Media
	interactions map[int64][]models.InteractionRecord
	groups       map[int64]models.Group
	members      map[int64][]int64
	content      map[string]models.ContentRecommendation
	groupRecs    map[string]models.GroupRecommendation
	feedback     []models.RecommendationFeedback
	nextID       int64

	// InteractionsErr, when set, is consulted by FindInteractionsByUser and
	// CountInteractionsByUser. A non-nil return becomes the call's error.
	InteractionsErr func(userID int64) error

	// InteractionsPanic, when set, makes FindInteractionsByUser panic for the
	// users it returns true for.
	InteractionsPanic func(userID int64) bool

	// SaveFeedbackErr, when set, is returned by SaveFeedback.
	SaveFeedbackErr error
}

var _ recommend.Repository = (*Repository)(nil)

// New returns an empty repository.
func New() *Repository {
	return &Repository{
		MemoryProfileRepository: storage.NewMemoryProfileRepository(),
		users:                   make(map[int64]models.User),
		media:                   make(map[int64]models.Media),
		interactions:            make(map[int64][]models.InteractionRecord),
		groups:                  make(map[int64]models.Group),
		members:                 make(map[int64][]int64),
		content:                 make(map[string]models.ContentRecommendation),
		groupRecs:               make(map[string]models.GroupRecommendation),
	}
}

// AddUser seeds an active user named user{id}.
func (r *Repository) AddUser(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = models.User{ID: id, Username: fmt.Sprintf("user%d", id), Active: true}
}

// SetUserActive toggles a seeded user's active flag.
func (r *Repository) SetUserActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Active = active
	r.users[id] = u
}

// AddMedia seeds catalog items.
func (r *Repository) AddMedia(items ...models.Media) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range items {
		r.media[m.ID] = m
	}
}

// AddInteraction seeds one interaction and returns it with its assigned id.
func (r *Repository) AddInteraction(rec models.InteractionRecord) models.InteractionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	r.interactions[rec.UserID] = append(r.interactions[rec.UserID], rec)
	return rec
}

// AddGroup seeds a group with the given member ids.
func (r *Repository) AddGroup(g models.Group, memberIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.MemberCount = len(memberIDs)
	r.groups[g.ID] = g
	r.members[g.ID] = append([]int64(nil), memberIDs...)
}

// ContentRecommendations returns every stored content recommendation ordered by id.
func (r *Repository) ContentRecommendations() []models.ContentRecommendation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ContentRecommendation, 0, len(r.content))
	for _, rec := range r.content {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GroupRecommendations returns every stored group recommendation ordered by id.
func (r *Repository) GroupRecommendations() []models.GroupRecommendation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.GroupRecommendation, 0, len(r.groupRecs))
	for _, rec := range r.groupRecs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Feedback returns every stored feedback entry in insertion order.
func (r *Repository) Feedback() []models.RecommendationFeedback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.RecommendationFeedback(nil), r.feedback...)
}

// FindInteractionsByUser implements recommend.InteractionReader.
func (r *Repository) FindInteractionsByUser(_ context.Context, userID int64) ([]models.InteractionRecord, error) {
	if r.InteractionsPanic != nil && r.InteractionsPanic(userID) {
		panic(fmt.Sprintf("injected panic for user %d", userID))
	}
	if r.InteractionsErr != nil {
		if err := r.InteractionsErr(userID); err != nil {
			return nil, err
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.InteractionRecord(nil), r.interactions[userID]...), nil
}

// CountInteractionsByUser implements recommend.InteractionReader.
func (r *Repository) CountInteractionsByUser(_ context.Context, userID int64) (int, error) {
	if r.InteractionsErr != nil {
		if err := r.InteractionsErr(userID); err != nil {
			return 0, err
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.interactions[userID]), nil
}

// FindUsersWithMinInteractions implements recommend.InteractionReader.
func (r *Repository) FindUsersWithMinInteractions(_ context.Context, min int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for id, recs := range r.interactions {
		if len(recs) >= min {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

// FindUsersActiveSince implements recommend.InteractionReader.
func (r *Repository) FindUsersActiveSince(_ context.Context, since time.Time, min int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for id, recs := range r.interactions {
		if len(recs) < min {
			continue
		}
		for _, rec := range recs {
			if !rec.UpdatedAt.Before(since) {
				ids = append(ids, id)
				break
			}
		}
	}
	sortIDs(ids)
	return ids, nil
}

// FindMediaByID implements recommend.MediaReader.
func (r *Repository) FindMediaByID(_ context.Context, id int64) (*models.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.media[id]
	if !ok {
		return nil, fmt.Errorf("media %d: %w", id, recommend.ErrNotFound)
	}
	return &m, nil
}

// FindMediaByGenre implements recommend.MediaReader.
func (r *Repository) FindMediaByGenre(_ context.Context, genre string) ([]models.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Media
	for _, m := range r.media {
		if m.HasGenre(genre) {
			out = append(out, m)
		}
	}
	sortMedia(out)
	return out, nil
}

// FindAllMedia implements recommend.MediaReader.
func (r *Repository) FindAllMedia(_ context.Context) ([]models.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Media, 0, len(r.media))
	for _, m := range r.media {
		out = append(out, m)
	}
	sortMedia(out)
	return out, nil
}

// FindTrendingMedia implements recommend.MediaReader.
func (r *Repository) FindTrendingMedia(_ context.Context, since time.Time, limit int) ([]models.TrendingMedia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int64]int)
	for _, rec := range r.content {
		if !rec.CreatedAt.Before(since) {
			counts[rec.MediaID]++
		}
	}

	out := make([]models.TrendingMedia, 0, len(counts))
	for id, c := range counts {
		if m, ok := r.media[id]; ok {
			out = append(out, models.TrendingMedia{Media: m, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Media.ID < out[j].Media.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindUserByID implements recommend.UserReader.
func (r *Repository) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, recommend.ErrNotFound)
	}
	return &u, nil
}

// FindUsernames implements recommend.UserReader.
func (r *Repository) FindUsernames(_ context.Context, ids []int64) (map[int64]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

// FindGroupByID implements recommend.GroupReader.
func (r *Repository) FindGroupByID(_ context.Context, id int64) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %d: %w", id, recommend.ErrNotFound)
	}
	return &g, nil
}

// FindGroupMembers implements recommend.GroupReader.
func (r *Repository) FindGroupMembers(_ context.Context, groupID int64) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.groups[groupID]; !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, recommend.ErrNotFound)
	}
	out := make([]models.User, 0, len(r.members[groupID]))
	for _, id := range r.members[groupID] {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// FindPublicGroupsExcludingMember implements recommend.GroupReader.
func (r *Repository) FindPublicGroupsExcludingMember(_ context.Context, userID int64) ([]models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Group
	for id, g := range r.groups {
		if !g.Public || containsID(r.members[id], userID) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveContentRecommendation implements recommend.RecommendationRepository.
func (r *Repository) SaveContentRecommendation(_ context.Context, rec *models.ContentRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content[rec.ID] = *rec
	return nil
}

// SaveGroupRecommendation implements recommend.RecommendationRepository.
func (r *Repository) SaveGroupRecommendation(_ context.Context, rec *models.GroupRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupRecs[rec.ID] = *rec
	return nil
}

// FindContentRecommendationByID implements recommend.RecommendationRepository.
func (r *Repository) FindContentRecommendationByID(_ context.Context, id string) (*models.ContentRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.content[id]
	if !ok {
		return nil, fmt.Errorf("content recommendation %s: %w", id, recommend.ErrNotFound)
	}
	return &rec, nil
}

// FindGroupRecommendationByID implements recommend.RecommendationRepository.
func (r *Repository) FindGroupRecommendationByID(_ context.Context, id string) (*models.GroupRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.groupRecs[id]
	if !ok {
		return nil, fmt.Errorf("group recommendation %s: %w", id, recommend.ErrNotFound)
	}
	return &rec, nil
}

// DeleteExpiredContent implements recommend.RecommendationRepository.
func (r *Repository) DeleteExpiredContent(_ context.Context, userID int64, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, rec := range r.content {
		if rec.UserID == userID && rec.IsExpired(now) {
			delete(r.content, id)
			n++
		}
	}
	return n, nil
}

// DeleteExpiredGroup implements recommend.RecommendationRepository.
func (r *Repository) DeleteExpiredGroup(_ context.Context, userID int64, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, rec := range r.groupRecs {
		if rec.UserID == userID && rec.IsExpired(now) {
			delete(r.groupRecs, id)
			n++
		}
	}
	return n, nil
}

// DeleteAllExpired implements recommend.RecommendationRepository.
func (r *Repository) DeleteAllExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, rec := range r.content {
		if rec.IsExpired(now) {
			delete(r.content, id)
			n++
		}
	}
	for id, rec := range r.groupRecs {
		if rec.IsExpired(now) {
			delete(r.groupRecs, id)
			n++
		}
	}
	return n, nil
}

// FindActiveContentRecommendations implements recommend.RecommendationRepository.
func (r *Repository) FindActiveContentRecommendations(_ context.Context, userID int64, now time.Time, limit int) ([]models.ContentRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.ContentRecommendation
	for _, rec := range r.content {
		if rec.UserID == userID && !rec.Dismissed && !rec.IsExpired(now) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindActiveGroupRecommendations implements recommend.RecommendationRepository.
func (r *Repository) FindActiveGroupRecommendations(_ context.Context, userID int64, now time.Time, limit int) ([]models.GroupRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.GroupRecommendation
	for _, rec := range r.groupRecs {
		if rec.UserID == userID && !rec.Dismissed && !rec.IsExpired(now) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompatibilityScore != out[j].CompatibilityScore {
			return out[i].CompatibilityScore > out[j].CompatibilityScore
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindRecommendedMediaIDs implements recommend.RecommendationRepository.
func (r *Repository) FindRecommendedMediaIDs(_ context.Context, userID int64, now time.Time) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []int64{}
	for _, rec := range r.content {
		if rec.UserID == userID && !rec.IsExpired(now) && !containsID(out, rec.MediaID) {
			out = append(out, rec.MediaID)
		}
	}
	sortIDs(out)
	return out, nil
}

// FindRecommendedGroupIDs implements recommend.RecommendationRepository.
func (r *Repository) FindRecommendedGroupIDs(_ context.Context, userID int64, now time.Time) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []int64{}
	for _, rec := range r.groupRecs {
		if rec.UserID == userID && !rec.IsExpired(now) && !containsID(out, rec.GroupID) {
			out = append(out, rec.GroupID)
		}
	}
	sortIDs(out)
	return out, nil
}

// FindContentRecommendationsBetween implements recommend.RecommendationRepository.
func (r *Repository) FindContentRecommendationsBetween(_ context.Context, since, until time.Time) ([]models.ContentRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.ContentRecommendation
	for _, rec := range r.content {
		if inWindow(rec.CreatedAt, since, until) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindGroupRecommendationsBetween implements recommend.RecommendationRepository.
func (r *Repository) FindGroupRecommendationsBetween(_ context.Context, since, until time.Time) ([]models.GroupRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.GroupRecommendation
	for _, rec := range r.groupRecs {
		if inWindow(rec.CreatedAt, since, until) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveFeedback implements recommend.FeedbackRepository.
func (r *Repository) SaveFeedback(_ context.Context, fb *models.RecommendationFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveFeedbackErr != nil {
		return r.SaveFeedbackErr
	}
	r.feedback = append(r.feedback, *fb)
	return nil
}

// FindFeedbackBetween implements recommend.FeedbackRepository.
func (r *Repository) FindFeedbackBetween(_ context.Context, since, until time.Time) ([]models.RecommendationFeedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.RecommendationFeedback
	for _, fb := range r.feedback {
		if inWindow(fb.CreatedAt, since, until) {
			out = append(out, fb)
		}
	}
	return out, nil
}

func inWindow(t, since, until time.Time) bool {
	return !t.Before(since) && t.Before(until)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortMedia(m []models.Media) {
	sort.Slice(m, func(i, j int) bool { return m[i].ID < m[j].ID })
}
