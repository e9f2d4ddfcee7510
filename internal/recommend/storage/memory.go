// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// MemoryProfileRepository is a map-backed recommend.ProfileRepository.
// Stored and returned profiles are deep copies.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[int64]*models.PreferenceProfile
	saves    int
}

// NewMemoryProfileRepository creates an empty repository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[int64]*models.PreferenceProfile)}
}

// FindProfileByUser implements recommend.ProfileRepository.
func (r *MemoryProfileRepository) FindProfileByUser(_ context.Context, userID int64) (*models.PreferenceProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %d: %w", userID, recommend.ErrNotFound)
	}
	return p.Clone(), nil
}

// SaveProfile implements recommend.ProfileRepository.
func (r *MemoryProfileRepository) SaveProfile(_ context.Context, profile *models.PreferenceProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.UserID] = profile.Clone()
	r.saves++
	return nil
}

// FindCandidateProfiles implements recommend.ProfileRepository. Results are
// ordered by user id.
func (r *MemoryProfileRepository) FindCandidateProfiles(_ context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.PreferenceProfile, 0, len(r.profiles))
	for id, p := range r.profiles {
		if id == excludeUserID || p.ConfidenceScore < minConfidence || p.TotalInteractions < minInteractions {
			continue
		}
		out = append(out, *p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Len returns the number of stored profiles.
func (r *MemoryProfileRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Saves returns how many SaveProfile calls succeeded.
func (r *MemoryProfileRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
