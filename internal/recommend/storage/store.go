// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ProfileStore is the data access boundary for preference profiles.
type ProfileStore struct {
	repo   recommend.ProfileRepository
	users  recommend.UserReader
	clock  recommend.Clock
	locks  *keyedMutex
	logger zerolog.Logger
}

// NewProfileStore creates a profile store over repo. users is consulted before
// creating a profile for an id that has none yet.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileStore(repo recommend.ProfileRepository, users recommend.UserReader, clock recommend.Clock, logger zerolog.Logger) *ProfileStore {
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	return &ProfileStore{
		repo:   repo,
		users:  users,
		clock:  clock,
		locks:  newKeyedMutex(),
		logger: logger.With().Str("component", "profile_store").Logger(),
	}
}

// Load returns the stored profile. It fails with recommend.ErrNotFound when
// the user has no profile.
func (s *ProfileStore) Load(ctx context.Context, userID int64) (*models.PreferenceProfile, error) {
	p, err := s.repo.FindProfileByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile for user %d: %w", userID, err)
	}
	return p, nil
}

// GetOrCreate returns the user's profile, creating and persisting an empty
// CASUAL profile on first access. Concurrent first accesses for the same user
// create exactly one profile.
func (s *ProfileStore) GetOrCreate(ctx context.Context, userID int64) (*models.PreferenceProfile, error) {
	if p, err := s.repo.FindProfileByUser(ctx, userID); err == nil {
		return p, nil
	} else if !errors.Is(err, recommend.ErrNotFound) {
		return nil, fmt.Errorf("find profile for user %d: %w", userID, err)
	}

	release := s.locks.lock(userID)
	defer release()

	return s.getOrCreateLocked(ctx, userID)
}

// getOrCreateLocked must be called with the user's lock held.
func (s *ProfileStore) getOrCreateLocked(ctx context.Context, userID int64) (*models.PreferenceProfile, error) {
	p, err := s.repo.FindProfileByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, recommend.ErrNotFound) {
		return nil, fmt.Errorf("find profile for user %d: %w", userID, err)
	}

	if s.users != nil {
		if _, err := s.users.FindUserByID(ctx, userID); err != nil {
			return nil, fmt.Errorf("create profile for user %d: %w", userID, err)
		}
	}

	p = models.NewPreferenceProfile(userID, s.clock.Now())
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save new profile for user %d: %w", userID, err)
	}

	s.logger.Debug().Int64("user_id", userID).Msg("created preference profile")
	return p, nil
}

// Save persists the full profile under the user's lock.
func (s *ProfileStore) Save(ctx context.Context, profile *models.PreferenceProfile) error {
	if profile == nil {
		return fmt.Errorf("save profile: %w", recommend.ErrInvalidInput)
	}
	release := s.locks.lock(profile.UserID)
	defer release()

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile for user %d: %w", profile.UserID, err)
	}
	return nil
}

// Update performs a read-modify-write of the user's profile under the user's
// lock. fn receives the current (or newly created) profile and mutates it in
// place. The profile is persisted only when fn returns nil.
func (s *ProfileStore) Update(ctx context.Context, userID int64, fn func(*models.PreferenceProfile) error) (*models.PreferenceProfile, error) {
	release := s.locks.lock(userID)
	defer release()

	p, err := s.getOrCreateLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.UserID = userID

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile for user %d: %w", userID, err)
	}
	return p, nil
}

// FindCandidateProfiles forwards to the repository.
func (s *ProfileStore) FindCandidateProfiles(ctx context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error) {
	profiles, err := s.repo.FindCandidateProfiles(ctx, excludeUserID, minConfidence, minInteractions)
	if err != nil {
		return nil, fmt.Errorf("find candidate profiles: %w", err)
	}
	return profiles, nil
}
