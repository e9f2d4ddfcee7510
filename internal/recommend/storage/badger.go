// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Key prefix for profile values.
const profileKeyPrefix = "profile:"

// BadgerProfileRepository implements recommend.ProfileRepository on BadgerDB.
// The caller owns the database handle.
type BadgerProfileRepository struct {
	db *badger.DB
}

// NewBadgerProfileRepository creates a repository over an open database.
func NewBadgerProfileRepository(db *badger.DB) *BadgerProfileRepository {
	return &BadgerProfileRepository{db: db}
}

// OpenBadger opens a BadgerDB at path. An empty path opens an in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for profiles: %w", err)
	}
	return db, nil
}

func profileKey(userID int64) []byte {
	return []byte(profileKeyPrefix + strconv.FormatInt(userID, 10))
}

// FindProfileByUser implements recommend.ProfileRepository.
func (r *BadgerProfileRepository) FindProfileByUser(_ context.Context, userID int64) (*models.PreferenceProfile, error) {
	var profile models.PreferenceProfile

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("profile for user %d: %w", userID, recommend.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}

	ensureMaps(&profile)
	return &profile, nil
}

// SaveProfile implements recommend.ProfileRepository.
func (r *BadgerProfileRepository) SaveProfile(_ context.Context, profile *models.PreferenceProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(profileKey(profile.UserID), data); err != nil {
			return fmt.Errorf("set profile: %w", err)
		}
		return nil
	})
}

// FindCandidateProfiles implements recommend.ProfileRepository by scanning the
// profile prefix. Results are ordered by user id.
func (r *BadgerProfileRepository) FindCandidateProfiles(_ context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error) {
	var out []models.PreferenceProfile

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(profileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p models.PreferenceProfile
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode profile %s: %w", it.Item().Key(), err)
			}
			if p.UserID == excludeUserID || p.ConfidenceScore < minConfidence || p.TotalInteractions < minInteractions {
				continue
			}
			ensureMaps(&p)
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ensureMaps replaces nil preference maps decoded from JSON null.
func ensureMaps(p *models.PreferenceProfile) {
	if p.GenrePreferences == nil {
		p.GenrePreferences = map[string]float64{}
	}
	if p.PlatformPreferences == nil {
		p.PlatformPreferences = map[string]float64{}
	}
	if p.EraPreferences == nil {
		p.EraPreferences = map[string]float64{}
	}
}
