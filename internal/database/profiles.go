// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func decodeProfile(data string) (*models.PreferenceProfile, error) {
	var p models.PreferenceProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.GenrePreferences == nil {
		p.GenrePreferences = map[string]float64{}
	}
	if p.PlatformPreferences == nil {
		p.PlatformPreferences = map[string]float64{}
	}
	if p.EraPreferences == nil {
		p.EraPreferences = map[string]float64{}
	}
	return &p, nil
}

// FindProfileByUser implements recommend.ProfileRepository.
func (db *DB) FindProfileByUser(ctx context.Context, userID int64) (p *models.PreferenceProfile, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_profile", "preference_profiles", start, err) }()

	var data string
	err = db.conn.QueryRowContext(ctx, `SELECT data FROM preference_profiles WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for user %d: %w", userID, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find profile", err)
	}
	p, err = decodeProfile(data)
	if err != nil {
		return nil, storeErr("find profile", err)
	}
	return p, nil
}

// SaveProfile implements recommend.ProfileRepository.
func (db *DB) SaveProfile(ctx context.Context, profile *models.PreferenceProfile) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("save_profile", "preference_profiles", start, err) }()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile for user %d: %w", profile.UserID, err)
	}
	var lastCalculated any
	if !profile.LastCalculatedAt.IsZero() {
		lastCalculated = profile.LastCalculatedAt.UTC()
	}

	if _, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO preference_profiles
		 (user_id, confidence_score, total_interactions, viewing_personality, data, created_at, last_calculated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID, profile.ConfidenceScore, profile.TotalInteractions, string(profile.ViewingPersonality),
		string(data), profile.CreatedAt.UTC(), lastCalculated,
	); err != nil {
		return storeErr("save profile", err)
	}
	return nil
}

// FindCandidateProfiles implements recommend.ProfileRepository.
func (db *DB) FindCandidateProfiles(ctx context.Context, excludeUserID int64, minConfidence float64, minInteractions int) (out []models.PreferenceProfile, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_candidate_profiles", "preference_profiles", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT data FROM preference_profiles
		 WHERE user_id <> ? AND confidence_score >= ? AND total_interactions >= ?
		 ORDER BY user_id`, excludeUserID, minConfidence, minInteractions)
	if err != nil {
		return nil, storeErr("find candidate profiles", err)
	}
	defer closeQuietly(rows)

	out = []models.PreferenceProfile{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, storeErr("scan candidate profile", err)
		}
		p, err := decodeProfile(data)
		if err != nil {
			return nil, storeErr("find candidate profiles", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find candidate profiles", err)
	}
	return out, nil
}
