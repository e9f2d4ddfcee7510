// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
database_schema.go - Database Schema Management

Tables:
  - users, media, media_genres: identity and catalog supplied by the platform
  - interactions: watch history (one row per user/media interaction)
  - social_groups, group_members: public and private groups with membership
  - preference_profiles: derived taste profiles, stored as JSON with the
    columns candidate selection filters on
  - content_recommendations, group_recommendations: generated recommendations
  - recommendation_feedback: append-only feedback

All timestamps are stored as UTC TIMESTAMP values.

Upserted tables carry only their primary key: DuckDB rejects INSERT OR
REPLACE on rows covered by additional ART indexes.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) initialize() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			last_seen_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS media (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			media_type TEXT NOT NULL,
			genres TEXT NOT NULL DEFAULT '[]',
			platforms TEXT NOT NULL DEFAULT '[]',
			release_year INTEGER NOT NULL DEFAULT 0,
			average_rating DOUBLE NOT NULL DEFAULT 0,
			popularity_score DOUBLE NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS media_genres (
			media_id BIGINT NOT NULL,
			genre TEXT NOT NULL,
			PRIMARY KEY (media_id, genre)
		)`,

		`CREATE SEQUENCE IF NOT EXISTS interactions_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGINT PRIMARY KEY DEFAULT nextval('interactions_id_seq'),
			user_id BIGINT NOT NULL,
			media_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			rating INTEGER,
			completion_percentage DOUBLE NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS social_groups (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			public BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (group_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS preference_profiles (
			user_id BIGINT PRIMARY KEY,
			confidence_score DOUBLE NOT NULL DEFAULT 0,
			total_interactions INTEGER NOT NULL DEFAULT 0,
			viewing_personality TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_calculated_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS content_recommendations (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			media_id BIGINT NOT NULL,
			rec_type TEXT NOT NULL,
			reason TEXT NOT NULL,
			relevance_score DOUBLE NOT NULL,
			explanation TEXT NOT NULL,
			viewed BOOLEAN NOT NULL DEFAULT FALSE,
			dismissed BOOLEAN NOT NULL DEFAULT FALSE,
			added_to_library BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS group_recommendations (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			group_id BIGINT NOT NULL,
			compatibility_score DOUBLE NOT NULL,
			reason TEXT NOT NULL,
			explanation TEXT NOT NULL,
			viewed BOOLEAN NOT NULL DEFAULT FALSE,
			dismissed BOOLEAN NOT NULL DEFAULT FALSE,
			joined BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_feedback (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			polarity TEXT NOT NULL,
			rating INTEGER NOT NULL DEFAULT 0,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_updated ON interactions(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_media_genres_genre ON media_genres(genre)`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created ON recommendation_feedback(created_at)`,
	}
}
