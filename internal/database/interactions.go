// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// FindInteractionsByUser implements recommend.InteractionReader.
func (db *DB) FindInteractionsByUser(ctx context.Context, userID int64) (out []models.InteractionRecord, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_interactions", "interactions", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, media_id, status, rating, completion_percentage, created_at, updated_at
		 FROM interactions WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, storeErr("find interactions", err)
	}
	defer closeQuietly(rows)

	out = []models.InteractionRecord{}
	for rows.Next() {
		var (
			rec    models.InteractionRecord
			status string
			rating sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.MediaID, &status, &rating,
			&rec.CompletionPercentage, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, storeErr("scan interaction", err)
		}
		rec.Status = models.InteractionStatus(status)
		if rating.Valid {
			v := int(rating.Int64)
			rec.Rating = &v
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		rec.UpdatedAt = rec.UpdatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find interactions", err)
	}
	return out, nil
}

// CountInteractionsByUser implements recommend.InteractionReader.
func (db *DB) CountInteractionsByUser(ctx context.Context, userID int64) (n int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("count_interactions", "interactions", start, err) }()

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, storeErr("count interactions", err)
	}
	return int(count), nil
}

// FindUsersWithMinInteractions implements recommend.InteractionReader.
func (db *DB) FindUsersWithMinInteractions(ctx context.Context, minCount int) ([]int64, error) {
	return db.queryIDs(ctx, "find_users_min_interactions", "interactions",
		`SELECT user_id FROM interactions GROUP BY user_id HAVING COUNT(*) >= ? ORDER BY user_id`, minCount)
}

// FindUsersActiveSince implements recommend.InteractionReader.
func (db *DB) FindUsersActiveSince(ctx context.Context, since time.Time, minCount int) ([]int64, error) {
	return db.queryIDs(ctx, "find_users_active_since", "interactions",
		`SELECT user_id FROM interactions GROUP BY user_id
		 HAVING COUNT(*) >= ? AND MAX(updated_at) >= ?
		 ORDER BY user_id`, minCount, since.UTC())
}

// queryIDs runs a query selecting a single BIGINT column.
func (db *DB) queryIDs(ctx context.Context, op, table, query string, args ...any) (ids []int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe(op, table, start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer closeQuietly(rows)

	ids = []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return ids, nil
}

// InsertInteraction stores one interaction and returns its assigned id.
func (db *DB) InsertInteraction(ctx context.Context, rec *models.InteractionRecord) (id int64, err error) {
	if !rec.Status.Valid() {
		return 0, fmt.Errorf("interaction status %q: %w", rec.Status, recommend.ErrInvalidInput)
	}
	if rec.Rating != nil && (*rec.Rating < models.MinInteractionRating || *rec.Rating > models.MaxInteractionRating) {
		return 0, fmt.Errorf("interaction rating %d: %w", *rec.Rating, recommend.ErrInvalidInput)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert_interaction", "interactions", start, err) }()

	var rating any
	if rec.Rating != nil {
		rating = *rec.Rating
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = rec.CreatedAt
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO interactions (user_id, media_id, status, rating, completion_percentage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		rec.UserID, rec.MediaID, string(rec.Status), rating, rec.CompletionPercentage, rec.CreatedAt.UTC(), updated.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, storeErr("insert interaction", err)
	}
	rec.ID = id
	rec.UpdatedAt = updated
	return id, nil
}
