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

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const contentColumns = `id, user_id, media_id, rec_type, reason, relevance_score, explanation,
	viewed, dismissed, added_to_library, created_at, expires_at`

const groupRecColumns = `id, user_id, group_id, compatibility_score, reason, explanation,
	viewed, dismissed, joined, created_at, expires_at`

func scanContent(row rowScanner) (models.ContentRecommendation, error) {
	var (
		rec             models.ContentRecommendation
		recType, reason string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.MediaID, &recType, &reason, &rec.RelevanceScore,
		&rec.Explanation, &rec.Viewed, &rec.Dismissed, &rec.AddedToLibrary, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
		return rec, err
	}
	rec.Type = models.RecommendationType(recType)
	rec.Reason = models.ReasonCode(reason)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	return rec, nil
}

func scanGroupRec(row rowScanner) (models.GroupRecommendation, error) {
	var (
		rec    models.GroupRecommendation
		reason string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.GroupID, &rec.CompatibilityScore, &reason,
		&rec.Explanation, &rec.Viewed, &rec.Dismissed, &rec.Joined, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
		return rec, err
	}
	rec.Reason = models.ReasonCode(reason)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	return rec, nil
}

// SaveContentRecommendation implements recommend.RecommendationRepository.
func (db *DB) SaveContentRecommendation(ctx context.Context, rec *models.ContentRecommendation) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("save_content_recommendation", "content_recommendations", start, err) }()

	if _, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO content_recommendations (`+contentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.MediaID, string(rec.Type), string(rec.Reason), rec.RelevanceScore, rec.Explanation,
		rec.Viewed, rec.Dismissed, rec.AddedToLibrary, rec.CreatedAt.UTC(), rec.ExpiresAt.UTC(),
	); err != nil {
		return storeErr("save content recommendation", err)
	}
	return nil
}

// SaveGroupRecommendation implements recommend.RecommendationRepository.
func (db *DB) SaveGroupRecommendation(ctx context.Context, rec *models.GroupRecommendation) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("save_group_recommendation", "group_recommendations", start, err) }()

	if _, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO group_recommendations (`+groupRecColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.GroupID, rec.CompatibilityScore, string(rec.Reason), rec.Explanation,
		rec.Viewed, rec.Dismissed, rec.Joined, rec.CreatedAt.UTC(), rec.ExpiresAt.UTC(),
	); err != nil {
		return storeErr("save group recommendation", err)
	}
	return nil
}

// FindContentRecommendationByID implements recommend.RecommendationRepository.
func (db *DB) FindContentRecommendationByID(ctx context.Context, id string) (rec *models.ContentRecommendation, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_content_recommendation", "content_recommendations", start, err) }()

	found, err := scanContent(db.conn.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_recommendations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content recommendation %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find content recommendation", err)
	}
	return &found, nil
}

// FindGroupRecommendationByID implements recommend.RecommendationRepository.
func (db *DB) FindGroupRecommendationByID(ctx context.Context, id string) (rec *models.GroupRecommendation, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_group_recommendation", "group_recommendations", start, err) }()

	found, err := scanGroupRec(db.conn.QueryRowContext(ctx,
		`SELECT `+groupRecColumns+` FROM group_recommendations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group recommendation %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find group recommendation", err)
	}
	return &found, nil
}

func (db *DB) deleteRows(ctx context.Context, op, table, query string, args ...any) (n int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe(op, table, start, err) }()

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storeErr(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr(op, err)
	}
	return int(affected), nil
}

// DeleteExpiredContent implements recommend.RecommendationRepository.
func (db *DB) DeleteExpiredContent(ctx context.Context, userID int64, now time.Time) (int, error) {
	return db.deleteRows(ctx, "delete_expired_content", "content_recommendations",
		`DELETE FROM content_recommendations WHERE user_id = ? AND expires_at <= ?`, userID, now.UTC())
}

// DeleteExpiredGroup implements recommend.RecommendationRepository.
func (db *DB) DeleteExpiredGroup(ctx context.Context, userID int64, now time.Time) (int, error) {
	return db.deleteRows(ctx, "delete_expired_group", "group_recommendations",
		`DELETE FROM group_recommendations WHERE user_id = ? AND expires_at <= ?`, userID, now.UTC())
}

// DeleteAllExpired implements recommend.RecommendationRepository.
func (db *DB) DeleteAllExpired(ctx context.Context, now time.Time) (int, error) {
	content, err := db.deleteRows(ctx, "delete_all_expired", "content_recommendations",
		`DELETE FROM content_recommendations WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	groups, err := db.deleteRows(ctx, "delete_all_expired", "group_recommendations",
		`DELETE FROM group_recommendations WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return content, err
	}
	if total := content + groups; total > 0 {
		db.logger.Debug().Int("content", content).Int("groups", groups).Msg("expired recommendations deleted")
	}
	return content + groups, nil
}

func (db *DB) queryContent(ctx context.Context, op, query string, args ...any) (out []models.ContentRecommendation, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe(op, "content_recommendations", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer closeQuietly(rows)

	out = []models.ContentRecommendation{}
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

func (db *DB) queryGroupRecs(ctx context.Context, op, query string, args ...any) (out []models.GroupRecommendation, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe(op, "group_recommendations", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer closeQuietly(rows)

	out = []models.GroupRecommendation{}
	for rows.Next() {
		rec, err := scanGroupRec(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

// limitClause returns a LIMIT suffix for positive limits.
func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// FindActiveContentRecommendations implements recommend.RecommendationRepository.
func (db *DB) FindActiveContentRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.ContentRecommendation, error) {
	return db.queryContent(ctx, "find_active_content",
		`SELECT `+contentColumns+` FROM content_recommendations
		 WHERE user_id = ? AND NOT dismissed AND expires_at > ?
		 ORDER BY relevance_score DESC, id`+limitClause(limit), userID, now.UTC())
}

// FindActiveGroupRecommendations implements recommend.RecommendationRepository.
func (db *DB) FindActiveGroupRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.GroupRecommendation, error) {
	return db.queryGroupRecs(ctx, "find_active_groups",
		`SELECT `+groupRecColumns+` FROM group_recommendations
		 WHERE user_id = ? AND NOT dismissed AND expires_at > ?
		 ORDER BY compatibility_score DESC, id`+limitClause(limit), userID, now.UTC())
}

// FindRecommendedMediaIDs implements recommend.RecommendationRepository.
func (db *DB) FindRecommendedMediaIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return db.queryIDs(ctx, "find_recommended_media", "content_recommendations",
		`SELECT DISTINCT media_id FROM content_recommendations
		 WHERE user_id = ? AND expires_at > ? ORDER BY media_id`, userID, now.UTC())
}

// FindRecommendedGroupIDs implements recommend.RecommendationRepository.
func (db *DB) FindRecommendedGroupIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return db.queryIDs(ctx, "find_recommended_groups", "group_recommendations",
		`SELECT DISTINCT group_id FROM group_recommendations
		 WHERE user_id = ? AND expires_at > ? ORDER BY group_id`, userID, now.UTC())
}

// FindContentRecommendationsBetween implements recommend.RecommendationRepository.
func (db *DB) FindContentRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.ContentRecommendation, error) {
	return db.queryContent(ctx, "find_content_between",
		`SELECT `+contentColumns+` FROM content_recommendations
		 WHERE created_at >= ? AND created_at < ? ORDER BY created_at, id`, since.UTC(), until.UTC())
}

// FindGroupRecommendationsBetween implements recommend.RecommendationRepository.
func (db *DB) FindGroupRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.GroupRecommendation, error) {
	return db.queryGroupRecs(ctx, "find_groups_between",
		`SELECT `+groupRecColumns+` FROM group_recommendations
		 WHERE created_at >= ? AND created_at < ? ORDER BY created_at, id`, since.UTC(), until.UTC())
}
