// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

// SaveFeedback implements recommend.FeedbackRepository. Feedback is append-only.
func (db *DB) SaveFeedback(ctx context.Context, fb *models.RecommendationFeedback) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("save_feedback", "recommendation_feedback", start, err) }()

	if _, err = db.conn.ExecContext(ctx,
		`INSERT INTO recommendation_feedback (id, user_id, target_type, target_id, polarity, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.UserID, string(fb.TargetType), fb.TargetID, string(fb.Polarity), fb.Rating, fb.Comment, fb.CreatedAt.UTC(),
	); err != nil {
		return storeErr("save feedback", err)
	}
	return nil
}

// FindFeedbackBetween implements recommend.FeedbackRepository.
func (db *DB) FindFeedbackBetween(ctx context.Context, since, until time.Time) (out []models.RecommendationFeedback, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_feedback_between", "recommendation_feedback", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, target_type, target_id, polarity, rating, comment, created_at
		 FROM recommendation_feedback
		 WHERE created_at >= ? AND created_at < ? ORDER BY created_at, id`, since.UTC(), until.UTC())
	if err != nil {
		return nil, storeErr("find feedback", err)
	}
	defer closeQuietly(rows)

	out = []models.RecommendationFeedback{}
	for rows.Next() {
		var (
			fb               models.RecommendationFeedback
			target, polarity string
		)
		if err := rows.Scan(&fb.ID, &fb.UserID, &target, &fb.TargetID, &polarity, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, storeErr("scan feedback", err)
		}
		fb.TargetType = models.FeedbackTarget(target)
		fb.Polarity = models.FeedbackPolarity(polarity)
		fb.CreatedAt = fb.CreatedAt.UTC()
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find feedback", err)
	}
	return out, nil
}
