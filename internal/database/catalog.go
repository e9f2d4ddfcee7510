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
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const mediaColumns = `m.id, m.title, m.media_type, m.genres, m.platforms, m.release_year, m.average_rating, m.popularity_score`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(row rowScanner, extra ...any) (models.Media, error) {
	var (
		m                 models.Media
		mediaType         string
		genres, platforms string
	)
	dest := append([]any{&m.ID, &m.Title, &mediaType, &genres, &platforms, &m.ReleaseYear, &m.AverageRating, &m.PopularityScore}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Media{}, err
	}
	m.Type = models.MediaType(mediaType)
	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return models.Media{}, fmt.Errorf("decode genres of media %d: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(platforms), &m.Platforms); err != nil {
		return models.Media{}, fmt.Errorf("decode platforms of media %d: %w", m.ID, err)
	}
	return m, nil
}

func (db *DB) queryMedia(ctx context.Context, op, query string, args ...any) (out []models.Media, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe(op, "media", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer closeQuietly(rows)

	out = []models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

// FindMediaByID implements recommend.MediaReader.
func (db *DB) FindMediaByID(ctx context.Context, id int64) (m *models.Media, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_media", "media", start, err) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media m WHERE m.id = ?`, id)
	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("media %d: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find media", err)
	}
	return &media, nil
}

// FindMediaByGenre implements recommend.MediaReader.
func (db *DB) FindMediaByGenre(ctx context.Context, genre string) ([]models.Media, error) {
	return db.queryMedia(ctx, "find_media_by_genre",
		`SELECT `+mediaColumns+` FROM media m
		 WHERE m.id IN (SELECT media_id FROM media_genres WHERE genre = ?)
		 ORDER BY m.id`, genre)
}

// FindAllMedia implements recommend.MediaReader.
func (db *DB) FindAllMedia(ctx context.Context) ([]models.Media, error) {
	return db.queryMedia(ctx, "find_all_media", `SELECT `+mediaColumns+` FROM media m ORDER BY m.id`)
}

// FindTrendingMedia implements recommend.MediaReader.
func (db *DB) FindTrendingMedia(ctx context.Context, since time.Time, limit int) (out []models.TrendingMedia, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_trending_media", "content_recommendations", start, err) }()

	query := `SELECT ` + mediaColumns + `, t.cnt
		FROM (
			SELECT media_id, COUNT(*) AS cnt
			FROM content_recommendations
			WHERE created_at >= ?
			GROUP BY media_id
		) t
		JOIN media m ON m.id = t.media_id
		ORDER BY t.cnt DESC, m.id ASC`
	args := []any{since.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("find trending media", err)
	}
	defer closeQuietly(rows)

	out = []models.TrendingMedia{}
	for rows.Next() {
		var count int64
		m, err := scanMedia(rows, &count)
		if err != nil {
			return nil, storeErr("find trending media", err)
		}
		out = append(out, models.TrendingMedia{Media: m, Count: int(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find trending media", err)
	}
	return out, nil
}

// UpsertMedia inserts or replaces catalog items and their genre index.
func (db *DB) UpsertMedia(ctx context.Context, items ...models.Media) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert_media", "media", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin upsert media", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range items {
		m := &items[i]
		genres, err := json.Marshal(nonNil(m.Genres))
		if err != nil {
			return fmt.Errorf("encode genres of media %d: %w", m.ID, err)
		}
		platforms, err := json.Marshal(nonNil(m.Platforms))
		if err != nil {
			return fmt.Errorf("encode platforms of media %d: %w", m.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO media (id, title, media_type, genres, platforms, release_year, average_rating, popularity_score)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Title, string(m.Type), string(genres), string(platforms), m.ReleaseYear, m.AverageRating, m.PopularityScore,
		); err != nil {
			return storeErr("upsert media", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM media_genres WHERE media_id = ?`, m.ID); err != nil {
			return storeErr("clear media genres", err)
		}
		for _, g := range dedupe(m.Genres) {
			if _, err := tx.ExecContext(ctx, `INSERT INTO media_genres (media_id, genre) VALUES (?, ?)`, m.ID, g); err != nil {
				return storeErr("insert media genre", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit upsert media", err)
	}
	return nil
}

// FindUserByID implements recommend.UserReader.
func (db *DB) FindUserByID(ctx context.Context, id int64) (u *models.User, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_user", "users", start, err) }()

	var (
		user     models.User
		lastSeen sql.NullTime
	)
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, username, active, last_seen_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.Active, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if lastSeen.Valid {
		user.LastSeenAt = lastSeen.Time.UTC()
	}
	return &user, nil
}

// FindUsernames implements recommend.UserReader.
func (db *DB) FindUsernames(ctx context.Context, ids []int64) (out map[int64]string, err error) {
	out = make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_usernames", "users", start, err) }()

	placeholders, args := inList(ids)
	rows, err := db.conn.QueryContext(ctx, `SELECT id, username FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, storeErr("find usernames", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, storeErr("scan username", err)
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find usernames", err)
	}
	return out, nil
}

// UpsertUser inserts or replaces an identity record.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert_user", "users", start, err) }()

	var lastSeen any
	if !u.LastSeenAt.IsZero() {
		lastSeen = u.LastSeenAt.UTC()
	}
	if _, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, username, active, last_seen_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.Active, lastSeen,
	); err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

const groupColumns = `g.id, g.name, g.description, g.public,
	(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id)`

func scanGroup(row rowScanner) (models.Group, error) {
	var (
		g       models.Group
		members int64
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Public, &members); err != nil {
		return models.Group{}, err
	}
	g.MemberCount = int(members)
	return g, nil
}

// FindGroupByID implements recommend.GroupReader.
func (db *DB) FindGroupByID(ctx context.Context, id int64) (grp *models.Group, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_group", "social_groups", start, err) }()

	g, err := scanGroup(db.conn.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM social_groups g WHERE g.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("find group", err)
	}
	return &g, nil
}

// FindGroupMembers implements recommend.GroupReader.
func (db *DB) FindGroupMembers(ctx context.Context, groupID int64) (out []models.User, err error) {
	if _, err := db.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_group_members", "group_members", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.active, u.last_seen_at
		 FROM group_members gm JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY u.id`, groupID)
	if err != nil {
		return nil, storeErr("find group members", err)
	}
	defer closeQuietly(rows)

	out = []models.User{}
	for rows.Next() {
		var (
			u        models.User
			lastSeen sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Active, &lastSeen); err != nil {
			return nil, storeErr("scan group member", err)
		}
		if lastSeen.Valid {
			u.LastSeenAt = lastSeen.Time.UTC()
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find group members", err)
	}
	return out, nil
}

// FindPublicGroupsExcludingMember implements recommend.GroupReader.
func (db *DB) FindPublicGroupsExcludingMember(ctx context.Context, userID int64) (out []models.Group, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("find_public_groups", "social_groups", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM social_groups g
		 WHERE g.public
		   AND NOT EXISTS (SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.user_id = ?)
		 ORDER BY g.id`, userID)
	if err != nil {
		return nil, storeErr("find public groups", err)
	}
	defer closeQuietly(rows)

	out = []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, storeErr("scan group", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find public groups", err)
	}
	return out, nil
}

// UpsertGroup inserts or replaces a group and sets its membership.
func (db *DB) UpsertGroup(ctx context.Context, g *models.Group, memberIDs ...int64) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert_group", "social_groups", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin upsert group", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO social_groups (id, name, description, public) VALUES (?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.Public,
	); err != nil {
		return storeErr("upsert group", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, g.ID); err != nil {
		return storeErr("clear group members", err)
	}
	for _, id := range dedupe(memberIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES (?, ?)`, g.ID, id); err != nil {
			return storeErr("insert group member", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit upsert group", err)
	}
	return nil
}

// inList renders "?, ?, ?" for ids and returns them as query args.
func inList(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
