// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/algorithms"
	"github.com/tomtom215/reelmatch/internal/recommend/reranking"
)

const groupMetricLabel = "GROUP"

// GenerateContent generates and persists content recommendations for userID
// and returns how many were saved.
//
// Users with enough interactions get personal and collaborative candidates
// filled with trending ones; everyone else gets trending only. Media with an
// unexpired recommendation for the user is skipped, including dismissed ones.
func (e *Engine) GenerateContent(ctx context.Context, userID int64) (int, error) {
	uc, err := e.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := e.clock.Now()
	recommended, err := e.repo.FindRecommendedMediaIDs(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("load recommended media for user %d: %w", userID, err)
	}

	in := algorithms.Input{
		UserID:  userID,
		Profile: uc.profile,
		Exclude: algorithms.ExcludeSet(uc.history, recommended...),
	}

	n := e.cfg.Strategy.BatchRecommendationLimit
	var lists [][]algorithms.Candidate
	if uc.sufficient {
		lists, err = e.runStrategies(ctx, in,
			job{e.strategies.Personal, n},
			job{e.strategies.Collaborative, n},
			job{e.strategies.Trending, n},
		)
	} else {
		lists, err = e.runStrategies(ctx, in, job{e.strategies.Trending, n})
	}
	if err != nil {
		return 0, err
	}

	ranked := reranking.Diversify(reranking.Merge(lists...), e.cfg.MaxSameTypeRecommendations, n)

	expiresAt := now.Add(e.cfg.Expiry.ContentRecommendationExpiry)
	perType := make(map[models.RecommendationType]int)
	saved := 0
	for i := range ranked {
		c := &ranked[i]
		rec := &models.ContentRecommendation{
			ID:             uuid.NewString(),
			UserID:         userID,
			MediaID:        c.Media.ID,
			Type:           c.Type,
			Reason:         c.Reason,
			RelevanceScore: c.Relevance,
			Explanation:    Explain(c.Reason, c.Subject),
			CreatedAt:      now,
			ExpiresAt:      expiresAt,
		}
		if err := e.repo.SaveContentRecommendation(ctx, rec); err != nil {
			recordGenerated(perType)
			return saved, fmt.Errorf("save content recommendation: %w", err)
		}
		perType[c.Type]++
		saved++
	}
	recordGenerated(perType)

	e.logger.Debug().
		Int64("user_id", userID).
		Bool("sufficient_data", uc.sufficient).
		Int("saved", saved).
		Msg("content recommendations generated")
	return saved, nil
}

func recordGenerated(perType map[models.RecommendationType]int) {
	for t, n := range perType {
		metrics.RecordRecommendationsGenerated(string(t), n)
	}
}

type scoredGroup struct {
	group   models.Group
	score   float64
	members int
}

// GenerateGroups scores every public group the user has not joined and
// persists the best ones as group recommendations.
//
// A group's score is the mean compatibility between the user and the group's
// active members whose individual compatibility exceeds
// GroupMemberMinCompatibility. Groups without such members score 0. Groups
// at or above MinSimilarityScore are kept, best first, up to
// MaxGroupRecommendations.
func (e *Engine) GenerateGroups(ctx context.Context, userID int64) (int, error) {
	groups, err := e.repo.FindPublicGroupsExcludingMember(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("find public groups for user %d: %w", userID, err)
	}
	if len(groups) == 0 {
		return 0, nil
	}

	now := e.clock.Now()
	recommended, err := e.repo.FindRecommendedGroupIDs(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("load recommended groups for user %d: %w", userID, err)
	}
	skip := make(map[int64]struct{}, len(recommended))
	for _, id := range recommended {
		skip[id] = struct{}{}
	}

	var scored []scoredGroup
	for i := range groups {
		if algorithms.ContextCancelled(ctx) {
			return 0, ctx.Err()
		}
		g := groups[i]
		if _, ok := skip[g.ID]; ok {
			continue
		}
		sg, err := e.scoreGroup(ctx, userID, g)
		if err != nil {
			return 0, err
		}
		if sg.score >= e.cfg.Thresholds.MinSimilarityScore {
			scored = append(scored, sg)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].group.ID < scored[j].group.ID
	})
	if ceiling := e.cfg.Strategy.MaxGroupRecommendations; ceiling > 0 && len(scored) > ceiling {
		scored = scored[:ceiling]
	}

	expiresAt := now.Add(e.cfg.Expiry.GroupRecommendationExpiry)
	saved := 0
	for i := range scored {
		sg := &scored[i]
		rec := &models.GroupRecommendation{
			ID:                 uuid.NewString(),
			UserID:             userID,
			GroupID:            sg.group.ID,
			CompatibilityScore: sg.score,
			Reason:             models.ReasonCompatibleMembers,
			Explanation:        Explain(models.ReasonCompatibleMembers, strconv.Itoa(sg.members)),
			CreatedAt:          now,
			ExpiresAt:          expiresAt,
		}
		if err := e.repo.SaveGroupRecommendation(ctx, rec); err != nil {
			metrics.RecordRecommendationsGenerated(groupMetricLabel, saved)
			return saved, fmt.Errorf("save group recommendation: %w", err)
		}
		saved++
	}
	metrics.RecordRecommendationsGenerated(groupMetricLabel, saved)

	e.logger.Debug().Int64("user_id", userID).Int("saved", saved).Msg("group recommendations generated")
	return saved, nil
}

func (e *Engine) scoreGroup(ctx context.Context, userID int64, g models.Group) (scoredGroup, error) {
	members, err := e.repo.FindGroupMembers(ctx, g.ID)
	if err != nil {
		return scoredGroup{}, fmt.Errorf("load members of group %d: %w", g.ID, err)
	}

	sg := scoredGroup{group: g}
	var sum float64
	for i := range members {
		m := &members[i]
		if !m.Active || m.ID == userID {
			continue
		}
		c, err := e.compatibility.CalculateUserCompatibility(ctx, userID, m.ID)
		if errors.Is(err, recommend.ErrNotFound) {
			continue
		}
		if err != nil {
			return scoredGroup{}, fmt.Errorf("score member %d of group %d: %w", m.ID, g.ID, err)
		}
		if c > e.cfg.Thresholds.GroupMemberMinCompatibility {
			sum += c
			sg.members++
		}
	}
	if sg.members > 0 {
		sg.score = sum / float64(sg.members)
	}
	return sg, nil
}

// DeleteExpiredForUser removes the user's expired content and group recommendations.
func (e *Engine) DeleteExpiredForUser(ctx context.Context, userID int64) (int, error) {
	now := e.clock.Now()
	content, err := e.repo.DeleteExpiredContent(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired content for user %d: %w", userID, err)
	}
	groups, err := e.repo.DeleteExpiredGroup(ctx, userID, now)
	if err != nil {
		return content, fmt.Errorf("delete expired groups for user %d: %w", userID, err)
	}
	metrics.RecordExpiredCleanup(content + groups)
	return content + groups, nil
}

// CleanupExpired removes every expired recommendation.
func (e *Engine) CleanupExpired(ctx context.Context) (int, error) {
	n, err := e.repo.DeleteAllExpired(ctx, e.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired recommendations: %w", err)
	}
	metrics.RecordExpiredCleanup(n)
	if n > 0 {
		e.logger.Info().Int("deleted", n).Msg("expired recommendations removed")
	}
	return n, nil
}
