// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// SimilarUserFinder returns a user's most compatible peers, best first.
// *compatibility.Engine satisfies it.
type SimilarUserFinder interface {
	FindSimilarUsers(ctx context.Context, userID int64, limit int) ([]models.SimilarUser, error)
}

// Collaborative recommends what compatible peers rated highly.
//
// For each of the top CollaborativeFilteringUserCount similar users, every
// interaction rated at least CollaborativeMinPeerRating contributes
// rating*compatibility to its media. Relevance is the accumulated score
// divided by the best accumulated score.
type Collaborative struct {
	similar      SimilarUserFinder
	interactions recommend.InteractionReader
	media        recommend.MediaReader
	cfg          recommend.Config
}

// NewCollaborative creates the collaborative strategy.
//
//nolint:gocritic // cfg passed by value for immutability
func NewCollaborative(similar SimilarUserFinder, interactions recommend.InteractionReader, media recommend.MediaReader, cfg recommend.Config) *Collaborative {
	return &Collaborative{similar: similar, interactions: interactions, media: media, cfg: cfg}
}

// Name implements Strategy.
func (c *Collaborative) Name() string { return "collaborative" }

// Type implements Strategy.
func (c *Collaborative) Type() models.RecommendationType { return models.RecommendationCollaborative }

type peerScore struct {
	mediaID int64
	score   float64
	peers   int
}

// Generate implements Strategy.
func (c *Collaborative) Generate(ctx context.Context, in Input) ([]Candidate, error) {
	n := quota(in.Limit, c.cfg.Strategy.MaxCandidatesPerStrategy)
	if n == 0 {
		return nil, nil
	}

	peers, err := c.similar.FindSimilarUsers(ctx, in.UserID, c.cfg.Strategy.CollaborativeFilteringUserCount)
	if err != nil {
		return nil, fmt.Errorf("find similar users: %w", err)
	}
	if len(peers) == 0 {
		return nil, nil
	}

	acc := make(map[int64]*peerScore)
	for _, peer := range peers {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		history, err := c.interactions.FindInteractionsByUser(ctx, peer.UserID)
		if err != nil {
			return nil, fmt.Errorf("load interactions for peer %d: %w", peer.UserID, err)
		}
		for i := range history {
			rec := &history[i]
			if !rec.HasRating() || *rec.Rating < c.cfg.Strategy.CollaborativeMinPeerRating {
				continue
			}
			if in.Excluded(rec.MediaID) {
				continue
			}
			ps, ok := acc[rec.MediaID]
			if !ok {
				ps = &peerScore{mediaID: rec.MediaID}
				acc[rec.MediaID] = ps
			}
			ps.score += rec.RatingValue() * peer.Score
			ps.peers++
		}
	}
	if len(acc) == 0 {
		return nil, nil
	}

	ranked := make([]*peerScore, 0, len(acc))
	for _, ps := range acc {
		ranked = append(ranked, ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].mediaID < ranked[j].mediaID
	})
	best := ranked[0].score

	out := make([]Candidate, 0, n)
	for _, ps := range ranked {
		if len(out) == n {
			break
		}
		m, err := c.media.FindMediaByID(ctx, ps.mediaID)
		if errors.Is(err, recommend.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load media %d: %w", ps.mediaID, err)
		}
		relevance := 0.0
		if best > 0 {
			relevance = ps.score / best
		}
		out = append(out, Candidate{
			Media:     *m,
			Type:      models.RecommendationCollaborative,
			Reason:    models.ReasonSimilarUsers,
			Relevance: relevance,
			Subject:   strconv.Itoa(ps.peers),
		})
	}
	return out, nil
}
