// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

// Finders that look up a single record return an error wrapping ErrNotFound
// when it does not exist. List finders return an empty slice instead.

// InteractionReader reads the external interaction history.
type InteractionReader interface {
	// FindInteractionsByUser returns every interaction of the user.
	FindInteractionsByUser(ctx context.Context, userID int64) ([]models.InteractionRecord, error)

	// CountInteractionsByUser returns the number of interactions of the user.
	CountInteractionsByUser(ctx context.Context, userID int64) (int, error)

	// FindUsersWithMinInteractions returns ids of users with at least min interactions.
	FindUsersWithMinInteractions(ctx context.Context, min int) ([]int64, error)

	// FindUsersActiveSince returns ids of users with at least min interactions
	// and at least one interaction updated at or after since.
	FindUsersActiveSince(ctx context.Context, since time.Time, min int) ([]int64, error)
}

// MediaReader reads the media catalog.
type MediaReader interface {
	FindMediaByID(ctx context.Context, id int64) (*models.Media, error)
	FindMediaByGenre(ctx context.Context, genre string) ([]models.Media, error)
	FindAllMedia(ctx context.Context) ([]models.Media, error)

	// FindTrendingMedia ranks media by how many content recommendations
	// referenced them since the given time, most recommended first.
	FindTrendingMedia(ctx context.Context, since time.Time, limit int) ([]models.TrendingMedia, error)
}

// ProfileRepository persists preference profiles.
type ProfileRepository interface {
	FindProfileByUser(ctx context.Context, userID int64) (*models.PreferenceProfile, error)

	// SaveProfile inserts or fully replaces the user's profile.
	SaveProfile(ctx context.Context, profile *models.PreferenceProfile) error

	// FindCandidateProfiles returns profiles eligible as collaborative
	// filtering sources: every profile except excludeUserID with confidence
	// >= minConfidence and at least minInteractions interactions.
	FindCandidateProfiles(ctx context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error)
}

// UserReader reads identity records.
type UserReader interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)

	// FindUsernames maps each known id to its username. Unknown ids are omitted.
	FindUsernames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// GroupReader reads social groups and their membership.
type GroupReader interface {
	FindGroupByID(ctx context.Context, id int64) (*models.Group, error)
	FindGroupMembers(ctx context.Context, groupID int64) ([]models.User, error)
	FindPublicGroupsExcludingMember(ctx context.Context, userID int64) ([]models.Group, error)
}

// RecommendationRepository persists generated recommendations.
type RecommendationRepository interface {
	// SaveContentRecommendation inserts or replaces a content recommendation by id.
	SaveContentRecommendation(ctx context.Context, rec *models.ContentRecommendation) error

	// SaveGroupRecommendation inserts or replaces a group recommendation by id.
	SaveGroupRecommendation(ctx context.Context, rec *models.GroupRecommendation) error

	FindContentRecommendationByID(ctx context.Context, id string) (*models.ContentRecommendation, error)
	FindGroupRecommendationByID(ctx context.Context, id string) (*models.GroupRecommendation, error)

	// DeleteExpiredContent deletes the user's content recommendations with
	// ExpiresAt <= now and returns the number removed.
	DeleteExpiredContent(ctx context.Context, userID int64, now time.Time) (int, error)

	// DeleteExpiredGroup deletes the user's group recommendations with
	// ExpiresAt <= now and returns the number removed.
	DeleteExpiredGroup(ctx context.Context, userID int64, now time.Time) (int, error)

	// DeleteAllExpired deletes every expired recommendation of both kinds.
	DeleteAllExpired(ctx context.Context, now time.Time) (int, error)

	// FindActiveContentRecommendations returns the user's unexpired, undismissed
	// content recommendations ordered by relevance descending.
	FindActiveContentRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.ContentRecommendation, error)

	// FindActiveGroupRecommendations returns the user's unexpired, undismissed
	// group recommendations ordered by compatibility descending.
	FindActiveGroupRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.GroupRecommendation, error)

	// FindRecommendedMediaIDs returns the media ids of every unexpired content
	// recommendation for the user, dismissed ones included.
	FindRecommendedMediaIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error)

	// FindRecommendedGroupIDs returns the group ids of every unexpired group
	// recommendation for the user, dismissed ones included.
	FindRecommendedGroupIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error)

	// FindContentRecommendationsBetween returns content recommendations created in [since, until).
	FindContentRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.ContentRecommendation, error)

	// FindGroupRecommendationsBetween returns group recommendations created in [since, until).
	FindGroupRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.GroupRecommendation, error)
}

// FeedbackRepository persists append-only feedback.
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, fb *models.RecommendationFeedback) error

	// FindFeedbackBetween returns feedback created in [since, until).
	FindFeedbackBetween(ctx context.Context, since, until time.Time) ([]models.RecommendationFeedback, error)
}

// Repository is the full data store contract of the core.
type Repository interface {
	InteractionReader
	MediaReader
	ProfileRepository
	UserReader
	GroupReader
	RecommendationRepository
	FeedbackRepository
}
