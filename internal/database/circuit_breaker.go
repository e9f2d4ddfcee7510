// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// CircuitBreakerConfig configures CircuitBreakerRepository.
type CircuitBreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the closed-state window after which counts are cleared.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig returns the production breaker settings.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "duckdb",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// CircuitBreakerRepository guards a recommend.Repository with a circuit breaker.
//
// Only data store failures count against the breaker. Not-found, invalid
// input and canceled contexts pass through as successes. While the breaker
// is open every call fails fast with an error wrapping gobreaker.ErrOpenState.
type CircuitBreakerRepository struct {
	next   recommend.Repository
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

var _ recommend.Repository = (*CircuitBreakerRepository)(nil)

// NewCircuitBreakerRepository wraps next with a breaker built from cfg.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewCircuitBreakerRepository(next recommend.Repository, cfg CircuitBreakerConfig, logger zerolog.Logger) *CircuitBreakerRepository {
	if cfg.Name == "" {
		cfg.Name = DefaultCircuitBreakerConfig().Name
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultCircuitBreakerConfig().FailureThreshold
	}
	r := &CircuitBreakerRepository{
		next:   next,
		name:   cfg.Name,
		logger: logger.With().Str("component", "circuit_breaker").Str("breaker", cfg.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	r.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateGauge(to))
		},
	})
	return r
}

// State returns the breaker state for health reporting.
func (r *CircuitBreakerRepository) State() gobreaker.State {
	return r.cb.State()
}

func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, recommend.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

func stateGauge(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// guard runs fn through the breaker and restores its typed result.
func guard[T any](r *CircuitBreakerRepository, op string, fn func() (T, error)) (T, error) {
	var zero T
	result, err := r.cb.Execute(func() (any, error) {
		return fn()
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(r.name, "rejected")
		return zero, fmt.Errorf("%s: %w", op, err)
	case err != nil:
		if isBreakerSuccess(err) {
			metrics.RecordCircuitBreakerRequest(r.name, "success")
		} else {
			metrics.RecordCircuitBreakerRequest(r.name, "failure")
		}
		return zero, err
	}
	metrics.RecordCircuitBreakerRequest(r.name, "success")
	typed, ok := result.(T)
	if !ok && result != nil {
		return zero, fmt.Errorf("%s: circuit breaker: unexpected result type %T", op, result)
	}
	return typed, nil
}

// guardErr runs an operation without a result through the breaker.
func guardErr(r *CircuitBreakerRepository, op string, fn func() error) error {
	_, err := guard(r, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (r *CircuitBreakerRepository) FindInteractionsByUser(ctx context.Context, userID int64) ([]models.InteractionRecord, error) {
	return guard(r, "find interactions", func() ([]models.InteractionRecord, error) {
		return r.next.FindInteractionsByUser(ctx, userID)
	})
}

func (r *CircuitBreakerRepository) CountInteractionsByUser(ctx context.Context, userID int64) (int, error) {
	return guard(r, "count interactions", func() (int, error) {
		return r.next.CountInteractionsByUser(ctx, userID)
	})
}

func (r *CircuitBreakerRepository) FindUsersWithMinInteractions(ctx context.Context, minCount int) ([]int64, error) {
	return guard(r, "find users", func() ([]int64, error) {
		return r.next.FindUsersWithMinInteractions(ctx, minCount)
	})
}

func (r *CircuitBreakerRepository) FindUsersActiveSince(ctx context.Context, since time.Time, minCount int) ([]int64, error) {
	return guard(r, "find active users", func() ([]int64, error) {
		return r.next.FindUsersActiveSince(ctx, since, minCount)
	})
}

func (r *CircuitBreakerRepository) FindMediaByID(ctx context.Context, id int64) (*models.Media, error) {
	return guard(r, "find media", func() (*models.Media, error) {
		return r.next.FindMediaByID(ctx, id)
	})
}

func (r *CircuitBreakerRepository) FindMediaByGenre(ctx context.Context, genre string) ([]models.Media, error) {
	return guard(r, "find media by genre", func() ([]models.Media, error) {
		return r.next.FindMediaByGenre(ctx, genre)
	})
}

func (r *CircuitBreakerRepository) FindAllMedia(ctx context.Context) ([]models.Media, error) {
	return guard(r, "find all media", func() ([]models.Media, error) {
		return r.next.FindAllMedia(ctx)
	})
}

func (r *CircuitBreakerRepository) FindTrendingMedia(ctx context.Context, since time.Time, limit int) ([]models.TrendingMedia, error) {
	return guard(r, "find trending media", func() ([]models.TrendingMedia, error) {
		return r.next.FindTrendingMedia(ctx, since, limit)
	})
}

func (r *CircuitBreakerRepository) FindProfileByUser(ctx context.Context, userID int64) (*models.PreferenceProfile, error) {
	return guard(r, "find profile", func() (*models.PreferenceProfile, error) {
		return r.next.FindProfileByUser(ctx, userID)
	})
}

func (r *CircuitBreakerRepository) SaveProfile(ctx context.Context, profile *models.PreferenceProfile) error {
	return guardErr(r, "save profile", func() error {
		return r.next.SaveProfile(ctx, profile)
	})
}

func (r *CircuitBreakerRepository) FindCandidateProfiles(ctx context.Context, excludeUserID int64, minConfidence float64, minInteractions int) ([]models.PreferenceProfile, error) {
	return guard(r, "find candidate profiles", func() ([]models.PreferenceProfile, error) {
		return r.next.FindCandidateProfiles(ctx, excludeUserID, minConfidence, minInteractions)
	})
}

func (r *CircuitBreakerRepository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	return guard(r, "find user", func() (*models.User, error) {
		return r.next.FindUserByID(ctx, id)
	})
}

func (r *CircuitBreakerRepository) FindUsernames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return guard(r, "find usernames", func() (map[int64]string, error) {
		return r.next.FindUsernames(ctx, ids)
	})
}

func (r *CircuitBreakerRepository) FindGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	return guard(r, "find group", func() (*models.Group, error) {
		return r.next.FindGroupByID(ctx, id)
	})
}

func (r *CircuitBreakerRepository) FindGroupMembers(ctx context.Context, groupID int64) ([]models.User, error) {
	return guard(r, "find group members", func() ([]models.User, error) {
		return r.next.FindGroupMembers(ctx, groupID)
	})
}

func (r *CircuitBreakerRepository) FindPublicGroupsExcludingMember(ctx context.Context, userID int64) ([]models.Group, error) {
	return guard(r, "find public groups", func() ([]models.Group, error) {
		return r.next.FindPublicGroupsExcludingMember(ctx, userID)
	})
}

func (r *CircuitBreakerRepository) SaveContentRecommendation(ctx context.Context, rec *models.ContentRecommendation) error {
	return guardErr(r, "save content recommendation", func() error {
		return r.next.SaveContentRecommendation(ctx, rec)
	})
}

func (r *CircuitBreakerRepository) SaveGroupRecommendation(ctx context.Context, rec *models.GroupRecommendation) error {
	return guardErr(r, "save group recommendation", func() error {
		return r.next.SaveGroupRecommendation(ctx, rec)
	})
}

func (r *CircuitBreakerRepository) FindContentRecommendationByID(ctx context.Context, id string) (*models.ContentRecommendation, error) {
	return guard(r, "find content recommendation", func() (*models.ContentRecommendation, error) {
		return r.next.FindContentRecommendationByID(ctx, id)
	})
}

func (r *CircuitBreakerRepository) FindGroupRecommendationByID(ctx context.Context, id string) (*models.GroupRecommendation, error) {
	return guard(r, "find group recommendation", func() (*models.GroupRecommendation, error) {
		return r.next.FindGroupRecommendationByID(ctx, id)
	})
}

func (r *CircuitBreakerRepository) DeleteExpiredContent(ctx context.Context, userID int64, now time.Time) (int, error) {
	return guard(r, "delete expired content", func() (int, error) {
		return r.next.DeleteExpiredContent(ctx, userID, now)
	})
}

func (r *CircuitBreakerRepository) DeleteExpiredGroup(ctx context.Context, userID int64, now time.Time) (int, error) {
	return guard(r, "delete expired groups", func() (int, error) {
		return r.next.DeleteExpiredGroup(ctx, userID, now)
	})
}

func (r *CircuitBreakerRepository) DeleteAllExpired(ctx context.Context, now time.Time) (int, error) {
	return guard(r, "delete all expired", func() (int, error) {
		return r.next.DeleteAllExpired(ctx, now)
	})
}

func (r *CircuitBreakerRepository) FindActiveContentRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.ContentRecommendation, error) {
	return guard(r, "find active content", func() ([]models.ContentRecommendation, error) {
		return r.next.FindActiveContentRecommendations(ctx, userID, now, limit)
	})
}

func (r *CircuitBreakerRepository) FindRecommendedMediaIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return guard(r, "find recommended media", func() ([]int64, error) {
		return r.next.FindRecommendedMediaIDs(ctx, userID, now)
	})
}

func (r *CircuitBreakerRepository) FindRecommendedGroupIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return guard(r, "find recommended groups", func() ([]int64, error) {
		return r.next.FindRecommendedGroupIDs(ctx, userID, now)
	})
}

func (r *CircuitBreakerRepository) FindActiveGroupRecommendations(ctx context.Context, userID int64, now time.Time, limit int) ([]models.GroupRecommendation, error) {
	return guard(r, "find active groups", func() ([]models.GroupRecommendation, error) {
		return r.next.FindActiveGroupRecommendations(ctx, userID, now, limit)
	})
}

func (r *CircuitBreakerRepository) FindContentRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.ContentRecommendation, error) {
	return guard(r, "find content between", func() ([]models.ContentRecommendation, error) {
		return r.next.FindContentRecommendationsBetween(ctx, since, until)
	})
}

func (r *CircuitBreakerRepository) FindGroupRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.GroupRecommendation, error) {
	return guard(r, "find groups between", func() ([]models.GroupRecommendation, error) {
		return r.next.FindGroupRecommendationsBetween(ctx, since, until)
	})
}

func (r *CircuitBreakerRepository) SaveFeedback(ctx context.Context, fb *models.RecommendationFeedback) error {
	return guardErr(r, "save feedback", func() error {
		return r.next.SaveFeedback(ctx, fb)
	})
}

func (r *CircuitBreakerRepository) FindFeedbackBetween(ctx context.Context, since, until time.Time) ([]models.RecommendationFeedback, error) {
	return guard(r, "find feedback between", func() ([]models.RecommendationFeedback, error) {
		return r.next.FindFeedbackBetween(ctx, since, until)
	})
}
