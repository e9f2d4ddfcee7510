// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package analytics reports how generated recommendations performed over a
// time window: how many were viewed and converted, what feedback they
// received and which reasons produced them.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Source is the read access the reporter needs.
type Source interface {
	FindContentRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.ContentRecommendation, error)
	FindGroupRecommendationsBetween(ctx context.Context, since, until time.Time) ([]models.GroupRecommendation, error)
	FindFeedbackBetween(ctx context.Context, since, until time.Time) ([]models.RecommendationFeedback, error)
}

// TypeStats counts outcomes for one content recommendation type.
type TypeStats struct {
	Generated int `json:"generated"`
	Viewed    int `json:"viewed"`
	Converted int `json:"converted"`
	Dismissed int `json:"dismissed"`
}

// GroupStats counts outcomes for group recommendations.
type GroupStats struct {
	Generated int `json:"generated"`
	Viewed    int `json:"viewed"`
	Joined    int `json:"joined"`
	Dismissed int `json:"dismissed"`
}

// FeedbackStats summarizes feedback in the window.
type FeedbackStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`

	// AverageRating is the mean of explicit ratings only. Dismissals carry
	// no rating and are excluded. 0 when there are no explicit ratings.
	AverageRating float64 `json:"average_rating"`
	RatedCount    int     `json:"rated_count"`
}

// Report is the aggregated performance of recommendations created in [Since, Until).
type Report struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`

	ByType   map[models.RecommendationType]TypeStats `json:"by_type"`
	Groups   GroupStats                              `json:"groups"`
	ByReason map[models.ReasonCode]int               `json:"by_reason"`

	TotalGenerated int `json:"total_generated"`
	TotalViewed    int `json:"total_viewed"`
	TotalConverted int `json:"total_converted"`

	// EngagementRate is viewed/generated over both kinds.
	EngagementRate float64 `json:"engagement_rate"`

	// ConversionRate is (added to library + joined)/generated.
	ConversionRate float64 `json:"conversion_rate"`

	Feedback FeedbackStats `json:"feedback"`
}

// Aggregate builds a report from already fetched records.
func Aggregate(
	since, until time.Time,
	content []models.ContentRecommendation,
	groups []models.GroupRecommendation,
	feedback []models.RecommendationFeedback,
) Report {
	r := Report{
		Since:    since,
		Until:    until,
		ByType:   make(map[models.RecommendationType]TypeStats, len(models.RecommendationTypes)),
		ByReason: make(map[models.ReasonCode]int),
	}
	for _, t := range models.RecommendationTypes {
		r.ByType[t] = TypeStats{}
	}

	for i := range content {
		c := &content[i]
		s := r.ByType[c.Type]
		s.Generated++
		if c.Viewed {
			s.Viewed++
		}
		if c.AddedToLibrary {
			s.Converted++
		}
		if c.Dismissed {
			s.Dismissed++
		}
		r.ByType[c.Type] = s
		r.ByReason[c.Reason]++
	}

	for i := range groups {
		g := &groups[i]
		r.Groups.Generated++
		if g.Viewed {
			r.Groups.Viewed++
		}
		if g.Joined {
			r.Groups.Joined++
		}
		if g.Dismissed {
			r.Groups.Dismissed++
		}
		r.ByReason[g.Reason]++
	}

	for _, s := range r.ByType {
		r.TotalGenerated += s.Generated
		r.TotalViewed += s.Viewed
		r.TotalConverted += s.Converted
	}
	r.TotalGenerated += r.Groups.Generated
	r.TotalViewed += r.Groups.Viewed
	r.TotalConverted += r.Groups.Joined

	if r.TotalGenerated > 0 {
		r.EngagementRate = float64(r.TotalViewed) / float64(r.TotalGenerated)
		r.ConversionRate = float64(r.TotalConverted) / float64(r.TotalGenerated)
	}

	ratingSum := 0
	for i := range feedback {
		fb := &feedback[i]
		r.Feedback.Total++
		switch fb.Polarity {
		case models.FeedbackPositive:
			r.Feedback.Positive++
		case models.FeedbackNegative:
			r.Feedback.Negative++
		}
		if fb.Rating > 0 {
			ratingSum += fb.Rating
			r.Feedback.RatedCount++
		}
	}
	if r.Feedback.RatedCount > 0 {
		r.Feedback.AverageRating = float64(ratingSum) / float64(r.Feedback.RatedCount)
	}
	return r
}

// Reporter fetches window data and aggregates it.
type Reporter struct {
	source Source
	logger zerolog.Logger
}

// NewReporter creates a reporter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReporter(source Source, logger zerolog.Logger) *Reporter {
	return &Reporter{source: source, logger: logger.With().Str("component", "analytics").Logger()}
}

// Report aggregates recommendations and feedback created in [since, until).
func (r *Reporter) Report(ctx context.Context, since, until time.Time) (Report, error) {
	if !since.Before(until) {
		return Report{}, fmt.Errorf("since %s must be before until %s: %w",
			since.Format(time.RFC3339), until.Format(time.RFC3339), recommend.ErrInvalidInput)
	}

	content, err := r.source.FindContentRecommendationsBetween(ctx, since, until)
	if err != nil {
		return Report{}, fmt.Errorf("load content recommendations: %w", err)
	}
	groups, err := r.source.FindGroupRecommendationsBetween(ctx, since, until)
	if err != nil {
		return Report{}, fmt.Errorf("load group recommendations: %w", err)
	}
	feedback, err := r.source.FindFeedbackBetween(ctx, since, until)
	if err != nil {
		return Report{}, fmt.Errorf("load feedback: %w", err)
	}

	rep := Aggregate(since, until, content, groups, feedback)
	r.logger.Debug().
		Int("generated", rep.TotalGenerated).
		Float64("engagement_rate", rep.EngagementRate).
		Float64("conversion_rate", rep.ConversionRate).
		Msg("analytics report built")
	return rep, nil
}
