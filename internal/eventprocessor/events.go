// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

// SchemaVersion is the current payload schema version.
const SchemaVersion = 1

// Topics.
const (
	TopicProfileUpdated   = "reelmatch.profile.updated"
	TopicFeedbackRecorded = "reelmatch.feedback.recorded"
	TopicBatchCompleted   = "reelmatch.batch.completed"
)

// Metadata keys set on every message.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
)

// ProfileUpdatedEvent is published after a profile is recomputed and saved.
type ProfileUpdatedEvent struct {
	SchemaVersion      int                       `json:"schema_version"`
	EventID            string                    `json:"event_id"`
	UserID             int64                     `json:"user_id"`
	ConfidenceScore    float64                   `json:"confidence_score"`
	TotalInteractions  int                       `json:"total_interactions"`
	ViewingPersonality models.ViewingPersonality `json:"viewing_personality"`
	OccurredAt         time.Time                 `json:"occurred_at"`
}

// NewProfileUpdatedEvent builds the event for profile.
func NewProfileUpdatedEvent(profile *models.PreferenceProfile, now time.Time) *ProfileUpdatedEvent {
	return &ProfileUpdatedEvent{
		SchemaVersion:      SchemaVersion,
		EventID:            uuid.New().String(),
		UserID:             profile.UserID,
		ConfidenceScore:    profile.ConfidenceScore,
		TotalInteractions:  profile.TotalInteractions,
		ViewingPersonality: profile.ViewingPersonality,
		OccurredAt:         now.UTC(),
	}
}

// Validate checks required fields.
func (e *ProfileUpdatedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	}
	if e.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive, got %d", ErrInvalidEvent, e.UserID)
	}
	return nil
}

// FeedbackRecordedEvent is published after a feedback entry is saved.
type FeedbackRecordedEvent struct {
	SchemaVersion int                     `json:"schema_version"`
	EventID       string                  `json:"event_id"`
	FeedbackID    string                  `json:"feedback_id"`
	UserID        int64                   `json:"user_id"`
	TargetType    models.FeedbackTarget   `json:"target_type"`
	TargetID      string                  `json:"target_id"`
	Polarity      models.FeedbackPolarity `json:"polarity"`
	Rating        int                     `json:"rating"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

// NewFeedbackRecordedEvent builds the event for fb. The free-text comment
// is not carried.
func NewFeedbackRecordedEvent(fb *models.RecommendationFeedback) *FeedbackRecordedEvent {
	return &FeedbackRecordedEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		FeedbackID:    fb.ID,
		UserID:        fb.UserID,
		TargetType:    fb.TargetType,
		TargetID:      fb.TargetID,
		Polarity:      fb.Polarity,
		Rating:        fb.Rating,
		OccurredAt:    fb.CreatedAt.UTC(),
	}
}

// Validate checks required fields.
func (e *FeedbackRecordedEvent) Validate() error {
	if e.EventID == "" || e.FeedbackID == "" {
		return fmt.Errorf("%w: event_id and feedback_id are required", ErrInvalidEvent)
	}
	if !e.TargetType.Valid() {
		return fmt.Errorf("%w: unknown target_type %q", ErrInvalidEvent, e.TargetType)
	}
	return nil
}

// BatchCompletedEvent is published after a full or refresh batch.
type BatchCompletedEvent struct {
	SchemaVersion        int            `json:"schema_version"`
	EventID              string         `json:"event_id"`
	Kind                 string         `json:"kind"`
	TotalUsers           int            `json:"total_users"`
	Successful           int            `json:"successful"`
	Failed               int            `json:"failed"`
	TotalRecommendations int            `json:"total_recommendations"`
	ErrorTypes           map[string]int `json:"error_types,omitempty"`
	ProcessingMillis     int64          `json:"processing_ms"`
	OccurredAt           time.Time      `json:"occurred_at"`
}

// NewBatchCompletedEvent builds the event for summary.
//
//nolint:gocritic // Summary is a small value type
func NewBatchCompletedEvent(summary scheduler.Summary, now time.Time) *BatchCompletedEvent {
	return &BatchCompletedEvent{
		SchemaVersion:        SchemaVersion,
		EventID:              uuid.New().String(),
		Kind:                 summary.Kind,
		TotalUsers:           summary.TotalUsers,
		Successful:           summary.Successful,
		Failed:               summary.Failed,
		TotalRecommendations: summary.TotalRecommendations,
		ErrorTypes:           summary.ErrorTypes,
		ProcessingMillis:     summary.ProcessingTime.Milliseconds(),
		OccurredAt:           now.UTC(),
	}
}

// Validate checks required fields.
func (e *BatchCompletedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	}
	if e.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidEvent)
	}
	return nil
}
