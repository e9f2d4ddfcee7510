// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

const publisherBreakerName = "event-publisher"

// Publisher publishes domain events behind a circuit breaker. Its observer
// methods never return errors; failures are logged and counted.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	clock     recommend.Clock
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewPublisher(pub message.Publisher, cfg Config, clock recommend.Clock, logger zerolog.Logger) *Publisher {
	if clock == nil {
		clock = recommend.SystemClock{}
	}
	p := &Publisher{
		publisher: pub,
		clock:     clock,
		logger:    logger.With().Str("component", "event_publisher").Logger(),
	}
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        publisherBreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("event publisher circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
	return p
}

// Publish sends msg to topic.
func (p *Publisher) Publish(topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(publisherBreakerName, "rejected")
		return fmt.Errorf("publish %s: %w", topic, err)
	case err != nil:
		metrics.RecordCircuitBreakerRequest(publisherBreakerName, "failure")
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.RecordCircuitBreakerRequest(publisherBreakerName, "success")
	metrics.RecordEventPublish(topic)
	return nil
}

// ProfileUpdated publishes a profile.updated event.
func (p *Publisher) ProfileUpdated(ctx context.Context, profile *models.PreferenceProfile) {
	e := NewProfileUpdatedEvent(profile, p.clock.Now())
	p.publishEvent(ctx, TopicProfileUpdated, e.EventID, e.UserID, e)
}

// FeedbackRecorded publishes a feedback.recorded event.
func (p *Publisher) FeedbackRecorded(ctx context.Context, fb *models.RecommendationFeedback) {
	e := NewFeedbackRecordedEvent(fb)
	p.publishEvent(ctx, TopicFeedbackRecorded, e.EventID, e.UserID, e)
}

// BatchCompleted publishes a batch.completed event.
//
//nolint:gocritic // Summary is a small value type
func (p *Publisher) BatchCompleted(ctx context.Context, summary scheduler.Summary) {
	e := NewBatchCompletedEvent(summary, p.clock.Now())
	p.publishEvent(ctx, TopicBatchCompleted, e.EventID, 0, e)
}

func (p *Publisher) publishEvent(ctx context.Context, topic, eventID string, userID int64, event validatable) {
	msg, err := encodeMessage(eventID, topic, userID, event)
	if err == nil {
		msg.SetContext(ctx)
		err = p.Publish(topic, msg)
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Int64("user_id", userID).Msg("event publish failed")
	}
}

// Close stops publishing. The underlying publisher belongs to the
// Transport and is closed there.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// State returns the breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}
