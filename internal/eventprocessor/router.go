// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Router wraps the Watermill router with Reelmatch middleware.
//
// Middleware order, outermost first:
//  1. ackOnFailure: log and ack a message that exhausted its retries
//  2. Recoverer: convert handler panics to errors
//  3. Retry: exponential backoff for transient failures
type Router struct {
	router *message.Router
	logger zerolog.Logger
}

// NewRouter creates a router.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewRouter(cfg Config, wmLogger watermill.LoggerAdapter, logger zerolog.Logger) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	r := &Router{
		router: wmRouter,
		logger: logger.With().Str("component", "event_router").Logger(),
	}

	wmRouter.AddMiddleware(r.ackOnFailure)
	wmRouter.AddMiddleware(middleware.Recoverer)
	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          wmLogger,
		}
		wmRouter.AddMiddleware(retry.Middleware)
	}
	return r, nil
}

// ackOnFailure swallows the final handler error so the message is acked.
func (r *Router) ackOnFailure(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())
		start := time.Now()
		out, err := h(msg)
		metrics.RecordEventConsumed(topic, time.Since(start), err)
		if err != nil {
			r.logger.Error().Err(err).
				Str("topic", topic).
				Str("message_uuid", msg.UUID).
				Str("handler", message.HandlerNameFromCtx(msg.Context())).
				Msg("event handler failed after retries, dropping message")
			return nil, nil
		}
		return out, nil
	}
}

// AddConsumerHandler registers a handler that produces no output messages.
func (r *Router) AddConsumerHandler(name, topic string, sub message.Subscriber, fn message.NoPublishHandlerFunc) {
	r.router.AddConsumerHandler(name, topic, sub, fn)
}

// Run blocks until ctx is canceled or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
