// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Bus owns the transport, the publisher and the handler set. It implements
// suture.Service: each Serve call runs a fresh router over the registered
// handlers, so the supervisor can restart it.
type Bus struct {
	cfg       Config
	transport *Transport
	publisher *Publisher
	wmLogger  watermill.LoggerAdapter
	logger    zerolog.Logger

	mu        sync.Mutex
	handlers  []func(*Router, message.Subscriber)
	ready     chan struct{}
	readyOnce sync.Once
}

// NewBus connects the configured transport.
//
//nolint:gocritic // cfg and logger passed by value for immutability
func NewBus(cfg Config, clock recommend.Clock, logger zerolog.Logger) (*Bus, error) {
	wmLogger := logging.NewWatermillLogger(logger)
	transport, err := NewTransport(cfg, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("event transport: %w", err)
	}
	return &Bus{
		cfg:       cfg,
		transport: transport,
		publisher: NewPublisher(transport.Publisher, cfg, clock, logger),
		wmLogger:  wmLogger,
		logger:    logger.With().Str("component", "event_bus").Str("transport", transport.Name()).Logger(),
		ready:     make(chan struct{}),
	}, nil
}

// Publisher returns the domain event publisher.
func (b *Bus) Publisher() *Publisher {
	return b.publisher
}

// Subscriber returns the transport subscriber, for consumers outside the router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.transport.Subscriber
}

// RegisterCacheInvalidation installs h on every router this bus runs.
func (b *Bus) RegisterCacheInvalidation(h *CacheInvalidationHandlers) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h.Register)
}

// Serve runs the router until ctx is canceled.
func (b *Bus) Serve(ctx context.Context) error {
	r, err := NewRouter(b.cfg, b.wmLogger, b.logger)
	if err != nil {
		return err
	}
	b.mu.Lock()
	for _, register := range b.handlers {
		register(r, b.transport.Subscriber)
	}
	b.mu.Unlock()

	go func() {
		select {
		case <-r.Running():
			b.readyOnce.Do(func() { close(b.ready) })
			b.logger.Info().Msg("event router running")
		case <-ctx.Done():
		}
	}()

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// Ready is closed once the first router has subscribed all handlers.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// String names the service in supervisor logs.
func (b *Bus) String() string {
	return "event-bus"
}

// Close stops publishing and closes the transport.
func (b *Bus) Close() error {
	_ = b.publisher.Close()
	return b.transport.Close()
}
