// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"fmt"
	"strings"
	"time"
)

// Transport names.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// Config configures the event bus.
type Config struct {
	// Transport is gochannel or nats.
	Transport string

	// NATSURL is the server URL when Transport is nats.
	NATSURL string

	// QueueGroup is the NATS queue group prefix shared by all instances.
	QueueGroup string

	// SubscribersCount is the number of concurrent NATS subscriptions per topic.
	SubscribersCount int

	// CloseTimeout bounds router and subscriber shutdown.
	CloseTimeout time.Duration

	// MaxReconnects and ReconnectWait tune the NATS client.
	MaxReconnects int
	ReconnectWait time.Duration

	// Retry middleware settings.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// Publisher circuit breaker settings.
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
}

// DefaultConfig returns in-process defaults.
func DefaultConfig() Config {
	return Config{
		Transport:               TransportGoChannel,
		NATSURL:                 "nats://127.0.0.1:4222",
		QueueGroup:              "reelmatch",
		SubscribersCount:        1,
		CloseTimeout:            10 * time.Second,
		MaxReconnects:           -1, // Unlimited
		ReconnectWait:           2 * time.Second,
		RetryMaxRetries:         3,
		RetryInitialInterval:    100 * time.Millisecond,
		RetryMaxInterval:        5 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          30 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGoChannel:
	case TransportNATS:
		if !strings.HasPrefix(c.NATSURL, "nats://") && !strings.HasPrefix(c.NATSURL, "tls://") {
			return fmt.Errorf("%w: nats url must start with nats:// or tls://, got %q", ErrInvalidConfig, c.NATSURL)
		}
		if c.SubscribersCount < 1 {
			return fmt.Errorf("%w: subscribers count must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("%w: close timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry max retries must be non-negative", ErrInvalidConfig)
	}
	return nil
}
