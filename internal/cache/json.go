// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// GetJSON reads key and decodes it into T. A missing key returns ok == false
// with a nil error. An undecodable value is deleted and reported as a miss.
func GetJSON[T any](ctx context.Context, s Store, key string) (value T, ok bool, err error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return value, false, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		_ = s.Delete(ctx, key)
		var zero T
		return zero, false, nil
	}
	return value, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
