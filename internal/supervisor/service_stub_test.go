// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

var errSimulated = errors.New("simulated failure")

// stubService counts Serve calls and fails the first failures of them.
type stubService struct {
	name     string
	failures int32
	starts   atomic.Int32
	running  atomic.Bool
}

func newStubService(name string, failures int32) *stubService {
	return &stubService{name: name, failures: failures}
}

func (s *stubService) Serve(ctx context.Context) error {
	if s.starts.Add(1) <= s.failures {
		return errSimulated
	}
	s.running.Store(true)
	defer s.running.Store(false)
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }
