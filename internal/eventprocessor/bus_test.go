// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

// fakeInvalidator records invalidations and can fail a fixed number of times.
type fakeInvalidator struct {
	mu        sync.Mutex
	users     []int64
	trending  int
	failTimes int
	calls     chan struct{}
}

func newFakeInvalidator() *fakeInvalidator {
	return &fakeInvalidator{calls: make(chan struct{}, 16)}
}

func (f *fakeInvalidator) InvalidateUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.calls <- struct{}{} }()
	if f.failTimes > 0 {
		f.failTimes--
		return errors.New("cache unavailable")
	}
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trending++
	f.calls <- struct{}{}
	return nil
}

func (f *fakeInvalidator) snapshot() ([]int64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.users...), f.trending
}

func waitCalls(t *testing.T, f *fakeInvalidator, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for handler call %d of %d", i+1, n)
		}
	}
}

func startBus(t *testing.T, cfg Config, inv *fakeInvalidator) *Bus {
	t.Helper()
	bus, err := NewBus(cfg, recommend.FixedClock{T: testNow}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	bus.RegisterCacheInvalidation(NewCacheInvalidationHandlers(inv, inv, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = bus.Close()
	})

	select {
	case <-bus.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("event router did not start")
	}
	return bus
}

func TestBus_ProfileUpdatedInvalidatesSimilarUsers(t *testing.T) {
	t.Parallel()

	inv := newFakeInvalidator()
	bus := startBus(t, DefaultConfig(), inv)

	bus.Publisher().ProfileUpdated(context.Background(), &models.PreferenceProfile{UserID: 11})
	bus.Publisher().ProfileUpdated(context.Background(), &models.PreferenceProfile{UserID: 12})
	waitCalls(t, inv, 2)

	users, trending := inv.snapshot()
	if len(users) != 2 {
		t.Fatalf("invalidated users = %v, want 2 entries", users)
	}
	if trending != 0 {
		t.Errorf("trending invalidated %d times, want 0", trending)
	}
}

func TestBus_BatchCompletedInvalidatesTrending(t *testing.T) {
	t.Parallel()

	inv := newFakeInvalidator()
	bus := startBus(t, DefaultConfig(), inv)

	// An empty batch leaves the pool alone; the second one drops it.
	bus.Publisher().BatchCompleted(context.Background(), scheduler.Summary{Kind: scheduler.KindRefresh})
	bus.Publisher().BatchCompleted(context.Background(), scheduler.Summary{Kind: scheduler.KindFull, TotalRecommendations: 30})
	waitCalls(t, inv, 1)

	if _, trending := inv.snapshot(); trending != 1 {
		t.Errorf("trending invalidated %d times, want 1", trending)
	}
}

func TestBus_RetriesThenContinues(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RetryMaxRetries = 1
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = time.Millisecond

	inv := newFakeInvalidator()
	// Message 1 fails both attempts and is dropped; message 2 succeeds on retry.
	inv.failTimes = 3
	bus := startBus(t, cfg, inv)

	bus.Publisher().ProfileUpdated(context.Background(), &models.PreferenceProfile{UserID: 1})
	waitCalls(t, inv, 2)
	bus.Publisher().ProfileUpdated(context.Background(), &models.PreferenceProfile{UserID: 2})
	waitCalls(t, inv, 2)

	users, _ := inv.snapshot()
	if len(users) != 1 || users[0] != 2 {
		t.Errorf("invalidated users = %v, want [2]", users)
	}
}

func TestHandleProfileUpdated_MalformedIsDropped(t *testing.T) {
	t.Parallel()

	inv := newFakeInvalidator()
	h := NewCacheInvalidationHandlers(inv, inv, zerolog.Nop())

	msg, err := encodeMessage("e-1", TopicBatchCompleted, 0, &BatchCompletedEvent{EventID: "e-1", Kind: "full"})
	if err != nil {
		t.Fatal(err)
	}
	// A batch payload on the profile handler fails validation (no user id).
	if err := h.HandleProfileUpdated(msg); err != nil {
		t.Errorf("HandleProfileUpdated() error = %v, want nil for malformed payload", err)
	}
	if users, _ := inv.snapshot(); len(users) != 0 {
		t.Errorf("malformed event should not invalidate, got %v", users)
	}
}
