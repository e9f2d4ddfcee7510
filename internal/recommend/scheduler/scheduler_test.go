// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

type stubGenerator struct {
	mu      sync.Mutex
	calls   []int64
	content func(ctx context.Context, userID int64) (int, error)
	expired atomic.Int32
}

func (g *stubGenerator) DeleteExpiredForUser(context.Context, int64) (int, error) {
	g.expired.Add(1)
	return 0, nil
}

func (g *stubGenerator) GenerateContent(ctx context.Context, userID int64) (int, error) {
	g.mu.Lock()
	g.calls = append(g.calls, userID)
	g.mu.Unlock()
	if g.content != nil {
		return g.content(ctx, userID)
	}
	return 3, nil
}

func (g *stubGenerator) GenerateGroups(context.Context, int64) (int, error) {
	return 1, nil
}

type stubUsers struct {
	ids      []int64
	err      error
	gotSince time.Time
	gotMin   int
}

func (u *stubUsers) FindUsersWithMinInteractions(_ context.Context, min int) ([]int64, error) {
	u.gotMin = min
	return u.ids, u.err
}

func (u *stubUsers) FindUsersActiveSince(_ context.Context, since time.Time, min int) ([]int64, error) {
	u.gotSince = since
	u.gotMin = min
	return u.ids, u.err
}

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestScheduler(g Generator, u UserSource) *Scheduler {
	return New(g, u, recommend.DefaultConfig(), Config{Workers: 3}, recommend.FixedClock{T: testNow}, zerolog.Nop())
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", fmt.Errorf("user 1: %w", recommend.ErrNotFound), ErrorTypeNotFound},
		{"invalid", fmt.Errorf("rating: %w", recommend.ErrInvalidInput), ErrorTypeInvalidInput},
		{"data store", fmt.Errorf("query: %w", errors.Join(recommend.ErrDataStore, errors.New("io"))), ErrorTypeDataStore},
		{"breaker open", fmt.Errorf("find media: %w", gobreaker.ErrOpenState), ErrorTypeDataStore},
		{"panic", fmt.Errorf("wrapped: %w", &PanicError{UserID: 1, Value: "boom"}), ErrorTypePanic},
		{"other", errors.New("boom"), ErrorTypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestGenerateForUser(t *testing.T) {
	t.Parallel()

	g := &stubGenerator{}
	s := newTestScheduler(g, &stubUsers{})
	if got := s.GenerateForUser(context.Background(), 7); got != 4 {
		t.Errorf("GenerateForUser() = %d, want 4", got)
	}
	if g.expired.Load() != 1 {
		t.Error("expired recommendations were not cleared first")
	}
}

func TestGenerateForUser_RecoversPanic(t *testing.T) {
	t.Parallel()

	g := &stubGenerator{content: func(context.Context, int64) (int, error) {
		panic("corrupt profile")
	}}
	s := newTestScheduler(g, &stubUsers{})
	if got := s.GenerateForUser(context.Background(), 7); got != 0 {
		t.Errorf("GenerateForUser() = %d, want 0 after a panic", got)
	}
}

func TestGenerateForAllUsers_IsolatesFailures(t *testing.T) {
	t.Parallel()

	g := &stubGenerator{content: func(_ context.Context, userID int64) (int, error) {
		switch userID {
		case 2:
			return 0, fmt.Errorf("profile: %w", recommend.ErrNotFound)
		case 4:
			panic("bad data")
		}
		return 3, nil
	}}
	users := &stubUsers{ids: []int64{1, 2, 3, 4, 5}}
	s := newTestScheduler(g, users)

	summary, err := s.GenerateForAllUsers(context.Background())
	if err != nil {
		t.Fatalf("GenerateForAllUsers() error = %v", err)
	}
	if users.gotMin != 5 {
		t.Errorf("min interactions = %d, want 5", users.gotMin)
	}
	if summary.TotalUsers != 5 || summary.Successful != 3 || summary.Failed != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalRecommendations != 12 {
		t.Errorf("TotalRecommendations = %d, want 12", summary.TotalRecommendations)
	}
	if summary.ErrorTypes[ErrorTypeNotFound] != 1 || summary.ErrorTypes[ErrorTypePanic] != 1 {
		t.Errorf("ErrorTypes = %v", summary.ErrorTypes)
	}
	if summary.Kind != KindFull {
		t.Errorf("Kind = %q", summary.Kind)
	}
}

func TestGenerateForAllUsers_SelectionError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	s := newTestScheduler(&stubGenerator{}, &stubUsers{err: boom})
	if _, err := s.GenerateForAllUsers(context.Background()); !errors.Is(err, boom) {
		t.Errorf("GenerateForAllUsers() error = %v, want %v", err, boom)
	}
}

func TestGenerateForAllUsers_RejectsConcurrentBatch(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	g := &stubGenerator{content: func(context.Context, int64) (int, error) {
		once.Do(func() { close(started) })
		<-release
		return 1, nil
	}}
	s := newTestScheduler(g, &stubUsers{ids: []int64{1}})

	done := make(chan error, 1)
	go func() {
		_, err := s.GenerateForAllUsers(context.Background())
		done <- err
	}()
	<-started

	if _, err := s.GenerateForAllUsers(context.Background()); !errors.Is(err, recommend.ErrBatchInProgress) {
		t.Errorf("second batch error = %v, want ErrBatchInProgress", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("first batch error = %v", err)
	}

	if _, err := s.GenerateForAllUsers(context.Background()); err != nil {
		t.Errorf("batch after completion error = %v", err)
	}
}

func TestGenerateForAllUsers_CancelStopsDispatch(t *testing.T) {
	t.Parallel()

	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed atomic.Int32
	g := &stubGenerator{content: func(context.Context, int64) (int, error) {
		if processed.Add(1) == 2 {
			cancel()
		}
		return 1, nil
	}}
	s := New(g, &stubUsers{ids: ids}, recommend.DefaultConfig(), Config{Workers: 1}, nil, zerolog.Nop())

	summary, err := s.GenerateForAllUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Successful >= len(ids) {
		t.Errorf("Successful = %d, dispatch continued after cancellation", summary.Successful)
	}
	if summary.TotalUsers != len(ids) {
		t.Errorf("TotalUsers = %d, want %d", summary.TotalUsers, len(ids))
	}
}

func TestRefreshForActiveUsers(t *testing.T) {
	t.Parallel()

	users := &stubUsers{ids: []int64{1, 2}}
	s := newTestScheduler(&stubGenerator{}, users)

	summary, err := s.RefreshForActiveUsers(context.Background(), 2)
	if err != nil {
		t.Fatalf("RefreshForActiveUsers() error = %v", err)
	}
	if want := testNow.Add(-2 * time.Hour); !users.gotSince.Equal(want) {
		t.Errorf("since = %v, want %v", users.gotSince, want)
	}
	if summary.Successful != 2 || summary.Kind != KindRefresh {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := s.RefreshForActiveUsers(context.Background(), 0); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("RefreshForActiveUsers(0) error = %v, want ErrInvalidInput", err)
	}
}

func TestRun_RateLimited(t *testing.T) {
	t.Parallel()

	s := New(&stubGenerator{}, &stubUsers{ids: []int64{1, 2, 3}}, recommend.DefaultConfig(),
		Config{Workers: 2, RatePerSecond: 1000, Burst: 1}, nil, zerolog.Nop())
	summary, err := s.GenerateForAllUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Successful != 3 {
		t.Errorf("Successful = %d, want 3", summary.Successful)
	}
}
