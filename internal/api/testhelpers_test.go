// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/analytics"
	"github.com/tomtom215/reelmatch/internal/recommend/compatibility"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
)

const testSecret = "api_test_secret_that_is_comfortably_longer_than_32"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubRecommender records calls and returns canned results.
type stubRecommender struct {
	realTimeFn   func(userID int64, seed *int64, limit int) ([]models.RealTimeRecommendation, error)
	transitionFn func(name string, userID int64, recID string) error
	feedbackFn   func(userID int64, target models.FeedbackTarget, recID string, rating int, comment string) error
	activeLimit  int
}

func (s *stubRecommender) GetRealTimeRecommendations(_ context.Context, userID int64, seed *int64, limit int) ([]models.RealTimeRecommendation, error) {
	if s.realTimeFn != nil {
		return s.realTimeFn(userID, seed, limit)
	}
	return []models.RealTimeRecommendation{}, nil
}

func (s *stubRecommender) ActiveRecommendations(_ context.Context, userID int64, limit int) ([]models.ContentRecommendation, error) {
	s.activeLimit = limit
	return []models.ContentRecommendation{{ID: "a", UserID: userID}}, nil
}

func (s *stubRecommender) ActiveGroupRecommendations(_ context.Context, userID int64, limit int) ([]models.GroupRecommendation, error) {
	s.activeLimit = limit
	return []models.GroupRecommendation{{ID: "g", UserID: userID}}, nil
}

func (s *stubRecommender) content(name string, userID int64, recID string) (*models.ContentRecommendation, error) {
	if s.transitionFn != nil {
		if err := s.transitionFn(name, userID, recID); err != nil {
			return nil, err
		}
	}
	return &models.ContentRecommendation{ID: recID, UserID: userID}, nil
}

func (s *stubRecommender) group(name string, userID int64, recID string) (*models.GroupRecommendation, error) {
	if s.transitionFn != nil {
		if err := s.transitionFn(name, userID, recID); err != nil {
			return nil, err
		}
	}
	return &models.GroupRecommendation{ID: recID, UserID: userID}, nil
}

func (s *stubRecommender) MarkViewed(_ context.Context, u int64, id string) (*models.ContentRecommendation, error) {
	return s.content("view", u, id)
}

func (s *stubRecommender) MarkAddedToLibrary(_ context.Context, u int64, id string) (*models.ContentRecommendation, error) {
	return s.content("library", u, id)
}

func (s *stubRecommender) Dismiss(_ context.Context, u int64, id string) (*models.ContentRecommendation, error) {
	return s.content("dismiss", u, id)
}

func (s *stubRecommender) MarkGroupViewed(_ context.Context, u int64, id string) (*models.GroupRecommendation, error) {
	return s.group("group_view", u, id)
}

func (s *stubRecommender) MarkJoined(_ context.Context, u int64, id string) (*models.GroupRecommendation, error) {
	return s.group("join", u, id)
}

func (s *stubRecommender) DismissGroup(_ context.Context, u int64, id string) (*models.GroupRecommendation, error) {
	return s.group("group_dismiss", u, id)
}

func (s *stubRecommender) SubmitFeedback(_ context.Context, userID int64, target models.FeedbackTarget, recID string, rating int, comment string) (*models.RecommendationFeedback, error) {
	if s.feedbackFn != nil {
		if err := s.feedbackFn(userID, target, recID, rating, comment); err != nil {
			return nil, err
		}
	}
	return &models.RecommendationFeedback{ID: "fb", UserID: userID, TargetType: target, TargetID: recID, Rating: rating, Comment: comment}, nil
}

type stubProfiles struct {
	updated int
	err     error
}

func (s *stubProfiles) GetOrCreateProfile(_ context.Context, userID int64) (*models.PreferenceProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.PreferenceProfile{UserID: userID, TotalInteractions: s.updated}, nil
}

func (s *stubProfiles) UpdatePreferences(_ context.Context, _ int64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.updated++
	return 0.5, nil
}

type stubCompatibility struct {
	similarLimit int
}

func (s *stubCompatibility) FindSimilarUsers(_ context.Context, _ int64, limit int) ([]models.SimilarUser, error) {
	s.similarLimit = limit
	return []models.SimilarUser{{UserID: 2, Username: "bob", Score: 0.8}}, nil
}

func (s *stubCompatibility) Breakdown(_ context.Context, a, b int64) (compatibility.Breakdown, error) {
	if b == 404 {
		return compatibility.Breakdown{}, fmt.Errorf("load profile for user %d: %w", b, recommend.ErrNotFound)
	}
	return compatibility.Breakdown{Genre: 1, Score: float64(a) / float64(a+b)}, nil
}

type stubBatches struct {
	generateErr error
	hours       int
}

func (s *stubBatches) GenerateForAllUsers(context.Context) (scheduler.Summary, error) {
	if s.generateErr != nil {
		return scheduler.Summary{}, s.generateErr
	}
	return scheduler.Summary{Kind: scheduler.KindFull, TotalUsers: 3, Successful: 3}, nil
}

func (s *stubBatches) RefreshForActiveUsers(_ context.Context, hours int) (scheduler.Summary, error) {
	s.hours = hours
	return scheduler.Summary{Kind: scheduler.KindRefresh}, nil
}

type stubReporter struct {
	since, until time.Time
}

func (s *stubReporter) Report(_ context.Context, since, until time.Time) (analytics.Report, error) {
	s.since, s.until = since, until
	return analytics.Report{Since: since, Until: until, TotalGenerated: 10}, nil
}

// testEnv bundles the router under test with its stubs.
type testEnv struct {
	deps    Dependencies
	rec     *stubRecommender
	prof    *stubProfiles
	compat  *stubCompatibility
	batches *stubBatches
	report  *stubReporter
	handler http.Handler
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T, sec config.SecurityConfig, readiness ...ReadinessCheck) *testEnv {
	t.Helper()

	env := &testEnv{
		rec:     &stubRecommender{},
		prof:    &stubProfiles{},
		compat:  &stubCompatibility{},
		batches: &stubBatches{},
		report:  &stubReporter{},
	}
	env.deps = Dependencies{
		Recommender:   env.rec,
		Profiles:      env.prof,
		Compatibility: env.compat,
		Batches:       env.batches,
		Reporter:      env.report,
		Readiness:     readiness,
	}

	if sec.JWTSecret == "" {
		sec.JWTSecret = testSecret
	}
	if sec.AdminRole == "" {
		sec.AdminRole = "admin"
	}
	if sec.RateLimitReqs == 0 {
		sec.RateLimitReqs = 1000
		sec.RateLimitWindow = time.Minute
	}
	if sec.CORSOrigins == nil {
		sec.CORSOrigins = []string{"*"}
	}

	var err error
	env.jwt, err = auth.NewJWTManager(&sec)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{AdminRole: sec.AdminRole})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	h := NewHandler(env.deps, recommend.DefaultConfig(), recommend.FixedClock{T: testNow}, zerolog.Nop(), WithVersion("test"))
	router := NewRouter(
		h,
		auth.NewMiddleware(env.jwt, WriteAuthError, zerolog.Nop()),
		authz.NewMiddleware(enforcer, WriteAuthError),
		NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&sec)),
		zerolog.Nop(),
	)
	env.handler = router.SetupChi()
	return env
}

// token issues a bearer token for userID with role.
func (env *testEnv) token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := env.jwt.GenerateToken(userID, role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

// do performs a request and decodes the envelope.
func (env *testEnv) do(t *testing.T, method, target, token string, body io.Reader) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		return rec, nil
	}
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return rec, &resp
}

func errorCode(resp *models.APIResponse) string {
	if resp == nil || resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}
