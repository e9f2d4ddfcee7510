// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

const (
	// maxRequestBody bounds JSON request bodies.
	maxRequestBody = 16 << 10

	defaultRefreshHoursBack = 2

	// defaultAnalyticsWindow is used when since is omitted.
	defaultAnalyticsWindow = 7 * 24 * time.Hour
)

// FeedbackRequest is the body of the feedback endpoints.
type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`

	// TargetType may be omitted; when present it must match the route.
	TargetType models.FeedbackTarget `json:"target_type,omitempty" validate:"omitempty,feedback_target"`
}

// limitQuery holds the optional limit query parameter.
type limitQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// refreshQuery holds POST /admin/refresh parameters.
type refreshQuery struct {
	Hours int `json:"hours" validate:"gte=1,lte=720"`
}

// analyticsQuery holds GET /admin/analytics parameters.
type analyticsQuery struct {
	Since time.Time `json:"since" validate:"required"`
	Until time.Time `json:"until" validate:"required,gtfield=Since"`
}

// callerID returns the authenticated user id. Routes are mounted behind the
// auth middleware, so a missing subject is a wiring error reported as 401.
func callerID(r *http.Request) (int64, error) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return 0, auth.ErrNoCredentials
	}
	return subject.UserID, nil
}

// parseLimit reads ?limit=. Absent means 0, which the engines replace with
// their default; values above the max are clamped by the engines.
func parseLimit(r *http.Request) (int, error) {
	q := limitQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("limit %q is not an integer: %w", raw, recommend.ErrInvalidInput)
		}
		q.Limit = n
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return 0, verr
	}
	return q.Limit, nil
}

// parseOptionalInt64 reads an optional positive integer query parameter.
func parseOptionalInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%s %q must be a positive integer: %w", key, raw, recommend.ErrInvalidInput)
	}
	return &n, nil
}

// pathUserID reads the {id} path segment as a user id.
func pathUserID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("user id %q must be a positive integer: %w", raw, recommend.ErrInvalidInput)
	}
	return n, nil
}

// pathRecommendationID reads the {id} path segment as a recommendation id.
func pathRecommendationID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("recommendation id %q must be a valid UUID: %w", raw, recommend.ErrInvalidInput)
	}
	return raw, nil
}

// decodeJSON decodes a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required: %w", recommend.ErrInvalidInput)
		}
		return fmt.Errorf("malformed request body: %v: %w", err, recommend.ErrInvalidInput)
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// parseRefreshHours reads ?hours= for POST /admin/refresh.
func parseRefreshHours(r *http.Request, fallback int) (int, error) {
	q := refreshQuery{Hours: fallback}
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("hours %q is not an integer: %w", raw, recommend.ErrInvalidInput)
		}
		q.Hours = n
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return 0, verr
	}
	return q.Hours, nil
}

// parseAnalyticsWindow reads ?since=&until= as RFC 3339 instants. until
// defaults to now and since to seven days before until.
func parseAnalyticsWindow(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	q := analyticsQuery{Until: now}
	var err error
	if raw := r.URL.Query().Get("until"); raw != "" {
		if q.Until, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("until %q is not RFC 3339: %w", raw, recommend.ErrInvalidInput)
		}
	}
	q.Since = q.Until.Add(-defaultAnalyticsWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		if q.Since, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("since %q is not RFC 3339: %w", raw, recommend.ErrInvalidInput)
		}
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return time.Time{}, time.Time{}, verr
	}
	return q.Since, q.Until, nil
}
