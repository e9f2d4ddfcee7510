// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// ErrorWriter renders an authentication failure. The API layer supplies one
// that writes its JSON envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, err error)

// Middleware verifies bearer tokens and stores the caller in the request context.
type Middleware struct {
	manager *JWTManager
	onError ErrorWriter
	logger  zerolog.Logger
}

// NewMiddleware creates the bearer middleware. A nil onError falls back to
// a plain-text 401.
//
//nolint:gocritic // logger passed by value for immutability
func NewMiddleware(manager *JWTManager, onError ErrorWriter, logger zerolog.Logger) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return &Middleware{
		manager: manager,
		onError: onError,
		logger:  logger.With().Str("component", "auth").Logger(),
	}
}

// Authenticate is chi-compatible middleware rejecting requests without a
// valid bearer token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if err != nil {
			metrics.RecordAuthFailure(authFailureReason(err))
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			w.Header().Set("WWW-Authenticate", `Bearer realm="reelmatch"`)
			m.onError(w, r, http.StatusUnauthorized, err)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Subject, error) {
	token, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := m.manager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return claims.Identity()
}

// extractBearerToken reads the token from the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidCredentials
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCredentials):
		return "missing"
	case errors.Is(err, ErrExpiredCredentials):
		return "expired"
	default:
		return "invalid"
	}
}
