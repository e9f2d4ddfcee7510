// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package authz

import (
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

var (
	// ErrNoSubject means the request reached authorization unauthenticated.
	ErrNoSubject = errors.New("no authentication context")

	// ErrInsufficientPermissions means the policy denied the request.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	onError  auth.ErrorWriter
}

// NewMiddleware creates a new authorization middleware. A nil onError falls
// back to plain-text responses.
func NewMiddleware(enforcer *Enforcer, onError auth.ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return &Middleware{enforcer: enforcer, onError: onError}
}

// AuthorizeRequest is chi-compatible middleware that determines the action
// from the HTTP method and authorizes the caller's role on the request path.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.SubjectFromContext(r.Context())
		if !ok {
			m.onError(w, r, http.StatusUnauthorized, ErrNoSubject)
			return
		}

		allowed, err := m.enforcer.Enforce(subject.Role, r.URL.Path, methodToAction(r.Method))
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.onError(w, r, http.StatusInternalServerError, err)
			return
		}
		if !allowed {
			metrics.RecordAuthzDenial(roleLabel(subject.Role))
			m.onError(w, r, http.StatusForbidden, ErrInsufficientPermissions)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

func roleLabel(role string) string {
	if role == "" {
		return DefaultRole
	}
	return role
}
