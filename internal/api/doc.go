// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api exposes the Reelmatch recommendation engines over HTTP.

# Routing

Routes are served by chi under /api/v1. Everything except the health probes
requires a bearer token (see internal/auth) and is rate limited with
go-chi/httprate. The /admin subtree is additionally checked against the
casbin policy (see internal/authz).

	GET  /recommendations?limit=&context_media_id=
	GET  /recommendations/active?limit=
	POST /recommendations/{id}/view | dismiss | library
	POST /recommendations/{id}/feedback          {"rating": 1-5, "comment": "..."}
	GET  /groups/recommendations?limit=
	POST /groups/recommendations/{id}/view | dismiss | join | feedback
	GET  /profile
	POST /profile/refresh
	GET  /users/similar?limit=
	GET  /users/{id}/compatibility
	POST /admin/generate
	POST /admin/refresh?hours=
	GET  /admin/analytics?since=&until=          (RFC 3339)
	GET  /health/live, /health/ready

Prometheus metrics are served unauthenticated at /metrics.

# Responses

Every response uses the models.APIResponse envelope, encoded with
goccy/go-json:

	{"status": "error", "data": null,
	 "metadata": {"timestamp": "..."},
	 "error": {"code": "NOT_FOUND", "message": "..."}}

Errors are mapped by sentinel:

	recommend.ErrNotFound         404 NOT_FOUND
	recommend.ErrInvalidInput     400 VALIDATION_ERROR
	recommend.ErrForbidden        403 FORBIDDEN
	recommend.ErrBatchInProgress  409 CONFLICT
	gobreaker open / half-open    503 SERVICE_UNAVAILABLE
	auth failures                 401 AUTHENTICATION_ERROR
	anything else                 500 INTERNAL_ERROR

Validation failures from internal/validation carry per-field details.
*/
package api
