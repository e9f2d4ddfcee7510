// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package authz guards the Reelmatch admin routes with Casbin RBAC.
//
// Subjects are roles from the bearer token's role claim. A token without a
// role is evaluated as DefaultRole.
//
//	Request -> auth.Middleware -> authz.Middleware -> Handler
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// The embedded policy grants admin every action under /api/v1/admin/*.
// Setting ADMIN_ROLE to another name adds a grouping rule mapping it onto
// admin. CASBIN_POLICY_PATH replaces the embedded policy with a file.
package authz
