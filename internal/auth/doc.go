// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package auth verifies the bearer tokens presented to the Reelmatch API.

Tokens are HMAC-signed JWTs. The subject claim holds the caller's numeric
user id and the optional role claim feeds authorization:

	{"sub": "42", "role": "admin", "exp": 1767225600, "iss": "reelmatch"}

When an issuer is configured, tokens from any other issuer are rejected.
Tokens without an expiry are rejected.

# Usage

	manager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return err
	}
	mw := auth.NewMiddleware(manager, api.WriteAuthError, logger)
	r.Use(mw.Authenticate)

Handlers read the caller with SubjectFromContext. The middleware also stores
the user id for logging.Ctx so request logs carry user_id.
*/
package auth
