// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main is the entry point for the Reelmatch server.
//
// Reelmatch learns per-user viewing preferences from interaction history,
// scores compatibility between users, and serves personalized content and
// group recommendations over an authenticated REST API.
//
// # Commands
//
//	reelmatch serve             run the API, event consumers and batch schedules
//	reelmatch generate          regenerate recommendations for every eligible user
//	reelmatch refresh --hours   regenerate for recently active users
//	reelmatch cleanup           delete expired recommendations
//	reelmatch report            print engagement analytics for a window
//	reelmatch token             mint a bearer token (development)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (JWT_SECRET, DUCKDB_PATH, EVENTS_TRANSPORT, ...)
//   - Config file (--config, CONFIG_PATH, or config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down on SIGINT and SIGTERM: the supervisor cancels every
// service, the HTTP server drains in-flight requests within
// SHUTDOWN_TIMEOUT, and the stores are closed last.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
