// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package logging provides the zerolog-based structured logging used by
// every Reelmatch component.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Int("port", cfg.Server.Port).Msg("Server starting")
//	logging.Err(err).Int64("user_id", uid).Msg("Generation failed")
//	logging.Ctx(ctx).Debug().Msg("Strategy finished")
//
// Engines do not use the global functions directly. They receive a
// zerolog.Logger at construction (logging.Logger() in production,
// zerolog.Nop() in tests) and derive a component logger:
//
//	logger = logger.With().Str("component", "scheduler").Logger()
//
// # Context Fields
//
// The API middleware stores a request id (ContextWithRequestID) and the
// authenticated user (ContextWithUserID). Ctx(ctx) adds request_id,
// correlation_id and user_id to every line when present.
//
// # Adapters
//
//   - NewSlogLogger: *slog.Logger for sutureslog
//   - NewWatermillLogger: watermill.LoggerAdapter for the event bus
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
