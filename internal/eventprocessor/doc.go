// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package eventprocessor carries Reelmatch domain events over Watermill.

# Topics

	reelmatch.profile.updated     a preference profile was recomputed
	reelmatch.feedback.recorded   a feedback entry was saved
	reelmatch.batch.completed     a generation batch finished

Payloads are JSON (goccy/go-json) with a schema_version field. Message
metadata carries event_type and, where relevant, user_id.

# Transports

	gochannel  in-process pub/sub, the default for single-instance deployments
	nats       core NATS through watermill-nats, for multi-instance deployments

With NATS, subscribers join a queue group so each event is handled once
per deployment.

# Flow

Publisher implements preference.ProfileObserver and engine.FeedbackObserver
and also reports batch summaries. Publishing is guarded by a circuit
breaker; failures are logged and never fail the triggering operation.

The Router runs the cache invalidation handlers:

	profile.updated  -> drop that user's cached similar-user lists
	batch.completed  -> drop the cached trending pool

Handlers run behind Watermill's Recoverer and Retry middleware. A message
that still fails is logged and acked so one bad payload cannot stall a
topic.
*/
package eventprocessor
