// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto at package
init. Components call the Record helpers directly, so no metrics object is
threaded through constructors.

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds (histogram; operation, table)
  - duckdb_query_errors_total (counter; operation, table, error_type)

API:
  - api_requests_total (counter; method, endpoint, status_code)
  - api_request_duration_seconds (histogram; method, endpoint)
  - api_active_requests (gauge)
  - api_rate_limit_hits_total (counter; endpoint)

Recommendation engine:
  - reelmatch_profile_updates_total (counter; personality)
  - reelmatch_profile_update_duration_seconds (histogram)
  - reelmatch_recommendations_generated_total (counter; type)
  - reelmatch_realtime_duration_seconds (histogram)
  - reelmatch_strategy_errors_total (counter; strategy)
  - reelmatch_state_transitions_total (counter; target, transition)
  - reelmatch_feedback_total (counter; target, polarity)
  - reelmatch_expired_recommendations_deleted_total (counter)

Batch scheduling:
  - reelmatch_batch_duration_seconds (histogram; kind)
  - reelmatch_batch_users_total (counter; kind, result)
  - reelmatch_batch_errors_total (counter; error_type)
  - reelmatch_batch_last_success_timestamp (gauge; kind)
  - reelmatch_batch_in_progress (gauge)

Infrastructure:
  - cache_hits_total, cache_misses_total, cache_invalidations_total (counter; cache)
  - circuit_breaker_state (gauge; name), circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
  - events_published_total (counter; topic), events_consumed_total (counter; topic, result),
    events_processing_duration_seconds (histogram; topic)
  - app_info (gauge; version, go_version), app_uptime_seconds (gauge)

# Example Queries

	# p95 real-time recommendation latency
	histogram_quantile(0.95, rate(reelmatch_realtime_duration_seconds_bucket[5m]))

	# compatibility cache hit ratio
	rate(cache_hits_total{cache="compatibility"}[5m]) /
	  (rate(cache_hits_total{cache="compatibility"}[5m]) + rate(cache_misses_total{cache="compatibility"}[5m]))

	# batch failure rate by error type
	sum by (error_type) (rate(reelmatch_batch_errors_total[1h]))
*/
package metrics
