// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - DuckDB repository latency and errors
// - API endpoint latency and throughput
// - Profile recalculation and recommendation generation
// - Batch scheduling
// - Cache efficiency, circuit breakers and the event bus

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of rejected bearer tokens by reason",
		},
		[]string{"reason"},
	)

	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denials_total",
			Help: "Total number of requests denied by the authorization policy",
		},
		[]string{"role"},
	)

	// Preference Profile Metrics
	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_profile_updates_total",
			Help: "Total number of preference profile recalculations",
		},
		[]string{"personality"},
	)

	ProfileUpdateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_profile_update_duration_seconds",
			Help:    "Duration of a full preference profile recalculation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Recommendation Metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommendations_generated_total",
			Help: "Total number of persisted recommendations by type",
		},
		[]string{"type"}, // PERSONAL, CONTENT_BASED, COLLABORATIVE, TRENDING, GROUP
	)

	RealTimeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_realtime_duration_seconds",
			Help:    "Duration of real-time recommendation composition",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	StrategyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_strategy_errors_total",
			Help: "Total number of generation strategy failures",
		},
		[]string{"strategy"},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_state_transitions_total",
			Help: "Total number of recommendation state transitions",
		},
		[]string{"target", "transition"}, // target: content, group
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_feedback_total",
			Help: "Total number of recommendation feedback records",
		},
		[]string{"target", "polarity"},
	)

	ExpiredRecommendationsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_expired_recommendations_deleted_total",
			Help: "Total number of expired recommendations removed",
		},
	)

	// Batch Scheduling Metrics
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_batch_duration_seconds",
			Help:    "Duration of batch generation runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"}, // full, refresh
	)

	BatchUsersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_batch_users_total",
			Help: "Total number of users processed by batch runs",
		},
		[]string{"kind", "result"}, // result: success, failure
	)

	BatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_batch_errors_total",
			Help: "Total number of per-user generation failures by type",
		},
		[]string{"error_type"},
	)

	BatchLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_batch_last_success_timestamp",
			Help: "Unix timestamp of the last completed batch run",
		},
		[]string{"kind"},
	)

	BatchInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_batch_in_progress",
			Help: "1 while a full batch run is executing",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // compatibility, similar_users, trending
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the bus",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events handled",
		},
		[]string{"topic", "result"},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "events_processing_duration_seconds",
			Help:    "Duration of event handler execution",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"topic"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAuthFailure records a rejected request by reason (missing, expired, invalid).
func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// RecordAuthzDenial records a request denied by the casbin policy.
func RecordAuthzDenial(role string) {
	AuthzDenials.WithLabelValues(role).Inc()
}

// RecordProfileUpdate records a completed profile recalculation.
func RecordProfileUpdate(personality string, duration time.Duration) {
	ProfileUpdates.WithLabelValues(personality).Inc()
	ProfileUpdateDuration.Observe(duration.Seconds())
}

// RecordRecommendationsGenerated records n persisted recommendations of one type.
func RecordRecommendationsGenerated(recType string, n int) {
	if n <= 0 {
		return
	}
	RecommendationsGenerated.WithLabelValues(recType).Add(float64(n))
}

// RecordRealTimeRequest records the latency of a real-time composition.
func RecordRealTimeRequest(duration time.Duration) {
	RealTimeDuration.Observe(duration.Seconds())
}

// RecordStrategyError records a failed generation strategy.
func RecordStrategyError(strategy string) {
	StrategyErrors.WithLabelValues(strategy).Inc()
}

// RecordStateTransition records a user-driven state change on a recommendation.
func RecordStateTransition(target, transition string) {
	StateTransitions.WithLabelValues(target, transition).Inc()
}

// RecordFeedback records a feedback record.
func RecordFeedback(target, polarity string) {
	FeedbackTotal.WithLabelValues(target, polarity).Inc()
}

// RecordExpiredCleanup records expired recommendations deleted by a cleanup pass.
func RecordExpiredCleanup(deleted int) {
	if deleted > 0 {
		ExpiredRecommendationsDeleted.Add(float64(deleted))
	}
}

// RecordBatch records the outcome of a batch generation run.
func RecordBatch(kind string, successful, failed int, duration time.Duration) {
	BatchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	BatchUsersProcessed.WithLabelValues(kind, "success").Add(float64(successful))
	BatchUsersProcessed.WithLabelValues(kind, "failure").Add(float64(failed))
	BatchLastSuccess.WithLabelValues(kind).Set(float64(time.Now().Unix()))
}

// RecordGenerationError records a classified per-user generation failure.
func RecordGenerationError(errorType string) {
	BatchErrors.WithLabelValues(errorType).Inc()
}

// SetBatchInProgress toggles the in-progress gauge.
func SetBatchInProgress(running bool) {
	if running {
		BatchInProgress.Set(1)
	} else {
		BatchInProgress.Set(0)
	}
}

// RecordCacheHit records a cache hit for the named cache.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss for the named cache.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheInvalidation records an explicit invalidation of the named cache.
func RecordCacheInvalidation(cache string) {
	CacheInvalidations.WithLabelValues(cache).Inc()
}

// RecordCircuitBreakerRequest records a call through a circuit breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the state gauge.
// state follows the gauge encoding: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordEventPublish records an event published to the bus.
func RecordEventPublish(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed records a handled event and its processing time.
func RecordEventConsumed(topic string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsConsumed.WithLabelValues(topic, result).Inc()
	EventProcessingDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
