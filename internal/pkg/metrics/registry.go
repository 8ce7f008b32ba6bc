package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "jobfinder_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBRowsAffected tracks rows affected by write operations
	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "jobfinder_db_rows_affected",
			Help:                            "Number of rows affected by database write operations",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// Cache Metrics
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_cache_hits_total",
			Help: "Total cache hits by cache name",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_cache_misses_total",
			Help: "Total cache misses by cache name",
		},
		[]string{"cache_name"},
	)
)

// HTTP Handler Metrics
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "jobfinder_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks in-flight HTTP requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfinder_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// Job search API Metrics
var (
	JobSearchAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_jobsearch_api_calls_total",
			Help: "Total job search API calls by method, route, and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	JobSearchAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "jobfinder_jobsearch_api_duration_ms",
			Help:                            "Job search API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	JobSearchAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_jobsearch_api_errors_total",
			Help: "Total job search API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// JobSearchQuotaRemaining mirrors the provider's X-RateLimit-Requests-Remaining header
	JobSearchQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfinder_jobsearch_quota_remaining",
			Help: "Remaining job search API requests in the current billing window",
		},
	)

	JobSearchQuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfinder_jobsearch_quota_limit",
			Help: "Job search API request limit for the current billing window",
		},
	)

	JobSearchRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobfinder_jobsearch_ratelimit_hits_total",
			Help: "Total job search API 429 responses",
		},
	)
)

// Session resolution Metrics
var (
	// SessionTransitions counts resolver state changes by target state
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_session_transitions_total",
			Help: "Total session state transitions by resulting state",
		},
		[]string{"state"},
	)

	// SessionStaleResults counts profile checks whose result arrived after a newer identity
	SessionStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobfinder_session_stale_results_total",
			Help: "Profile existence results discarded because a newer identity was observed",
		},
	)

	// SessionCheckDuration tracks profile existence check latency
	SessionCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "jobfinder_session_profile_check_duration_ms",
			Help:                            "Profile existence check duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"outcome"},
	)

	// SessionErrors counts errors surfaced to the observability sink
	SessionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_session_errors_total",
			Help: "Errors reported by the session resolver by context",
		},
		[]string{"context"},
	)
)

// Business Metrics
var (
	AccountsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobfinder_accounts_registered_total",
			Help: "Total accounts registered",
		},
	)

	ProfilesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobfinder_profiles_saved_total",
			Help: "Total profile saves",
		},
	)

	BookmarkToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_bookmark_toggles_total",
			Help: "Total bookmark toggles by resulting state",
		},
		[]string{"result"},
	)
)
