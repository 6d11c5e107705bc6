package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Token cache metrics
var (
	// TokenCacheLookups tracks where Token() answers came from: memory, store or none
	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_token_cache_lookups_total",
			Help: "Token cache lookups by the source that answered them",
		},
		[]string{"source"},
	)

	// TokenStoreOperations tracks persistent store calls made by the token cache
	TokenStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_token_store_operations_total",
			Help: "Persistent token store operations by store, operation, and result",
		},
		[]string{"store", "operation", "result"},
	)
)

// Novel API client metrics
var (
	// APICalls tracks outgoing Novel API requests
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_api_calls_total",
			Help: "Total Novel API calls by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	// APIDuration tracks Novel API call latency
	APIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "novel_api_duration_ms",
			Help:                            "Novel API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// APIErrors tracks failed Novel API calls by error type
	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_api_errors_total",
			Help: "Novel API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// APIRateLimitHits tracks 429 responses from the Novel API
	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_api_ratelimit_hits_total",
			Help: "Number of rate limit (429) responses from the Novel API",
		},
		[]string{"route"},
	)
)

// Web front end metrics
var (
	// HTTPRequests tracks requests served by novel-web
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novel_web_http_requests_total",
			Help: "Total HTTP requests served by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks novel-web request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "novel_web_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)

	// HTTPActiveRequests tracks in-flight novel-web requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "novel_web_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
