package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// apiMetricsTransport wraps an http.RoundTripper to collect metrics on Novel API calls
type apiMetricsTransport struct {
	base http.RoundTripper
}

// NewAPIMetricsTransport creates a transport wrapper that collects metrics for
// every Novel API call made through it.
func NewAPIMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &apiMetricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper, wrapping the base transport with metrics collection
func (t *apiMetricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isAPIRequest(req) {
		return t.base.RoundTrip(req)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := NormalizeAPIRoute(req.URL.Path)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
		if statusCode == http.StatusTooManyRequests {
			APIRateLimitHits.WithLabelValues(route).Inc()
		}
	}

	APICalls.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	APIDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		APIErrors.WithLabelValues(route, classifyAPIError(statusCode, err)).Inc()
	}

	return resp, err
}

// isAPIRequest checks if the request targets the Novel REST API
func isAPIRequest(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/")
}

var routePatterns = []struct {
	regex   *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`/stories/\d+`), "/stories/:id"},
	{regexp.MustCompile(`/chapters/\d+`), "/chapters/:id"},
	{regexp.MustCompile(`/genres/\d+`), "/genres/:id"},
	{regexp.MustCompile(`/genres/name/[^/]+`), "/genres/name/:name"},
	{regexp.MustCompile(`/favorites/\d+`), "/favorites/:id"},
	{regexp.MustCompile(`/favorites/(check|count)/\d+`), "/favorites/$1/:id"},
	{regexp.MustCompile(`/comments/\d+`), "/comments/:id"},
	{regexp.MustCompile(`/users/\d+`), "/users/:id"},
}

// NormalizeAPIRoute replaces numeric IDs in a Novel API path with placeholders
// to keep metric label cardinality bounded.
func NormalizeAPIRoute(path string) string {
	normalized := path
	for _, p := range routePatterns {
		normalized = p.regex.ReplaceAllString(normalized, p.replace)
	}
	return normalized
}

// classifyAPIError categorizes Novel API errors for metrics
func classifyAPIError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "TLS") || strings.Contains(errStr, "tls"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}
