package jsearch

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// metricsTransport wraps an http.RoundTripper to collect metrics on job search API calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a transport wrapper that records call counts,
// latency, errors and the provider's quota headers.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper, wrapping the base transport with metrics collection
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeRoute(req.URL.Path)
	statusCode := 0

	if resp != nil {
		statusCode = resp.StatusCode
		trackQuotaHeaders(resp)

		if statusCode == http.StatusTooManyRequests {
			metrics.JobSearchRateLimitHits.Inc()
		}
	}

	metrics.JobSearchAPICalls.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	metrics.JobSearchAPIDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		metrics.JobSearchAPIErrors.WithLabelValues(route, classifyError(statusCode, err)).Inc()
	}

	return resp, err
}

// trackQuotaHeaders records RapidAPI's per-key request quota
func trackQuotaHeaders(resp *http.Response) {
	if remaining := resp.Header.Get("X-RateLimit-Requests-Remaining"); remaining != "" {
		if r, err := strconv.Atoi(remaining); err == nil {
			metrics.JobSearchQuotaRemaining.Set(float64(r))
		}
	}

	if limit := resp.Header.Get("X-RateLimit-Requests-Limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			metrics.JobSearchQuotaLimit.Set(float64(l))
		}
	}
}

// normalizeRoute keeps the first path segment so unexpected paths can't blow up label cardinality
func normalizeRoute(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}

// classifyError categorizes job search API errors for metrics
func classifyError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "TLS"):
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
