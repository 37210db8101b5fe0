// Package metrics provides the centralized Prometheus registry reference for
// the profilesync client. All metrics are defined in their respective packages
// (client, cache, ratelimit, pagination, batch) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - adapi_requests_remaining (Gauge): Requests remaining in the current quota window
//   - adapi_rate_limit_blocks_total (Counter): Requests blocked due to critical quota
//   - adapi_rate_limit_throttles_total (Counter): Requests throttled due to low quota
//
// Cache Metrics (pkg/cache):
//   - adapi_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - adapi_cache_misses_total (Counter): Cache misses
//   - adapi_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - adapi_304_responses_total (Counter): 304 Not Modified responses
//   - adapi_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - adapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - adapi_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - adapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - adapi_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - adapi_retries_total{error_class} (Counter): Retry attempts by error class
//   - adapi_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - adapi_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - adapi_pages_fetched_total (Counter): List pages fetched
//   - adapi_pagination_truncations_total (Counter): Fetches truncated by the page cap
//
// Batch Metrics (pkg/batch):
//   - adapi_patch_records_total{outcome} (Counter): Patched records by outcome
//   - adapi_patch_batch_duration_seconds (Histogram): Whole-batch patch duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(adapi_cache_hits_total[5m])) /
//   (sum(rate(adapi_cache_hits_total[5m])) + sum(rate(adapi_cache_misses_total[5m])))
//
//   # Quota Status
//   adapi_requests_remaining < 20
//
//   # Patch Failure Rate
//   rate(adapi_patch_records_total{outcome="failure"}[5m]) /
//   rate(adapi_patch_records_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(adapi_request_duration_seconds_bucket[5m]))
