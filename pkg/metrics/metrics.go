// Package metrics documents the Prometheus metrics exposed by the REST
// client. All metrics are defined in their respective packages (client,
// ratelimit, pagination, stream) via promauto to keep ownership local and
// avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client. Metrics
// register themselves automatically via promauto in their owning packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Reference
//
// Request metrics (pkg/client):
//   - restclient_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//   - restclient_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - restclient_errors_total{class} (Counter): failures by class (client, server, rate_limit, network, timeout)
//
// Retry metrics (pkg/client):
//   - restclient_retries_total{error_class} (Counter): retry attempts by error class
//   - restclient_retry_backoff_seconds{error_class} (Histogram): backoff duration by error class
//   - restclient_retry_exhausted_total{error_class} (Counter): requests that spent the retry budget
//
// Pacing metrics (pkg/ratelimit):
//   - restclient_throttle_waits_total (Counter): requests delayed by the pacer
//   - restclient_throttle_wait_seconds (Histogram): pacer wait durations
//
// Pagination metrics (pkg/pagination):
//   - restclient_pages_fetched_total (Counter): pages fetched by cursors
//
// Stream metrics (pkg/stream):
//   - restclient_stream_chunks_total (Counter): chunks yielded
//   - restclient_stream_bytes_total (Counter): bytes yielded
//
// Example Prometheus queries:
//
//   # Retry rate
//   rate(restclient_retries_total[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(restclient_request_duration_seconds_bucket[5m]))
//
//   # Share of requests delayed by pacing
//   rate(restclient_throttle_waits_total[5m]) / rate(restclient_requests_total[5m])
