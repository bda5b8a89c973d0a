// Package metrics provides real-time metrics collection for the gateway.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Request counts and selection frequencies per upstream
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution
//   - Rate-limited rejection counts
//   - Upstream health transitions
//
// The collector runs in a dedicated goroutine; events are sent via a
// buffered channel with non-blocking semantics so the proxy path never
// waits on bookkeeping. The snapshot is exposed as JSON on the configured
// metrics endpoint.
package metrics
