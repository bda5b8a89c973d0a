package backend

import (
	"net/http/httputil"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

const ewmaAlpha = 0.2

// Backend represents one upstream echo server behind the gateway, with
// health status, active connection tracking, and response time monitoring.
type Backend struct {
	url     *url.URL
	proxy   *httputil.ReverseProxy
	healthy atomic.Bool
	active  atomic.Int64

	mu      sync.Mutex
	ewma    time.Duration
	hasEWMA bool
}

// New creates a Backend for the given URL. The backend starts healthy;
// the health checker flips it if the first probe fails.
func New(url *url.URL) *Backend {
	b := &Backend{
		url:   url,
		proxy: httputil.NewSingleHostReverseProxy(url),
	}
	b.healthy.Store(true)
	return b
}

// URL returns the upstream server URL.
func (b *Backend) URL() *url.URL {
	return b.url
}

// ReverseProxy returns the HTTP reverse proxy for this backend.
func (b *Backend) ReverseProxy() *httputil.ReverseProxy {
	return b.proxy
}

// IsHealthy reports whether the backend is currently healthy.
func (b *Backend) IsHealthy() bool {
	return b.healthy.Load()
}

// SetHealthy updates the health status and reports whether it changed.
func (b *Backend) SetHealthy(healthy bool) (changed bool) {
	return b.healthy.CompareAndSwap(!healthy, healthy)
}

// Acquire increments the active connection count.
func (b *Backend) Acquire() {
	b.active.Add(1)
}

// Release decrements the active connection count, never below zero.
func (b *Backend) Release() {
	for {
		n := b.active.Load()
		if n == 0 {
			return
		}
		if b.active.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// ActiveConnections returns the current number of in-flight requests.
func (b *Backend) ActiveConnections() int {
	return int(b.active.Load())
}

// RecordResponse folds the latest request duration into the exponentially
// weighted moving average response time.
func (b *Backend) RecordResponse(duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasEWMA {
		b.ewma = duration
		b.hasEWMA = true
		return
	}
	b.ewma = time.Duration((1-ewmaAlpha)*float64(b.ewma) + ewmaAlpha*float64(duration))
}

// EWMATime returns the moving average response time, or 0 before the
// first recorded response.
func (b *Backend) EWMATime() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasEWMA {
		return 0
	}
	return b.ewma
}
