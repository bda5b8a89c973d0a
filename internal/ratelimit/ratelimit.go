package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerClient enforces a request budget per client key (the gateway keys by
// client IP). Each client gets its own token bucket refilled at
// maxRequests per window, with a burst of maxRequests.
type PerClient struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	window  time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewPerClient(maxRequests int, window time.Duration) *PerClient {
	return &PerClient{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:   maxRequests,
		window:  window,
	}
}

// Allow reports whether the given client may proceed, consuming one token.
func (p *PerClient) Allow(client string) bool {
	p.mu.Lock()
	cl, ok := p.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	p.mu.Unlock()

	return cl.limiter.Allow()
}

// Sweep drops clients that have been idle for at least maxIdle and returns
// how many were evicted. A bucket idle for a full window has refilled to its
// burst, so evicting it is indistinguishable from a fresh limiter.
func (p *PerClient) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	p.mu.Lock()
	defer p.mu.Unlock()

	evicted := 0
	for client, cl := range p.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(p.clients, client)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle clients once per window until the context is cancelled.
func (p *PerClient) Run(ctx context.Context) {
	ticker := time.NewTicker(p.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(p.window)
		}
	}
}

// Clients returns the number of distinct clients currently tracked.
func (p *PerClient) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}
