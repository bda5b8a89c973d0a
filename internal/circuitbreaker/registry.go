package circuitbreaker

import (
	"sync"
	"time"
)

// Registry lazily creates one breaker per upstream URL, all sharing the
// same threshold and reset timeout.
type Registry struct {
	mu        sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) Get(upstreamURL string) *CircuitBreaker {
	r.mu.RLock()
	cb, exists := r.breakers[upstreamURL]
	r.mu.RUnlock()

	if exists {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[upstreamURL]; exists {
		return cb
	}

	cb = New(r.threshold, r.timeout)
	r.breakers[upstreamURL] = cb
	return cb
}

// States returns the current state of every known breaker.
func (r *Registry) States() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]State, len(r.breakers))
	for url, cb := range r.breakers {
		states[url] = cb.State()
	}
	return states
}
