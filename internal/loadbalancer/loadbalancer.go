package loadbalancer

import (
	"fmt"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
	"github.com/angeloszaimis/echo-gateway/internal/strategy"
)

// LoadBalancer filters unhealthy upstreams and delegates selection to the
// configured strategy, reserving a connection slot on the chosen backend.
type LoadBalancer struct {
	strategy strategy.Strategy
}

func New(strategy strategy.Strategy) *LoadBalancer {
	return &LoadBalancer{strategy: strategy}
}

// Acquire picks a healthy backend and increments its connection count.
// The caller must Release the backend once the request completes.
func (lb *LoadBalancer) Acquire(backends []*backend.Backend) (*backend.Backend, error) {
	healthy := filterHealthy(backends)
	if len(healthy) == 0 {
		return nil, fmt.Errorf("no healthy backends")
	}

	chosen := lb.strategy.Select(healthy)
	if chosen == nil {
		return nil, fmt.Errorf("strategy returned nil backend")
	}

	chosen.Acquire()
	return chosen, nil
}

// Strategy returns the selection strategy in use.
func (lb *LoadBalancer) Strategy() strategy.Strategy {
	return lb.strategy
}

func filterHealthy(backends []*backend.Backend) []*backend.Backend {
	healthy := make([]*backend.Backend, 0, len(backends))
	for _, b := range backends {
		if b.IsHealthy() {
			healthy = append(healthy, b)
		}
	}
	return healthy
}
