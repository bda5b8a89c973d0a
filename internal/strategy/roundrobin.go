package strategy

import (
	"sync/atomic"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
)

type roundRobin struct {
	next atomic.Uint64
}

// NewRoundRobin cycles through the backends in order, one per request.
func NewRoundRobin() Strategy {
	return &roundRobin{}
}

func (rr *roundRobin) Select(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	n := rr.next.Add(1)
	return backends[(n-1)%uint64(len(backends))]
}
