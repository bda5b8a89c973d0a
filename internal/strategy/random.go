package strategy

import (
	"math/rand"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
)

type random struct{}

// NewRandom picks a backend uniformly at random.
func NewRandom() Strategy {
	return &random{}
}

func (random) Select(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	return backends[rand.Intn(len(backends))]
}
