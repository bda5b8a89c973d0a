package strategy

import (
	"github.com/angeloszaimis/echo-gateway/internal/backend"
)

// Strategy selects the upstream for the next request from a pre-filtered
// list of healthy backends. Implementations must be safe for concurrent use.
type Strategy interface {
	Select(backends []*backend.Backend) *backend.Backend
}
