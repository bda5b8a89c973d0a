// Package circuitbreaker implements the circuit breaker pattern for the
// gateway's upstreams.
//
// A breaker prevents hammering a failing upstream. It has three states:
//
//   - CLOSED: normal operation, requests pass through
//   - OPEN: upstream failing, requests blocked
//   - HALF-OPEN: testing whether the upstream recovered
//
// The gateway handler consults the per-upstream breaker before proxying
// and records the outcome afterwards.
package circuitbreaker
