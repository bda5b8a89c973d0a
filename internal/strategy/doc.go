// Package strategy defines the upstream selection interface and implements
// the algorithms the gateway can be configured with:
//
//   - Round Robin: sequential distribution across backends (default)
//   - Random: uniform random backend selection
//
// Strategies receive only healthy backends; health filtering happens in
// the loadbalancer package.
package strategy
