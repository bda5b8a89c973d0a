// Package handler implements the main HTTP request handler for the gateway.
// It coordinates rate limiting, upstream selection, circuit breaking, and
// proxying to the echo backends.
package handler
