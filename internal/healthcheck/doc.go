// Package healthcheck implements periodic health probing of the gateway's
// upstream echo servers. Any 2xx answer on the base path counts as healthy.
package healthcheck
