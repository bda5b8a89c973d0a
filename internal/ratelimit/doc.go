// Package ratelimit implements per-client request limiting for the gateway
// using golang.org/x/time/rate token buckets. Clients over budget receive
// 429 Too Many Requests. Idle clients are swept periodically so the
// per-client map stays bounded.
package ratelimit
