// Package backend models the upstream echo servers the gateway proxies to.
// It provides connection tracking, response time monitoring, and HTTP
// request forwarding via httputil.ReverseProxy.
package backend
