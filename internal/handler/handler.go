package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
	"github.com/angeloszaimis/echo-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/echo-gateway/internal/loadbalancer"
	"github.com/angeloszaimis/echo-gateway/internal/metrics"
	"github.com/angeloszaimis/echo-gateway/internal/ratelimit"
)

// GatewayHandler is the gateway's request path: rate limit the client,
// pick a healthy upstream whose breaker allows traffic, proxy, record.
type GatewayHandler struct {
	logger     *slog.Logger
	balancer   *loadbalancer.LoadBalancer
	upstreams  []*backend.Backend
	limiter    *ratelimit.PerClient
	breakers   *circuitbreaker.Registry
	collector  *metrics.Collector
	maxRetries int
}

// New wires the gateway handler. limiter, breakers, and collector may be
// nil, disabling the corresponding step.
func New(
	logger *slog.Logger,
	balancer *loadbalancer.LoadBalancer,
	upstreams []*backend.Backend,
	limiter *ratelimit.PerClient,
	breakers *circuitbreaker.Registry,
	collector *metrics.Collector,
	maxRetries int,
) *GatewayHandler {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &GatewayHandler{
		logger:     logger,
		balancer:   balancer,
		upstreams:  upstreams,
		limiter:    limiter,
		breakers:   breakers,
		collector:  collector,
		maxRetries: maxRetries,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (gw *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)

	gw.logger.Info("received request",
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("host", r.Host))

	if gw.limiter != nil && !gw.limiter.Allow(clientIP) {
		gw.logger.Warn("client over rate limit", slog.String("client", clientIP))
		gw.emit(metrics.MetricEvent{
			Type:      metrics.EventRequestRejected,
			Timestamp: time.Now(),
		})
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	for attempt := 0; attempt < gw.maxRetries; attempt++ {
		upstream, err := gw.balancer.Acquire(gw.upstreams)
		if err != nil {
			gw.logger.Warn("no healthy upstreams", slog.String("client", clientIP))
			http.Error(w, "No healthy upstream available", http.StatusServiceUnavailable)
			return
		}

		if gw.breakers != nil {
			cb := gw.breakers.Get(upstream.URL().String())
			if !cb.Allow() {
				gw.logger.Warn("circuit open, skipping upstream",
					slog.String("upstream", upstream.URL().String()))
				upstream.Release()
				continue
			}
		}

		gw.forward(w, r, upstream, clientIP)
		return
	}

	http.Error(w, "All upstreams unavailable", http.StatusServiceUnavailable)
}

func (gw *GatewayHandler) forward(w http.ResponseWriter, r *http.Request, upstream *backend.Backend, clientIP string) {
	defer upstream.Release()

	upstreamURL := upstream.URL().String()

	gw.emit(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Upstream:  upstreamURL,
	})
	gw.emit(metrics.MetricEvent{
		Type:      metrics.EventUpstreamSelected,
		Timestamp: time.Now(),
		Upstream:  upstreamURL,
	})

	gw.logger.Info("forwarding to upstream",
		slog.String("client", clientIP),
		slog.String("upstream", upstreamURL))

	w.Header().Set("X-Backend-Server", upstreamURL)

	start := time.Now()
	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	upstream.ReverseProxy().ServeHTTP(wrapped, r)
	duration := time.Since(start)

	if gw.breakers != nil {
		cb := gw.breakers.Get(upstreamURL)
		if wrapped.statusCode >= http.StatusInternalServerError {
			cb.RecordFailure()
		} else {
			cb.RecordSuccess()
		}
	}

	upstream.RecordResponse(duration)
	gw.emit(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Upstream:   upstreamURL,
		Duration:   duration,
		StatusCode: wrapped.statusCode,
	})
}

func (gw *GatewayHandler) emit(event metrics.MetricEvent) {
	if gw.collector == nil {
		return
	}

	select {
	case gw.collector.EventChannel() <- event:
	default:
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
