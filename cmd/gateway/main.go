package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/echo-gateway/config"
	"github.com/angeloszaimis/echo-gateway/internal/backend"
	"github.com/angeloszaimis/echo-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/echo-gateway/internal/handler"
	"github.com/angeloszaimis/echo-gateway/internal/healthcheck"
	"github.com/angeloszaimis/echo-gateway/internal/httpserver"
	"github.com/angeloszaimis/echo-gateway/internal/loadbalancer"
	"github.com/angeloszaimis/echo-gateway/internal/metrics"
	"github.com/angeloszaimis/echo-gateway/internal/ratelimit"
	"github.com/angeloszaimis/echo-gateway/internal/strategy"
	"github.com/angeloszaimis/echo-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment, "gateway")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(1024, log)
		collector.Start(ctx)
	}

	upstreams, err := initializeUpstreams(ctx, cfg, log, collector)
	if err != nil {
		log.Error("failed to initialize upstreams", slog.Any("err", err))
		os.Exit(1)
	}

	lb := loadbalancer.New(createStrategy(log, cfg.Strategy.Type))

	var limiter *ratelimit.PerClient
	if cfg.RateLimit.Enabled {
		window, err := time.ParseDuration(cfg.RateLimit.Window)
		if err != nil {
			log.Error("invalid rate limit window", slog.Any("err", err))
			os.Exit(1)
		}
		limiter = ratelimit.NewPerClient(cfg.RateLimit.MaxRequests, window)
		go limiter.Run(ctx)
	}

	resetTimeout, err := time.ParseDuration(cfg.CircuitBreaker.ResetTimeout)
	if err != nil {
		log.Error("invalid circuit breaker reset timeout", slog.Any("err", err))
		os.Exit(1)
	}
	breakers := circuitbreaker.NewRegistry(cfg.CircuitBreaker.FailureThreshold, resetTimeout)

	gatewayHandler := handler.New(log, lb, upstreams, limiter, breakers, collector, len(upstreams))

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(gatewayHandler, collector, cfg))
	if err != nil {
		log.Error("failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("gateway running",
		slog.String("address", cfg.Server.Address),
		slog.String("strategy", cfg.Strategy.Type),
		slog.Int("upstreams", len(upstreams)))

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeUpstreams(ctx context.Context, cfg *config.Config, log *slog.Logger, collector *metrics.Collector) ([]*backend.Backend, error) {
	interval, err := time.ParseDuration(cfg.HealthCheck.Interval)
	if err != nil {
		return nil, err
	}

	var notify func(string, bool)
	if collector != nil {
		notify = func(upstreamURL string, healthy bool) {
			select {
			case collector.EventChannel() <- metrics.MetricEvent{
				Type:      metrics.EventHealthChanged,
				Timestamp: time.Now(),
				Upstream:  upstreamURL,
				Healthy:   healthy,
			}:
			default:
			}
		}
	}

	var upstreams []*backend.Backend

	for _, upstream := range cfg.Upstreams {
		u, err := url.Parse(upstream.URL)
		if err != nil {
			log.Error("failed to parse upstream URL",
				slog.String("url", upstream.URL),
				slog.String("error", err.Error()))
			continue
		}

		b := backend.New(u)
		upstreams = append(upstreams, b)
		go healthcheck.Watch(ctx, b, interval, log, notify)
	}

	if len(upstreams) == 0 {
		return nil, fmt.Errorf("no valid upstreams configured")
	}

	return upstreams, nil
}

func createStrategy(log *slog.Logger, strategyType string) strategy.Strategy {
	switch strategyType {
	case config.StrategyRoundRobin:
		return strategy.NewRoundRobin()
	case config.StrategyRandom:
		return strategy.NewRandom()
	default:
		log.Warn("unknown strategy, defaulting to round-robin", slog.String("requested", strategyType))
		return strategy.NewRoundRobin()
	}
}
