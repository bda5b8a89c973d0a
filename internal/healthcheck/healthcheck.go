package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
)

// Watch periodically probes one upstream with a GET to its base URL and
// updates its health status. The echo fixtures answer every path with
// 200, so no dedicated health route is needed (or allowed; a reserved
// path would break the echo contract).
//
// notify, if non-nil, is invoked on every health transition.
func Watch(
	ctx context.Context,
	upstream *backend.Backend,
	interval time.Duration,
	logger *slog.Logger,
	notify func(upstreamURL string, healthy bool),
) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("health check stopped",
				slog.String("upstream", upstream.URL().String()))
			return

		case <-ticker.C:
			probe(ctx, client, upstream, logger, notify)
		}
	}
}

func probe(
	ctx context.Context,
	client *http.Client,
	upstream *backend.Backend,
	logger *slog.Logger,
	notify func(string, bool),
) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, upstream.URL().String(), nil)
	if err != nil {
		return
	}

	res, err := client.Do(req)
	if err != nil {
		markHealth(upstream, false, logger, notify)
		return
	}
	defer res.Body.Close()

	healthy := res.StatusCode >= 200 && res.StatusCode < 300
	markHealth(upstream, healthy, logger, notify)
}

func markHealth(upstream *backend.Backend, healthy bool, logger *slog.Logger, notify func(string, bool)) {
	if !upstream.SetHealthy(healthy) {
		return
	}

	if healthy {
		logger.Info("upstream is back up",
			slog.String("upstream", upstream.URL().String()))
	} else {
		logger.Warn("upstream is down",
			slog.String("upstream", upstream.URL().String()))
	}

	if notify != nil {
		notify(upstream.URL().String(), healthy)
	}
}
