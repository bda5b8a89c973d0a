package main

import (
	"net/http"

	"github.com/angeloszaimis/echo-gateway/config"
	"github.com/angeloszaimis/echo-gateway/internal/handler"
	"github.com/angeloszaimis/echo-gateway/internal/metrics"
)

func setupRouter(gatewayHandler *handler.GatewayHandler, collector *metrics.Collector, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", gatewayHandler.ServeHTTP)
	if cfg.Metrics.Enabled && collector != nil {
		mux.HandleFunc(cfg.Metrics.Endpoint, collector.Handler(cfg.Strategy.Type))
	}

	return mux
}
