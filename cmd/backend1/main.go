// Backend1 is the first of the two echo test fixtures. It listens on
// 127.0.0.1:8000 and answers GET and POST on any path with its identity
// JSON. Run it next to backend2 to exercise the gateway.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/echo-gateway/config"
	"github.com/angeloszaimis/echo-gateway/internal/echo"
	"github.com/angeloszaimis/echo-gateway/internal/httpserver"
	"github.com/angeloszaimis/echo-gateway/pkg/logger"
)

const fixtureName = "backend1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	fixture, err := cfg.Fixture(fixtureName)
	if err != nil {
		slog.Error("fixture not configured", slog.Any("err", err))
		os.Exit(1)
	}
	if fixture.DisplayName == "" {
		fixture.DisplayName = fixture.Name
	}

	log := logger.New(cfg.Logging.Level, false, cfg.Server.Environment, fixtureName).
		With(slog.Int("port", fixture.Port))

	identity := echo.Identity{
		Name:        fixture.Name,
		DisplayName: fixture.DisplayName,
		Host:        fixture.Host,
		Port:        fixture.Port,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := httpserver.New(identity.Addr(), echo.NewHandler(identity, log))
	if err != nil {
		log.Error("failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("fixture running", slog.String("url", "http://"+identity.Addr()))

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
			log.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
