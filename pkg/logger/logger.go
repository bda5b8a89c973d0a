package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide logger. Every line carries the environment
// and, when component is non-empty, the name of the process emitting it
// (gateway, backend1, backend2).
func New(lvl string, addSource bool, environment, component string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(lvl),
		AddSource: addSource,
	}

	var handler slog.Handler
	if strings.ToLower(environment) == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With(slog.String("environment", environment))
	if component != "" {
		log = log.With(slog.String("component", component))
	}

	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
