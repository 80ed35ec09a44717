package platform

import (
	"fmt"
	"log/slog"
	"os"
)

// parseLogLevel maps a config level name onto a slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", level)
	}
}

// setupLogging installs the configured handler as the process-wide
// default logger. Packages throughout the runtime log through slog's
// default logger.
func setupLogging(cfg LoggingConfig) error {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json", "":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
