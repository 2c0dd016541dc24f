package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig describes the process logger.
type LogConfig struct {
	Output      io.Writer // os.Stdout when nil
	Level       string    // debug, info, warn or error
	Format      string    // json or text
	Service     string
	Version     string
	Environment string
}

// InitLogger builds the process logger, installs it as the slog default and
// returns it. Service, Version and Environment become attributes on every
// record when set. Debug logging also records the source position.
func InitLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		handler = slog.NewJSONHandler(out, opts)
	}

	var attrs []slog.Attr
	for _, a := range []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Environment),
	} {
		if a.Value.String() != "" {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to slog.Level; anything unknown is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
