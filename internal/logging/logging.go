package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options control the logger built by Setup.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is text or json. Empty means json when ENV=production, text otherwise.
	Format string
	// Writer defaults to stderr.
	Writer io.Writer
}

// Setup configures and returns a structured logger
func Setup(opt Options) (*slog.Logger, error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opt.Format))
	if format == "" {
		format = "text"
		if os.Getenv("ENV") == "production" {
			format = "json"
		}
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opt.Format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
