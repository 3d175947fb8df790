// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/example/cts/internal/config"
)

// New builds a logger writing to w. Debug enables the SQL trace lines.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Setup installs the logger from cfg as the slog default.
func Setup(w io.Writer, cfg config.LogConfig) *slog.Logger {
	logger := New(w, cfg)
	slog.SetDefault(logger)
	return logger
}
