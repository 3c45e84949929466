// Package logging builds the slog loggers used across declmeta.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mvp-joe/declmeta/internal/config"
)

// New creates a logger writing to w at the given level ("debug", "info",
// "warn", "error") in the given format ("text" or "json").
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFromString(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FromConfig creates a logger from the log section of cfg. Quiet suppresses
// everything below errors.
func FromConfig(w io.Writer, cfg config.LogConfig, quiet bool) *slog.Logger {
	level := cfg.Level
	if quiet {
		level = "error"
	}
	return New(w, level, cfg.Format)
}

// Discard returns a logger that drops all output.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromString converts a string to a slog.Level. Unrecognized strings
// map to info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
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
