// Package log is a thin convenience wrapper around log/slog: every other
// package in this module accepts a *slog.Logger directly and falls back to
// slog.Default() when nil, so this package only exists to build the one
// the server process actually installs as that default.
package log

import (
	"log/slog"
	"os"
)

// Options configures New.
type Options struct {
	// Level is the minimum level logged. Defaults to slog.LevelInfo.
	Level slog.Level
	// JSON selects slog.NewJSONHandler over slog.NewTextHandler.
	JSON bool
}

// New builds a *slog.Logger writing to stderr per opts.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		h = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(h)
}

// WithConn returns a logger with the connection's remote address attached,
// the attribute every per-connection log line in this module carries.
func WithConn(base *slog.Logger, remote string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("remote", remote)
}
