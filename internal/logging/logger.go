package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the lousa logger on Stderr, keeping Stdout free for CLI output and
// MCP JSON-RPC.
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a text logger on w. Every record carries app=lousa and the
// "error" key is shortened to "err".
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})).With("app", "lousa")
}

// For tags logger with the component that owns it (relay, board, http, mcp).
func For(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
