package testutil

import (
	"io"
	"log/slog"
)

// QuietLogger returns a logger that only emits warnings and above,
// keeping test output readable.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
