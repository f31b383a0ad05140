package testhelpers

import (
	"github.com/myrjola/whodunit/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a new logger with the given log sink such as io.Discard.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

// DiscardLogger is a debug-level logger that drops everything. Most unit tests only need a logger to satisfy a
// constructor.
func DiscardLogger() *slog.Logger {
	return NewLogger(io.Discard)
}
