package sg

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/sg/internal/ctxbook"
	"github.com/gogpu/sg/internal/shader"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with traversals on any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for sg and all its sub-packages.
// By default, sg produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by sg:
//   - [slog.LevelDebug]: cache hits, misses and rebuilds, dropped writes
//   - [slog.LevelInfo]: lifecycle events (context book created or destroyed)
//   - [slog.LevelWarn]: non-fatal issues (shader compile failure, texture fallback)
//   - [slog.LevelError]: traversal contract violations, logged before the panic
//
// Example:
//
//	sg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	ctxbook.SetLogger(l)
	shader.SetLogger(l)
}

// Logger returns the current logger used by sg.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
