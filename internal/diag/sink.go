// Package diag carries the renderer's diagnostic output: the progress
// reporting the orchestrator emits while a frame is in flight, and the
// structured logging every error path writes to.
package diag

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/HellmannM/deskvox/internal/raycast"
)

// nopHandler discards every record; Enabled returning false lets callers
// skip formatting entirely when logging is off.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by the renderer and its
// sub-packages. Passing nil restores the default silent logger. Safe for
// concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently configured logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Progress is called with a running count of completed pixels against the
// frame total, the same shape as the source's per-block progress counter.
// It is an alias of raycast.Progress so callbacks built here plug directly
// into raycast.Dispatch.
type Progress = raycast.Progress

// ConsoleProgress returns a Progress callback that logs a debug record
// every time the completed count crosses a whole percentage point,
// avoiding a log line per pixel.
func ConsoleProgress(logger *slog.Logger) Progress {
	var lastPct int64 = -1
	return func(done, total uint64) {
		if total == 0 {
			return
		}
		pct := int64(float64(done) / float64(total) * 100)
		if pct == atomic.LoadInt64(&lastPct) {
			return
		}
		atomic.StoreInt64(&lastPct, pct)
		logger.Debug("render progress", slog.Int64("percent", pct), slog.Uint64("done", done), slog.Uint64("total", total))
	}
}
