// Package logctx wires the structured logger shared by every cmd/
// driver: log/slog over a tint handler, colorized on a terminal.
package logctx

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds a slog.Logger writing to w. When verbose is true the level
// is Debug, otherwise Info.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h)
}

// Default builds a logger writing to stderr.
func Default(verbose bool) *slog.Logger {
	return New(os.Stderr, verbose)
}

// WithJob returns a logger annotated with the pair/predict job identity,
// used by the planner and fusion facade so every log line names its job.
func WithJob(l *slog.Logger, tag string, date int) *slog.Logger {
	return l.With("tag", tag, "date", date)
}

// WithFile returns a logger annotated with the file currently being
// read or written, matching the context the teacher attaches to I/O
// errors via fmt.Errorf("...: %w", ...).
func WithFile(l *slog.Logger, path string) *slog.Logger {
	return l.With("file", path)
}
