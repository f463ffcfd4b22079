// Package cli implements the witview command-line interface.
//
// The commands load a diagram, from a file argument or from the configured
// store, and drive a view mode coordinator over it:
//   - transform: write one view of a diagram as JSON, DOT, SVG, Mermaid, PDF or PNG
//   - views: list the view modes and which apply to a diagram
//   - browse: switch views interactively
//   - serve: expose the coordinator over HTTP
//   - diagram: show, replace or clear the stored diagram
//   - cache: inspect and clear the projection cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it the
// config file's log_level applies. Loggers are passed through context.Context
// so helpers can report progress without holding the CLI.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Projected uml view (3ms)".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// switchLogger reports coordinator switches at debug level.
type switchLogger struct {
	logger *log.Logger
}

func (s switchLogger) OnSwitchQueued(_ context.Context, target string) {
	s.logger.Debug("switch queued", "target", target)
}

func (s switchLogger) OnSwitch(_ context.Context, from, to string, d time.Duration, err error) {
	if err != nil {
		s.logger.Debug("switch failed", "from", from, "to", to, "error", err)
		return
	}
	s.logger.Debug("switched", "from", from, "to", to, "took", d.Round(time.Microsecond))
}
