package pointloc

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger and emits build and query events with consistent
// attribute names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// A nil handler logs text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines at or above level to w, or to stderr when w
// is nil.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs key=value lines at or above level to w, or to stderr
// when w is nil.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

func orStderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRadius tags subsequent events with a search radius.
func (l *Logger) WithRadius(r float64) *Logger {
	return &Logger{Logger: l.Logger.With("radius", r)}
}

// WithK tags subsequent events with a neighbour count.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// LogBuild logs the construction of a grid.
func (l *Logger) LogBuild(ctx context.Context, points, cells int, cellSize float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "grid build failed", "points", points, "error", err)
		return
	}
	l.InfoContext(ctx, "grid built",
		"points", points,
		"cells", cells,
		"cell_size", cellSize,
	)
}

// LogQuery logs a single neighbour query at debug level. Failures are
// errors.
func (l *Logger) LogQuery(ctx context.Context, index, levels, candidates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed", "index", index, "error", err)
		return
	}
	l.DebugContext(ctx, "query completed",
		"index", index,
		"levels", levels,
		"candidates", candidates,
	)
}

// LogBatch logs a batch of neighbour queries.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch query completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
		return
	}
	l.InfoContext(ctx, "batch query completed", "count", count)
}

// LogHistogram logs a finished nearest neighbour histogram.
func (l *Logger) LogHistogram(ctx context.Context, s *DistanceStats, d time.Duration) {
	l.InfoContext(ctx, "distance histogram computed",
		"points", len(s.Nearest),
		"bins", len(s.Counts),
		"underflow", s.Underflow,
		"overflow", s.Overflow,
		"mean", s.Mean,
		"duration", d,
	)
}
