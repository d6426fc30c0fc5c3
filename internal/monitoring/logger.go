package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Logger provides enhanced structured logging with context
type Logger struct {
	*slog.Logger
}

// LogOptions selects the handler used by NewLoggerWithOptions
type LogOptions struct {
	Format  string // "json" (default) or "text"
	Verbose bool
	Output  io.Writer
}

// NewLogger creates a JSON logger on stdout at info level
func NewLogger() *Logger {
	return NewLoggerWithOptions(LogOptions{})
}

// NewLoggerWithOptions creates a logger with the requested format and level
func NewLoggerWithOptions(opts LogOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Add timestamp in RFC3339 format
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if opts.Format == "text" {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewNopLogger discards everything; used by tests and library callers
func NewNopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithRun tags every subsequent record with a fresh run id
func (l *Logger) WithRun() (*Logger, string) {
	id := uuid.New().String()
	return &Logger{Logger: l.With("run_id", id)}, id
}

// StageLogger logs completion of a pipeline stage
func (l *Logger) StageLogger(stage string, count int, duration time.Duration) {
	l.Info("Stage Completed",
		"stage", stage,
		"count", count,
		"duration_ms", duration.Milliseconds(),
	)
}

// FileLogger logs the outcome of reading one source file
func (l *Logger) FileLogger(path string, records, rows int, err error) {
	if err != nil {
		l.Warn("Source File Skipped",
			"path", path,
			"error", err.Error(),
		)
		return
	}
	l.Debug("Source File Read",
		"path", path,
		"records", records,
		"rows", rows,
	)
}

// LensLogger logs a finished lens
func (l *Logger) LensLogger(id string, charts, slices int, duration time.Duration) {
	l.Info("Lens Completed",
		"lens_id", id,
		"charts", charts,
		"slices", slices,
		"duration_ms", duration.Milliseconds(),
	)
}

// SliceLogger logs a slice that matched no rows
func (l *Logger) SliceLogger(chart, column, value string) {
	l.Debug("Empty Slice",
		"chart", chart,
		"column", column,
		"value", value,
	)
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelWarn
	}

	l.Log(context.Background(), level, "HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
