// Package logging provides the leveled logger shared by every component.
//
// The API is printf-style with fields attached through WithField and
// WithComponent. Records are emitted through log/slog, so fields end up as
// structured attributes in either text or JSON form.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Level is the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed tracing of the session loop.
	LevelDebug Level = iota
	// LevelInfo is for lifecycle messages.
	LevelInfo
	// LevelWarn is for recoverable failures.
	LevelWarn
	// LevelError is for failures that end an operation.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name. ok is false for unknown names, in which
// case LevelInfo is returned.
func ParseLevel(s string) (level Level, ok bool) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Config configures a logger.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Output is where records go. Defaults to os.Stderr.
	Output io.Writer
	// Format is "text" or "json".
	Format string
	// Prefix is attached to every record as the "app" attribute.
	Prefix string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Format: "text",
		Prefix: "backstep",
	}
}

// Logger is a leveled logger carrying a set of fields. A nil *Logger
// discards everything.
type Logger struct {
	base     *slog.Logger
	level    *slog.LevelVar
	disabled bool
}

// New creates a logger.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Level.slog())
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = slog.NewTextHandler(cfg.Output, opts)
	}

	base := slog.New(h)
	if cfg.Prefix != "" {
		base = base.With("app", cfg.Prefix)
	}
	return &Logger{base: base, level: level}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{disabled: true}
}

// WithField returns a logger with key=value attached.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil || l.disabled {
		return l
	}
	return &Logger{base: l.base.With(key, value), level: l.level}
}

// WithFields returns a logger with all fields attached, in key order.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil || l.disabled {
		return l
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &Logger{base: l.base.With(args...), level: l.level}
}

// WithComponent returns a logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel changes the minimum level. The change is shared by every logger
// derived from the same root.
func (l *Logger) SetLevel(level Level) {
	if l == nil || l.disabled {
		return
	}
	l.level.Set(level.slog())
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.disabled {
		return false
	}
	return l.base.Enabled(context.Background(), level.slog())
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil || l.disabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.base
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.base.Log(context.Background(), level.slog(), msg)
}
