// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface. Arguments after msg are
// alternating key/value pairs, as with slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a slog backed Logger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, CustomAttrs: map[string]any{}}
}

// NewLogger builds a Logger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) Logger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With(slog.String("component", cfg.Component))
	}
	for k, v := range cfg.CustomAttrs {
		logger = logger.With(slog.Any(k, v))
	}
	return NewSlogAdapter(logger)
}

// NewSlogLogger creates a Logger with the specified level, format and source setting.
func NewSlogLogger(level LogLevel, format string, addSource bool) Logger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

// With returns a Logger that attaches args to every entry. Loggers that are
// not slog backed are wrapped so the attributes are prepended per call.
func With(l Logger, args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	switch v := l.(type) {
	case nil:
		return NoOpLogger{}
	case NoOpLogger:
		return v
	case *SlogAdapter:
		return &SlogAdapter{Logger: v.Logger.With(args...)}
	default:
		return &boundLogger{next: l, attrs: args}
	}
}

// WithSession attaches a session identifier.
func WithSession(l Logger, sessionID string) Logger {
	return With(l, "session_id", sessionID)
}

type boundLogger struct {
	next  Logger
	attrs []any
}

func (b *boundLogger) merge(args []any) []any {
	out := make([]any, 0, len(b.attrs)+len(args))
	out = append(out, b.attrs...)
	return append(out, args...)
}

func (b *boundLogger) Debug(msg string, args ...any) { b.next.Debug(msg, b.merge(args)...) }
func (b *boundLogger) Info(msg string, args ...any)  { b.next.Info(msg, b.merge(args)...) }
func (b *boundLogger) Warn(msg string, args ...any)  { b.next.Warn(msg, b.merge(args)...) }
func (b *boundLogger) Error(msg string, args ...any) { b.next.Error(msg, b.merge(args)...) }

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
