package internal

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides leveled logging on top of zerolog
type Logger struct {
	level LogLevel
	zl    zerolog.Logger
}

// NewLogger creates a new logger with the specified level writing to w.
// Terminals get the human-readable console format, everything else gets JSON lines.
func NewLogger(level LogLevel, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(toZerolog(level))
	return &Logger{level: level, zl: zl}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")), os.Stderr)
}

// NewNopLogger returns a logger that drops everything
func NewNopLogger() *Logger {
	return &Logger{level: LogLevelError, zl: zerolog.Nop()}
}

// ParseLogLevel maps ERROR|WARN|INFO|DEBUG|TRACE to a LogLevel, defaulting to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger carrying a component field
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, zl: l.zl.With().Str("component", component).Logger()}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.zl.Trace().Msgf(format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
