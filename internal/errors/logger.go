package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a structured JSON logger writing to w.
func NewLogger(level slog.Level, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(w, opts)
	return &Logger{logger: slog.New(handler)}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return NewLogger(slog.LevelError, io.Discard)
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if l == nil {
		return
	}
	if appErr, ok := As(err); ok {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}
		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}
		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
		return
	}

	logArgs := append([]any{"error", fmt.Sprint(err)}, args...)
	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Warn(message, args...)
}

// With returns a logger that always carries args.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// New creates a logger on stderr so stdout stays free for command output.
func New(level string) (*Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewLogger(slogLevel, os.Stderr), nil
}
