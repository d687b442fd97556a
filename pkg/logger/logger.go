package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

// Logger wraps slog with the field helpers used across the service.
type Logger struct {
	logger *slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" or "text"

	// File, when set, additionally writes records to a size-rotated file.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`

	// Output overrides stdout; used by tests.
	Output io.Writer `json:"-"`
}

// ParseLevel maps a level name onto slog, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new structured logger
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}

	var out io.Writer = os.Stdout
	if config.Output != nil {
		out = config.Output
	}
	if config.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(out, rotating)
	}

	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// NewContext stores a request id on ctx for WithContext to pick up.
func NewContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithContext returns a logger tagged with the request id carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return l.WithField("request_id", id)
	}
	return l
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithField returns a logger with a single additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With(key, value)}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.logger.Info(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logger.Warn(msg, args...)
}

// Error logs msg at error level, attaching err when non-nil.
func (l *Logger) Error(err error, msg string, args ...interface{}) {
	if err != nil {
		args = append(args, "error", err)
	}
	l.logger.Error(msg, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(err error, msg string, args ...interface{}) {
	l.Error(err, msg, args...)
	os.Exit(1)
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

var defaultLogger *Logger

// Init initializes the default logger and installs it as the slog default.
func Init(config Config) {
	defaultLogger = New(config)
	slog.SetDefault(defaultLogger.logger)
}

// Default returns the package logger, creating a text logger if Init was
// never called.
func Default() *Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return New(Config{Level: "info", Format: "text"})
}

func Info(msg string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(msg, args...)
	}
}

func Debug(msg string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debug(msg, args...)
	}
}

func Warn(msg string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warn(msg, args...)
	}
}

func Error(err error, msg string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(err, msg, args...)
	}
}

func Fatal(err error, msg string, args ...interface{}) {
	Default().Fatal(err, msg, args...)
}

func WithFields(fields map[string]interface{}) *Logger {
	return Default().WithFields(fields)
}

func WithField(key string, value interface{}) *Logger {
	return Default().WithField(key, value)
}

func WithContext(ctx context.Context) *Logger {
	return Default().WithContext(ctx)
}
