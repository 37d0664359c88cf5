package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a string to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures a Logger
type Options struct {
	// Level is the initial level (debug, info, warn, error)
	Level string
	// File is an optional log file, rotated by size
	File string
	// Format is the file encoding, console or json
	Format model.LogFormat
	// MaxSizeMB is the file size that triggers rotation
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept
	MaxBackups int
}

// Logger is an implementation of port.Logger on top of zap
type Logger struct {
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	level   zap.AtomicLevel
	closers []io.Closer
}

// NewLogger creates a new Logger writing console lines to writer
func NewLogger(writer io.Writer, level string) *Logger {
	return New(writer, Options{Level: level})
}

// New creates a Logger writing console lines to writer and, when opts.File is
// set, also to a rotated file.
func New(writer io.Writer, opts Options) *Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	cores := []zapcore.Core{
		zapcore.NewCore(encoder(model.LogFormatConsole), zapcore.Lock(zapcore.AddSync(writer)), level),
	}

	var closers []io.Closer
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    valueOr(opts.MaxSizeMB, 10),
			MaxBackups: valueOr(opts.MaxBackups, 3),
		}
		format := opts.Format
		if format == "" {
			format = model.LogFormatJSON
		}
		cores = append(cores, zapcore.NewCore(encoder(format), zapcore.AddSync(rotator), level))
		closers = append(closers, rotator)
	}

	return FromZap(zap.New(zapcore.NewTee(cores...)), level, closers...)
}

// FromZap wraps an existing zap logger. level controls SetLevel.
func FromZap(base *zap.Logger, level zap.AtomicLevel, closers ...io.Closer) *Logger {
	return &Logger{
		base:    base,
		sugar:   base.Sugar(),
		level:   level,
		closers: closers,
	}
}

// NewFileLogger creates a logger that writes to stderr and to a file
func NewFileLogger(filePath string, level string, format model.LogFormat) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	return New(os.Stderr, Options{Level: level, File: filePath, Format: format}), nil
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(ParseLevel(level))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	// Sync on a terminal returns EINVAL on some platforms; it carries no data loss.
	_ = l.base.Sync()
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func encoder(format model.LogFormat) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == model.LogFormatJSON {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Ensure Logger implements port.Logger
var _ port.Logger = (*Logger)(nil)
