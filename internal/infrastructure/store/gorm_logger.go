package store

import (
	"context"
	"errors"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold marks queries worth a warning
const slowQueryThreshold = time.Second

// GormLogger routes gorm logs into port.Logger
type GormLogger struct {
	logger   port.Logger
	LogLevel gormlogger.LogLevel
}

// NewGormLogger creates a GormLogger logging warnings and errors
func NewGormLogger(logger port.Logger) *GormLogger {
	return &GormLogger{
		logger:   logger,
		LogLevel: gormlogger.Warn,
	}
}

// LogMode returns a copy of the logger at the given level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.logger.Info(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.logger.Warn(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.logger.Error(msg, data...)
	}
}

// Trace logs one SQL statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		sql, rows := fc()
		l.logger.Error("SQL failed after %s (%d rows): %s: %v", elapsed, rows, sql, err)
	case elapsed > slowQueryThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn("Slow SQL %s (%d rows): %s", elapsed, rows, sql)
	case l.LogLevel == gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug("SQL %s (%d rows): %s", elapsed, rows, sql)
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
