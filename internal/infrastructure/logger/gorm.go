package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowSQL = 200 * time.Millisecond

var _ gormlogger.Interface = (*SQLLogger)(nil)

// SQLLogger sends GORM output to zap, tagged with the correlation ids on the
// statement context. Record-not-found is never logged: repositories turn it
// into a domain NotFound.
type SQLLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger returns a GORM logger. A non-positive slow threshold falls
// back to 200ms.
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *SQLLogger {
	if slow <= 0 {
		slow = defaultSlowSQL
	}
	return &SQLLogger{log: l, level: level, slow: slow}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *SQLLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, data []any) {
	if l.level < at {
		return
	}
	sugar := Enrich(ctx, l.log).Sugar()
	switch at {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and, at Info
// verbosity, everything else at debug.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	statement := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed)}
	}

	switch {
	case err != nil:
		if l.level >= gormlogger.Error {
			Enrich(ctx, l.log).Error("sql error", append(statement(), zap.Error(err))...)
		}
	case elapsed >= l.slow:
		if l.level >= gormlogger.Warn {
			Enrich(ctx, l.log).Warn("slow sql", append(statement(), zap.Duration("threshold", l.slow))...)
		}
	case l.level >= gormlogger.Info:
		Enrich(ctx, l.log).Debug("sql", statement()...)
	}
}

// MapGormLogLevel converts a configured level name into GORM's level; unknown
// names map to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	levels := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
	}
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}
