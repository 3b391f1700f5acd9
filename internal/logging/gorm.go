package logging

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger forwards gorm's log output to logrus.
type GormLogger struct {
	SlowThreshold time.Duration
	level         gormlogger.LogLevel
}

func NewGormLogger() *GormLogger {
	return &GormLogger{SlowThreshold: 200 * time.Millisecond, level: gormlogger.Warn}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logrus.WithContext(ctx).Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logrus.WithContext(ctx).Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logrus.WithContext(ctx).Errorf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		logrus.WithContext(ctx).WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": sql,
		}).WithError(err).Error("query failed")
	case elapsed > l.SlowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logrus.WithContext(ctx).WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": sql,
		}).Warn("slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logrus.WithContext(ctx).WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": sql,
		}).Debug("query")
	}
}
