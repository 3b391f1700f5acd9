// Package logging configures logrus and reports failures to Sentry.
package logging

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger and, when dsn is set, Sentry.
func Setup(level, format, dsn, environment string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// Flush waits for buffered Sentry events.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// LogError logs err with structured context and sends it to Sentry.
func LogError(op string, err error, fields logrus.Fields) {
	entry := logrus.WithFields(logrus.Fields{
		"op":    op,
		"error": err.Error(),
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error("operation failed")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("op", op)
		for k, v := range fields {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent records a notable domain event at debug level.
func LogEvent(event string, fields logrus.Fields) {
	logrus.WithField("event", event).WithFields(fields).Debug(event)
}
