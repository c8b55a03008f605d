package logging

import (
	"context"
	"errors"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"

	"github.com/getsentry/sentry-go"
)

type SentryHub interface {
	WithScope(f func(scope *sentry.Scope))
	CaptureException(exception error) *sentry.EventID
}

// SentryLogger reports every error-level record to Sentry and passes all
// records on to the wrapped logger.
type SentryLogger struct {
	logging.Logger
	hub SentryHub
}

func NewSentryLogger(log logging.Logger, hub SentryHub) *SentryLogger {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if hub == nil {
		panic(e.NewNilArgumentError("hub"))
	}
	return &SentryLogger{Logger: log, hub: hub}
}

func (l *SentryLogger) Error(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.Logger.Error(ctx, msg, entries...)

	err := errors.New(msg)
	l.hub.WithScope(func(scope *sentry.Scope) {
		for _, entry := range entries {
			if entryErr, ok := entry.Value.(error); ok && entry.Key == "err" {
				err = entryErr
				continue
			}
			scope.SetExtra(entry.Key, entry.Value)
		}
		scope.SetExtra("message", msg)
		l.hub.CaptureException(err)
	})
}
