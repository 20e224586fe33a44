package schedule

import (
	"log/slog"

	cronlib "github.com/robfig/cron/v3"
)

// cronLogger routes the cron library's logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

var _ cronlib.Logger = cronLogger{}

// Info is logged at debug level; the library uses it for every wake-up.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
