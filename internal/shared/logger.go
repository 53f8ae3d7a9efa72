package shared

import "log/slog"

// CronLogger routes cron scheduler logs through the global slog logger.
type CronLogger struct{}

// Info proxies to slog.Info keeping cron's key/value pairs as attributes.
func (CronLogger) Info(msg string, keysAndValues ...any) {
	slog.Info(msg, keysAndValues...)
}

// Error logs err alongside cron's key/value pairs.
func (CronLogger) Error(err error, msg string, keysAndValues ...any) {
	if err == nil {
		slog.Error(msg, keysAndValues...)
		return
	}
	slog.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
