package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes connection events to an slog.Logger.
// Useful for development when you want lifecycle events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Event levels map directly to
// slog levels.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
	}

	if event.Environment != "" {
		attrs = append(attrs, slog.String("environment", event.Environment))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	msg := "connection"
	switch {
	case event.Attempt != nil:
		msg = "connect attempt"
		attrs = append(attrs,
			slog.String("outcome", event.Attempt.Outcome.String()),
			slog.Int("attempt", event.Attempt.Attempt),
			slog.Int("budget", event.Attempt.Budget),
		)
		if event.Attempt.RetryIn > 0 {
			attrs = append(attrs, slog.Duration("retry_in", event.Attempt.RetryIn))
		}
		if event.Attempt.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Attempt.Reason))
		}
	case event.StateChange != nil:
		msg = "state change"
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Probe != nil:
		msg = "liveness probe"
		attrs = append(attrs, slog.String("result", event.Probe.Result))
		if event.Probe.Bytes > 0 {
			attrs = append(attrs, slog.Int("bytes", event.Probe.Bytes))
		}
	case event.Error != nil:
		msg = "connection error"
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Level), msg, attrs...)
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
