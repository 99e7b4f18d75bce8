package protolog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes gateway-core events to an slog.Logger. Useful during
// development and for the interactive CLI mode.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level, Warn for warnings,
// and Error for errors and fatal signals.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("correlation_id", event.CorrelationID),
		slog.String("category", event.Category.String()),
	}

	level := slog.LevelDebug

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
			slog.String("trigger", event.StateChange.Trigger),
		)
	case event.BatchSummary != nil:
		attrs = append(attrs,
			slog.Uint64("session_id", uint64(event.BatchSummary.SessionID)),
			slog.Int("items_sent", event.BatchSummary.ItemsSent),
			slog.Int("items_dropped", event.BatchSummary.ItemsDropped),
			slog.Int("item_errors", event.BatchSummary.ItemErrors),
		)
	case event.Provisioning != nil:
		attrs = append(attrs,
			slog.String("outcome", event.Provisioning.Outcome),
			slog.String("result", event.Provisioning.Result),
		)
	case event.Warning != nil:
		attrs = append(attrs, slog.String("message", event.Warning.Message))
		level = slog.LevelWarn
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("message", event.Error.Message),
			slog.String("context", event.Error.Context),
		)
		level = slog.LevelError
	case event.Fatal != nil:
		attrs = append(attrs,
			slog.String("kind", event.Fatal.Kind),
			slog.String("message", event.Fatal.Message),
		)
		level = slog.LevelError
	}

	a.logger.LogAttrs(context.Background(), level, "gateway", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
