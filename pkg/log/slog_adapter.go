package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful during development to see session events on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
		slog.String("role", event.LocalRole.String()),
	}

	if event.ServerName != "" {
		attrs = append(attrs, slog.String("server_name", event.ServerName))
	}

	switch {
	case event.Record != nil:
		attrs = append(attrs,
			slog.String("record_type", ContentTypeName(event.Record.ContentType)),
			slog.Int("record_len", event.Record.Length),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Handshake != nil:
		attrs = append(attrs,
			slog.String("version", event.Handshake.Version),
			slog.String("cipher_suite", event.Handshake.CipherSuite),
		)
		if event.Handshake.PeerSubject != "" {
			attrs = append(attrs, slog.String("peer", event.Handshake.PeerSubject))
		}
		if event.Handshake.Renegotiation {
			attrs = append(attrs, slog.Bool("renegotiation", true))
		}
		if event.Handshake.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Handshake.Duration))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "tls", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
