// Package log provides structured protocol logging for TLS sessions.
//
// This package defines the Logger interface and Event types for capturing
// session-level events: record headers crossing the buffers, state machine
// transitions, completed handshakes and classified failures. It is separate
// from operational logging (slog). Protocol capture provides a complete
// machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// A context hands its Logger to every session it creates:
//
//	// For development: log to console via slog
//	ctx.SetProtocolLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/tls/server.tlog")
//	ctx.SetProtocolLogger(fl)
//
//	// Both, keeping record events out of the console
//	ctx.SetProtocolLogger(log.NewMultiLogger(
//	    log.OnlyCategories(log.NewSlogAdapter(slog.Default()),
//	        log.CategoryState, log.CategoryHandshake, log.CategoryError),
//	    fl,
//	))
//
// Captures are read back with Reader:
//
//	r, _ := log.NewFilteredReader("server.tlog", log.Filter{SessionID: id})
//	for ev, err := range r.All() {
//	    ...
//	}
//
// # Event Types
//
//   - Record: one TLS record header per record (RecordEvent)
//   - Session: state machine transitions (StateChangeEvent)
//   - Handshake: negotiated parameters (HandshakeEvent)
//   - Error: classified failures (ErrorEventData)
//
// # File Format
//
// Log files use CBOR encoding with .tlog extension. The tls-log CLI tool
// provides viewing, filtering, and export capabilities.
package log
