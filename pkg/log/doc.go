// Package log provides structured protocol logging for DAC sessions.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, wire, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/dac/session.dlog")
//
//	// Long-running controllers: rotate files by size
//	cfg.ProtocolLogger = log.NewRotatingFileLogger(log.RotationConfig{Filename: "session.dlog"})
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Wire: Decoded commands and responses (CommandEvent, ResponseEvent)
//   - Session: Device status and batch changes (StateChangeEvent)
//
// Errors at any layer have a dedicated event type.
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with the .dlog extension.
// The dac-log CLI tool provides viewing and filtering.
package log
