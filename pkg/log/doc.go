// Package log provides protocol capture for the doorlock link.
//
// This package defines the Logger interface and Event types for recording
// what happens on the serial link and inside the two dispatchers. It is
// separate from operational logging (slog): protocol capture produces a
// machine-readable trace that can be replayed with the lock-log tool.
//
// # Basic Usage
//
//	// Development: print events through slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Production: append CBOR events to a file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/doorlock/back.dlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(adapter, fileLogger)
//
// # Event Types
//
//   - Link: one byte sent or received (ByteEvent)
//   - Session, Dispatcher: state changes of the dispatchers, the door
//     sequencer, the alarm and the retry counter (StateChangeEvent)
//   - Any layer: errors (ErrorEventData)
//
// Credential digits are never written: a digit on the link is recorded as a
// masked ByteEvent.
//
// # File Format
//
// Capture files hold a stream of CBOR-encoded events (.dlog extension).
package log
