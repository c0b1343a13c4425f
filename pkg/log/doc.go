// Package log provides structured connection-event logging.
//
// This package defines the Logger interface and Event types for
// capturing connection lifecycle events: attempt start/failure/success,
// retry scheduling, state changes, liveness probes and disconnects.
// Logging is an injected observer with a no-op default, never ambient
// global state.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	mgr.SetLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For production capture: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/pushgate/client.pglog")
//	mgr.SetLogger(fl)
//
//	// Both: use MultiLogger
//	mgr.SetLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	))
//
// # Event Types
//
// Each Event carries exactly one typed payload:
//   - Attempt: a connection attempt started, failed or succeeded
//   - StateChange: manager state transitions
//   - Probe: post-write liveness probe outcomes
//   - Error: errors outside the attempt loop
//
// # File Format
//
// Log files use CBOR encoding with .pglog extension. The pushgate-log
// CLI tool provides viewing and summary statistics.
package log
