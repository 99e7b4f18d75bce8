// Package protolog provides structured event logging for the gateway core.
//
// This package defines the Logger interface and Event types for capturing
// gateway-level events: state transitions, batch-drain session summaries,
// provisioning outcomes, and warnings/errors surfaced by the core's
// collaborators. It is separate from operational logging (slog) - protocol
// capture provides a complete machine-readable event trace for field
// diagnosis of a deployed tracker.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	var logger protolog.Logger = protolog.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	fileLogger, err := protolog.NewFileLogger("/var/log/gateway/core.plog")
//	if err != nil {
//	    return err
//	}
//
//	// Both: use MultiLogger
//	logger = protolog.NewMultiLogger(logger, fileLogger)
//
// # Event Types
//
// Events are tagged by Category: state transitions (StateChange), batch
// drain session summaries (BatchSummary), provisioning outcomes
// (Provisioning), free-form warnings/errors (Warning, Error), and fatal
// signals (Fatal).
//
// # File Format
//
// Log files use CBOR encoding. Reader provides filtered iteration over a
// recorded file for offline analysis.
package protolog
