// Package errors provides standardized error handling for the gateway.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (timeouts, broker outages), Invalid (bad input, non-retryable),
// and Fatal (unrecoverable, stop processing).
//
// Classification lets the HTTP layer decide how to translate a failure into
// a response without string matching on error content: transport failures
// map to gateway-class statuses, validation failures to client-class ones.
// The system integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Client", "Request", "await reply")
//	errors.WrapInvalid(err, "Config", "Validate", "parse PORT")
//	errors.WrapFatal(err, "Gateway", "Start", "bind listener")
//
// The generic Wrap() preserves the original error's classification.
//
// # Standard Error Variables
//
// Pre-defined variables cover the common gateway conditions: connectivity
// (ErrNoConnection, ErrRequestTimeout, ErrNoResponders), payload shape
// (ErrInvalidData, ErrParsingFailed), and configuration (ErrInvalidConfig,
// ErrMissingConfig). Use these instead of ad-hoc error strings so callers
// can match with errors.Is.
//
// # Context Cancellation
//
// Context errors (context.DeadlineExceeded, context.Canceled) are
// classified as Transient, so an aborted or timed-out correlated-reply wait
// is handled the same way as a broker-side timeout.
package errors
