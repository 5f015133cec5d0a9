// If you are AI: This file defines the typed error taxonomy used across the
// media server core. Every operation that can fail in a way callers need to
// classify (config reload, admission control, queue pressure, codec parsing)
// returns one of these kinds wrapped around its cause.
package srserr

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// kindMarker is implemented by every typed error so callers can classify
// an error chain without depending on the concrete type.
type kindMarker interface {
	error
	Kind() string
}

// ConfigInvalidError indicates a malformed directive tree: unknown directive,
// out-of-range value, or a missing required field. Fatal at startup; at
// reload it carries the offending file and line so the caller can roll back.
type ConfigInvalidError struct {
	Op   string
	File string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ConfigInvalidError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config invalid: %s: %s:%d: %v", e.Op, e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("config invalid: %s: %v", e.Op, e.Err)
}
// Unwrap returns the wrapped cause.
func (e *ConfigInvalidError) Unwrap() error { return e.Err }
// Kind names the taxonomy entry.
func (e *ConfigInvalidError) Kind() string  { return "ConfigInvalid" }

// EdgeModeChangedError indicates a reload attempted to flip a vhost between
// edge and origin role, which is never reloadable.
type EdgeModeChangedError struct {
	Vhost string
}

// Error implements the error interface.
func (e *EdgeModeChangedError) Error() string {
	return fmt.Sprintf("edge mode changed: vhost %s", e.Vhost)
}
// Kind names the taxonomy entry.
func (e *EdgeModeChangedError) Kind() string { return "EdgeModeChanged" }

// StreamBusyError indicates a second publisher attempted to attach to a
// source that already has one admitted.
type StreamBusyError struct {
	StreamKey string
}

// Error implements the error interface.
func (e *StreamBusyError) Error() string { return fmt.Sprintf("stream busy: %s", e.StreamKey) }
// Kind names the taxonomy entry.
func (e *StreamBusyError) Kind() string  { return "StreamBusy" }

// SlowConsumerError indicates a consumer's queue exceeded its policy bound
// under the "disable" drop policy and was detached.
type SlowConsumerError struct {
	StreamKey  string
	ConsumerID uint64
}

// Error implements the error interface.
func (e *SlowConsumerError) Error() string {
	return fmt.Sprintf("slow consumer: stream=%s consumer=%d", e.StreamKey, e.ConsumerID)
}
// Kind names the taxonomy entry.
func (e *SlowConsumerError) Kind() string { return "SlowConsumer" }

// HeaderMissingError indicates a packet referenced a codec config that has
// not yet been latched on the source. The packet is dropped, not fatal.
type HeaderMissingError struct {
	StreamKey string
	Kind_     string // "audio" or "video"
}

// Error implements the error interface.
func (e *HeaderMissingError) Error() string {
	return fmt.Sprintf("header missing: stream=%s kind=%s", e.StreamKey, e.Kind_)
}
// Kind names the taxonomy entry.
func (e *HeaderMissingError) Kind() string { return "HeaderMissing" }

// DecodeError indicates a sequence-header parse failed. The raw bytes are
// still latched and the packet is still forwarded; this is a warning-level
// condition, never fatal, because media servers must tolerate imperfect
// encoders.
type DecodeError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string { return fmt.Sprintf("decode error: %s: %v", e.Op, e.Err) }
// Unwrap returns the wrapped cause.
func (e *DecodeError) Unwrap() error { return e.Err }
// Kind names the taxonomy entry.
func (e *DecodeError) Kind() string  { return "DecodeError" }

// InterruptedError indicates task cancellation propagated to the top of a
// long-lived loop.
type InterruptedError struct {
	Op string
}

// Error implements the error interface.
func (e *InterruptedError) Error() string { return fmt.Sprintf("interrupted: %s", e.Op) }
// Kind names the taxonomy entry.
func (e *InterruptedError) Kind() string  { return "Interrupted" }

// TimeoutError indicates a blocking I/O or wait exceeded its configured
// deadline.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
// Unwrap returns the wrapped cause.
func (e *TimeoutError) Unwrap() error { return e.Err }
// Kind names the taxonomy entry.
func (e *TimeoutError) Kind() string  { return "Timeout" }

// TransientError indicates an upstream forward/bridger error that should be
// retried with backoff rather than surfaced as fatal.
type TransientError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string { return fmt.Sprintf("transient: %s: %v", e.Op, e.Err) }
// Unwrap returns the wrapped cause.
func (e *TransientError) Unwrap() error { return e.Err }
// Kind names the taxonomy entry.
func (e *TransientError) Kind() string  { return "Transient" }

// Constructors. Callers should layer additional context with fmt.Errorf
// ("...: %w", err) above these when wrapping further up the call stack.

// NewConfigInvalid wraps a config parse/validate failure with its file
// and line.
func NewConfigInvalid(op, file string, line int, cause error) error {
	return &ConfigInvalidError{Op: op, File: file, Line: line, Err: cause}
}
// NewEdgeModeChanged flags a rejected edge/origin role flip.
func NewEdgeModeChanged(vhost string) error        { return &EdgeModeChangedError{Vhost: vhost} }
// NewStreamBusy flags a second publisher on a source.
func NewStreamBusy(streamKey string) error          { return &StreamBusyError{StreamKey: streamKey} }
// NewSlowConsumer flags a consumer detached for falling behind.
func NewSlowConsumer(streamKey string, id uint64) error {
	return &SlowConsumerError{StreamKey: streamKey, ConsumerID: id}
}
// NewHeaderMissing flags a packet arriving before its codec config.
func NewHeaderMissing(streamKey, kind string) error {
	return &HeaderMissingError{StreamKey: streamKey, Kind_: kind}
}
// NewDecodeError wraps a best-effort parse failure.
func NewDecodeError(op string, cause error) error { return &DecodeError{Op: op, Err: cause} }
// NewInterrupted flags task cancellation.
func NewInterrupted(op string) error              { return &InterruptedError{Op: op} }
// NewTimeout wraps an elapsed I/O deadline.
func NewTimeout(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}
// NewTransient wraps a retryable upstream failure.
func NewTransient(op string, cause error) error { return &TransientError{Op: op, Err: cause} }

// Kind returns the classification string of err if it (or a wrapped cause)
// implements kindMarker, and "" otherwise.
func Kind(err error) string {
	var km kindMarker
	if stdErrors.As(err, &km) {
		return km.Kind()
	}
	return ""
}

// Is reports whether err is of the named kind.
func Is(err error, kind string) bool { return Kind(err) == kind }

// IsTimeout is the convenience predicate: true for a wrapped
// TimeoutError, a context.DeadlineExceeded, or any error exposing
// Timeout() bool that returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, "Timeout") {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}
