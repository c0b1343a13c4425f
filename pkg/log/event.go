package log

import (
	"time"
)

// Event represents a connection lifecycle event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the connection cycle (UUID). A new ID is
	// assigned per Connect call, so all attempts of one retry loop and
	// the resulting connection share an ID.
	ConnectionID string `cbor:"2,keyasint"`

	// Level classifies the event severity.
	Level Level `cbor:"3,keyasint"`

	// Environment is the gateway deployment name.
	Environment string `cbor:"4,keyasint,omitempty"`

	// RemoteAddr is the gateway address (host:port).
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (exactly one of these is set).
	Attempt     *AttemptEvent     `cbor:"6,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"`
	Probe       *ProbeEvent       `cbor:"8,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"`
}

// Level classifies event severity.
type Level uint8

const (
	// LevelInfo is for expected lifecycle events.
	LevelInfo Level = 0
	// LevelWarn is for recoverable failures (an attempt that will be retried).
	LevelWarn Level = 1
	// LevelError is for unrecoverable failures (retry budget exhausted).
	LevelError Level = 2
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AttemptEvent captures one iteration of the connect retry loop.
type AttemptEvent struct {
	// Outcome of this attempt.
	Outcome AttemptOutcome `cbor:"1,keyasint"`

	// Attempt is the zero-based attempt index.
	Attempt int `cbor:"2,keyasint"`

	// Budget is the configured retry count (total attempts = Budget+1).
	Budget int `cbor:"3,keyasint"`

	// RetryIn is the pause before the next attempt (failed attempts
	// with budget remaining only). Stored as nanoseconds.
	RetryIn time.Duration `cbor:"4,keyasint,omitempty"`

	// Reason is the failure message (failed attempts only).
	Reason string `cbor:"5,keyasint,omitempty"`
}

// AttemptOutcome classifies an attempt event.
type AttemptOutcome uint8

const (
	// AttemptStarted indicates an attempt is beginning.
	AttemptStarted AttemptOutcome = 0
	// AttemptFailed indicates the attempt failed; RetryIn is set when a
	// retry is scheduled.
	AttemptFailed AttemptOutcome = 1
	// AttemptSucceeded indicates the connection was established.
	AttemptSucceeded AttemptOutcome = 2
)

// String returns the outcome name.
func (o AttemptOutcome) String() string {
	switch o {
	case AttemptStarted:
		return "STARTED"
	case AttemptFailed:
		return "FAILED"
	case AttemptSucceeded:
		return "SUCCEEDED"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures manager state transitions.
type StateChangeEvent struct {
	// OldState is the previous state.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ProbeEvent captures a post-write liveness probe outcome.
type ProbeEvent struct {
	// Result is the probe classification (ALIVE, BROKEN, DATA).
	Result string `cbor:"1,keyasint"`

	// Bytes is the number of pending bytes read (DATA only).
	Bytes int `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures errors outside the attempt loop.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
