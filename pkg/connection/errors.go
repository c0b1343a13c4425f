package connection

import (
	"errors"
	"fmt"
)

// Connection errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrConnectInFlight  = errors.New("connect already in progress")
)

// ConfigError indicates invalid or unreadable configuration: an unknown
// environment, or a certificate/CA file that cannot be read. Raised
// synchronously at construction or from a setter; never retried.
type ConfigError struct {
	// Setting names the offending configuration item.
	Setting string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Setting, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConnectError indicates that Connect exhausted its retry budget. The
// caller may call Connect again later; the manager remains usable.
type ConnectError struct {
	// Endpoint is the gateway address that was attempted.
	Endpoint string

	// Attempts is the total number of attempts made.
	Attempts int

	// Err is the failure of the last attempt.
	Err error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s failed after %d attempt(s): %v", e.Endpoint, e.Attempts, e.Err)
}

// Unwrap returns the last attempt's failure.
func (e *ConnectError) Unwrap() error {
	return e.Err
}
