package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEnvironment indicates an Environment value outside the two
// defined deployments. This is a configuration error and is never retried.
var ErrUnknownEnvironment = errors.New("unknown gateway environment")

// Environment selects which gateway deployment a client connects to.
type Environment uint8

const (
	// EnvironmentProduction is the live gateway deployment.
	EnvironmentProduction Environment = iota

	// EnvironmentSandbox is the development gateway deployment.
	EnvironmentSandbox
)

// String returns the environment name.
func (e Environment) String() string {
	switch e {
	case EnvironmentProduction:
		return "PRODUCTION"
	case EnvironmentSandbox:
		return "SANDBOX"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether e is one of the two defined deployments.
func (e Environment) Valid() bool {
	return e == EnvironmentProduction || e == EnvironmentSandbox
}

// ParseEnvironment parses an environment name, case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "production", "prod":
		return EnvironmentProduction, nil
	case "sandbox", "dev":
		return EnvironmentSandbox, nil
	default:
		return 0, fmt.Errorf("%w: %q (use: production, sandbox)", ErrUnknownEnvironment, s)
	}
}
