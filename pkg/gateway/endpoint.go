package gateway

import (
	"fmt"
	"net"
	"strconv"
)

// Gateway addresses per deployment. These never change at runtime.
const (
	// ProductionHost is the production gateway hostname.
	ProductionHost = "gateway.push.pushgate.net"

	// SandboxHost is the sandbox gateway hostname.
	SandboxHost = "gateway.sandbox.push.pushgate.net"

	// GatewayPort is the TLS port both deployments listen on.
	GatewayPort = 2195
)

// Endpoint is the concrete network address of a gateway deployment.
type Endpoint struct {
	// Scheme is the transport scheme, always "tls".
	Scheme string

	// Host is the gateway hostname. Also used for SNI and certificate
	// verification when a root CA is configured.
	Host string

	// Port is the TCP port.
	Port uint16
}

// Addr returns the host:port dial target.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// String returns the endpoint in scheme://host:port form.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s", e.Scheme, e.Addr())
}

// Resolve maps an environment to its gateway endpoint.
// Returns ErrUnknownEnvironment for values outside the two deployments.
func Resolve(env Environment) (Endpoint, error) {
	switch env {
	case EnvironmentProduction:
		return Endpoint{Scheme: "tls", Host: ProductionHost, Port: GatewayPort}, nil
	case EnvironmentSandbox:
		return Endpoint{Scheme: "tls", Host: SandboxHost, Port: GatewayPort}, nil
	default:
		return Endpoint{}, fmt.Errorf("%w: %d", ErrUnknownEnvironment, env)
	}
}
