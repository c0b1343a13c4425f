package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/pushgate-project/pushgate-go/pkg/gateway"
)

// DefaultConnectTimeout bounds a single dial-plus-handshake attempt.
const DefaultConnectTimeout = 30 * time.Second

// ClientConfig configures a gateway client.
type ClientConfig struct {
	// TLSConfig contains the certificate material.
	TLSConfig *TLSConfig

	// ConnectTimeout bounds a single connection attempt (default: 30s).
	ConnectTimeout time.Duration
}

// Client dials TLS connections to a gateway endpoint.
type Client struct {
	config  ClientConfig
	tlsConf *tls.Config
}

// NewClient creates a new gateway client. The certificate material is
// loaded and validated here so configuration errors surface before any
// connection attempt.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}

	tlsConf, err := NewClientTLSConfig(config.TLSConfig)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:  config,
		tlsConf: tlsConf,
	}, nil
}

// Connect establishes a connection to the endpoint and completes the
// TLS handshake. A single attempt, bounded by ConnectTimeout; retry
// belongs to the caller.
func (c *Client) Connect(ctx context.Context, endpoint gateway.Endpoint) (*Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	raw, err := dialer.DialContext(ctx, "tcp", endpoint.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	// The liveness probe depends on a write reaching the wire promptly
	// rather than sitting in a local buffer, so Nagle and the send
	// buffer are turned off.
	if tcp, ok := raw.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
		_ = tcp.SetWriteBuffer(0)
	}

	tlsConf := c.tlsConf.Clone()
	if tlsConf.ServerName == "" {
		tlsConf.ServerName = endpoint.Host
	}

	tlsConn := tls.Client(raw, tlsConf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}

	return newConn(tlsConn), nil
}
