package transport

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pushgate-project/pushgate-go/pkg/gateway"
)

// startTestServer starts a TLS listener that hands each accepted
// connection to handle. The listener closes on test cleanup.
func startTestServer(t *testing.T, handle func(net.Conn)) gateway.Endpoint {
	t.Helper()

	_, _, cert, key := generateTestCertificate(t)

	serverCert := tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}

	listener, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{serverCert},
	})
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				// Complete the handshake before handing off so that
				// handlers which do no I/O still let Connect succeed.
				if tc, ok := conn.(*tls.Conn); ok {
					if err := tc.Handshake(); err != nil {
						conn.Close()
						return
					}
				}
				handle(conn)
			}()
		}
	}()

	return endpointFor(t, listener.Addr())
}

func endpointFor(t *testing.T, addr net.Addr) gateway.Endpoint {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("failed to split address %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("bad port %q: %v", portStr, err)
	}
	return gateway.Endpoint{Scheme: "tls", Host: host, Port: uint16(port)}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	certPEM, keyDER, _, _ := generateTestCertificate(t)
	identityPath := writeIdentityFile(t, certPEM, keyDER, "")

	client, err := NewClient(ClientConfig{
		TLSConfig:      &TLSConfig{CertificatePath: identityPath},
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClientConnect(t *testing.T) {
	endpoint := startTestServer(t, func(conn net.Conn) {
		// Hold the connection open; the client side drives the test.
		buf := make([]byte, 64)
		for {
			if _, err := conn.Read(buf); err != nil {
				conn.Close()
				return
			}
		}
	})

	client := newTestClient(t)

	conn, err := client.Connect(context.Background(), endpoint)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if conn.RemoteAddr().String() != endpoint.Addr() {
		t.Errorf("RemoteAddr = %v, want %v", conn.RemoteAddr(), endpoint.Addr())
	}
	if conn.TLSState().Version == 0 {
		t.Error("TLS state not captured")
	}
}

func TestClientConnectRefused(t *testing.T) {
	// Reserve a port, then close the listener so connects are refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	endpoint := endpointFor(t, listener.Addr())
	listener.Close()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := client.Connect(ctx, endpoint); err == nil {
		t.Error("Connect to closed port should fail")
	}
}

func TestClientVerifiesPeer(t *testing.T) {
	endpoint := startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 64)
		conn.Read(buf)
	})

	certPEM, keyDER, _, _ := generateTestCertificate(t)
	identityPath := writeIdentityFile(t, certPEM, keyDER, "")

	// The client's CA bundle does not contain the server's self-signed
	// certificate, so the handshake must fail.
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(caPath, certPEM, 0600); err != nil {
		t.Fatalf("write CA file failed: %v", err)
	}

	client, err := NewClient(ClientConfig{
		TLSConfig: &TLSConfig{
			CertificatePath: identityPath,
			RootCAPath:      caPath,
		},
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Connect(context.Background(), endpoint); err == nil {
		t.Error("Connect should fail peer verification against an unrelated CA")
	}
}

func TestClientWriteAfterClose(t *testing.T) {
	endpoint := startTestServer(t, func(conn net.Conn) {
		buf := make([]byte, 64)
		for {
			if _, err := conn.Read(buf); err != nil {
				conn.Close()
				return
			}
		}
	})

	client := newTestClient(t)

	conn, err := client.Connect(context.Background(), endpoint)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close is a no-op.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	if _, err := conn.Write([]byte("data")); err != ErrConnectionClosed {
		t.Errorf("Write after close = %v, want ErrConnectionClosed", err)
	}
}
