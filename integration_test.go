package pushgate_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pushgate-project/pushgate-go/pkg/connection"
	"github.com/pushgate-project/pushgate-go/pkg/gateway"
	"github.com/pushgate-project/pushgate-go/pkg/log"
	"github.com/pushgate-project/pushgate-go/pkg/transport"
)

// fakeGateway is a local TLS server that mimics the push gateway's
// write-no-ack behavior: it stays silent on good payloads and closes
// the connection after a rejected one.
type fakeGateway struct {
	listener net.Listener
	endpoint gateway.Endpoint
}

func startFakeGateway(t *testing.T, serverCert tls.Certificate, reject []byte) *fakeGateway {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	tlsConf := &tls.Config{Certificates: []tls.Certificate{serverCert}}

	go func() {
		for {
			raw, err := listener.Accept()
			if err != nil {
				return
			}
			go func(raw net.Conn) {
				conn := tls.Server(raw, tlsConf)
				defer conn.Close()
				if err := conn.Handshake(); err != nil {
					return
				}
				buf := make([]byte, 1024)
				for {
					n, err := conn.Read(buf)
					if err != nil {
						return
					}
					if reject != nil && string(buf[:n]) == string(reject) {
						// Half-close without an error frame, the way
						// the gateway drops a rejected stream.
						return
					}
				}
			}(raw)
		}
	}()

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		t.Fatalf("split address failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	return &fakeGateway{
		listener: listener,
		endpoint: gateway.Endpoint{Scheme: "tls", Host: host, Port: uint16(port)},
	}
}

func writeProviderIdentity(t *testing.T) (string, tls.Certificate) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "integration.test"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("certificate creation failed: %v", err)
	}
	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("certificate parse failed: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("key marshal failed: %v", err)
	}

	data := append(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})...,
	)
	path := filepath.Join(t.TempDir(), "provider.pem")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("identity write failed: %v", err)
	}

	return path, tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  key,
		Leaf:        leaf,
	}
}

// TestE2E_ConnectWriteProbeReconnect drives a full client lifecycle
// against a local gateway: connect, write, probe, detect the broken
// stream after a rejected write, reconnect, and verify the captured
// event log.
func TestE2E_ConnectWriteProbeReconnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	certPath, serverCert := writeProviderIdentity(t)
	gw := startFakeGateway(t, serverCert, []byte("bad-token"))

	logPath := filepath.Join(t.TempDir(), "client.pglog")
	fileLogger, err := log.NewFileLogger(logPath)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	mgr, err := connection.NewWithEndpoint(gateway.EnvironmentSandbox, gw.endpoint, certPath)
	if err != nil {
		t.Fatalf("NewWithEndpoint failed: %v", err)
	}
	mgr.SetLogger(fileLogger)
	mgr.SetConnectTimeout(2 * time.Second)
	mgr.SetRetryInterval(10 * time.Millisecond)
	mgr.SetWriteInterval(5 * time.Millisecond)
	mgr.SetProbeTimeout(200 * time.Millisecond)

	ctx := context.Background()

	if err := mgr.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// A good write leaves the stream quiet.
	if _, err := mgr.Write([]byte("good-token")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	result, _, err := mgr.CheckLiveness()
	if err != nil {
		t.Fatalf("CheckLiveness failed: %v", err)
	}
	if result != transport.StreamAlive {
		t.Fatalf("probe after good write = %v, want StreamAlive", result)
	}

	// A rejected write surfaces only through the delayed half-close.
	if _, err := mgr.Write([]byte("bad-token")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	result, _, err = mgr.CheckLiveness()
	if err != nil {
		t.Fatalf("CheckLiveness failed: %v", err)
	}
	if result != transport.StreamBroken {
		t.Fatalf("probe after rejected write = %v, want StreamBroken", result)
	}

	// The contract: disconnect and reconnect before further writes.
	if !mgr.Disconnect() {
		t.Fatal("Disconnect returned false with a live handle")
	}
	if err := mgr.Connect(ctx); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if _, err := mgr.Write([]byte("good-token")); err != nil {
		t.Fatalf("Write after reconnect failed: %v", err)
	}
	mgr.Disconnect()

	if err := fileLogger.Close(); err != nil {
		t.Fatalf("log close failed: %v", err)
	}

	// The captured log tells the whole story: two connect cycles, one
	// broken probe, no errors.
	reader, err := log.NewReader(logPath)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var (
		connections = map[string]struct{}{}
		successes   int
		brokenProbe bool
		errEvents   int
	)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("log decode failed: %v", err)
		}
		connections[event.ConnectionID] = struct{}{}
		if event.Attempt != nil && event.Attempt.Outcome == log.AttemptSucceeded {
			successes++
		}
		if event.Probe != nil && event.Probe.Result == transport.StreamBroken.String() {
			brokenProbe = true
		}
		if event.Error != nil {
			errEvents++
		}
	}

	if len(connections) != 2 {
		t.Errorf("connection cycles in log = %d, want 2", len(connections))
	}
	if successes != 2 {
		t.Errorf("successful attempts in log = %d, want 2", successes)
	}
	if !brokenProbe {
		t.Error("no broken probe event captured")
	}
	if errEvents != 0 {
		t.Errorf("error events = %d, want 0", errEvents)
	}
}
