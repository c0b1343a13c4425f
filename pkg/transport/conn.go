package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"
)

// ErrConnectionClosed indicates an operation on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Conn is a live gateway connection. It is owned by a single manager;
// collaborators write application data directly on it and run Probe
// after each write.
type Conn struct {
	conn     *tls.Conn
	tlsState tls.ConnectionState
	closeCh  chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex
}

func newConn(tlsConn *tls.Conn) *Conn {
	return &Conn{
		conn:     tlsConn,
		tlsState: tlsConn.ConnectionState(),
		closeCh:  make(chan struct{}),
	}
}

// TLSState returns the TLS connection state.
func (c *Conn) TLSState() tls.ConnectionState {
	return c.tlsState
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Write sends application data to the gateway.
func (c *Conn) Write(data []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return 0, ErrConnectionClosed
	default:
	}

	return c.conn.Write(data)
}

// Read reads from the gateway with a timeout. A zero timeout blocks
// until data arrives.
func (c *Conn) Read(buf []byte, timeout time.Duration) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return 0, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	return c.conn.Read(buf)
}

// Close closes the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) closed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}
