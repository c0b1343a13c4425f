package transport

import (
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// ProbeResult classifies the outcome of a post-write liveness probe.
type ProbeResult uint8

const (
	// StreamAlive indicates the probe window elapsed with nothing to
	// read; the connection is usable for the next write.
	StreamAlive ProbeResult = iota

	// StreamBroken indicates the peer half-closed the connection. The
	// caller must disconnect and reconnect before further writes.
	StreamBroken

	// StreamData indicates the gateway sent bytes, typically an error
	// response to an earlier write. The bytes are returned to the
	// caller; the gateway usually closes the connection right after.
	StreamData
)

// String returns the probe result name.
func (r ProbeResult) String() string {
	switch r {
	case StreamAlive:
		return "ALIVE"
	case StreamBroken:
		return "BROKEN"
	case StreamData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// probeReadSize bounds how many pending bytes a single probe returns.
const probeReadSize = 256

// Probe checks whether the peer has half-closed the connection.
//
// The gateway acknowledges nothing on success; a rejected write only
// becomes visible when the peer sends an error response or closes its
// end, both with some delay. Probe waits writeInterval for that delay
// to elapse, then polls the stream for readability for up to timeout.
//
// A timeout means the stream is quiet and the connection is considered
// alive. End-of-stream (or a reset) means the peer closed and the
// caller must reconnect before the next write. Any bytes read are
// returned with StreamData.
func (c *Conn) Probe(writeInterval, timeout time.Duration) (ProbeResult, []byte, error) {
	if c.closed() {
		return StreamBroken, nil, ErrConnectionClosed
	}

	time.Sleep(writeInterval)

	buf := make([]byte, probeReadSize)
	n, err := c.Read(buf, timeout)

	switch {
	case n > 0:
		return StreamData, buf[:n], nil

	case err == nil:
		return StreamAlive, nil, nil

	case isTimeout(err):
		return StreamAlive, nil, nil

	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, ErrConnectionClosed):
		return StreamBroken, nil, nil

	default:
		// Unclassified read error. Treat the stream as unusable and
		// hand the error to the caller.
		return StreamBroken, nil, err
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
