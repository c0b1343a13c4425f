package connection

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pushgate-project/pushgate-go/pkg/gateway"
	"github.com/pushgate-project/pushgate-go/pkg/log"
	"github.com/pushgate-project/pushgate-go/pkg/transport"
)

// Manager owns the lifecycle of a single gateway connection. A manager
// is bound to one environment at construction, runs at most one connect
// loop at a time and holds at most one live connection.
//
// Connect, Disconnect and the setters are expected to be driven from a
// single control flow per instance. The internal mutex protects the
// state fields against the occasional cross-goroutine status read, not
// against concurrent lifecycle calls.
type Manager struct {
	mu sync.Mutex

	environment gateway.Environment
	endpoint    gateway.Endpoint
	config      Config

	state  State
	conn   *transport.Conn
	connID string

	logger log.Logger

	// sleep pauses between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a manager for the given environment and provider
// certificate. The environment is resolved once here; an unknown value
// or an unreadable certificate file is a *ConfigError.
func New(env gateway.Environment, certificatePath string) (*Manager, error) {
	endpoint, err := gateway.Resolve(env)
	if err != nil {
		return nil, &ConfigError{Setting: "environment", Err: err}
	}

	if err := checkReadable(certificatePath); err != nil {
		return nil, &ConfigError{Setting: "certificate path", Err: err}
	}

	cfg := DefaultConfig()
	cfg.CertificatePath = certificatePath

	return &Manager{
		environment: env,
		endpoint:    endpoint,
		config:      cfg,
		state:       StateDisconnected,
		logger:      log.NoopLogger{},
		sleep:       sleepContext,
	}, nil
}

// NewWithEndpoint creates a manager bound to an explicit gateway
// endpoint instead of the environment's default address. Useful for
// proxies and local test gateways.
func NewWithEndpoint(env gateway.Environment, endpoint gateway.Endpoint, certificatePath string) (*Manager, error) {
	if !env.Valid() {
		return nil, &ConfigError{Setting: "environment", Err: gateway.ErrUnknownEnvironment}
	}

	if err := checkReadable(certificatePath); err != nil {
		return nil, &ConfigError{Setting: "certificate path", Err: err}
	}

	cfg := DefaultConfig()
	cfg.CertificatePath = certificatePath

	return &Manager{
		environment: env,
		endpoint:    endpoint,
		config:      cfg,
		state:       StateDisconnected,
		logger:      log.NoopLogger{},
		sleep:       sleepContext,
	}, nil
}

// SetLogger installs the event observer. Pass nil to disable.
func (m *Manager) SetLogger(logger log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if logger == nil {
		logger = log.NoopLogger{}
	}
	m.logger = logger
}

// Environment returns the deployment this manager is bound to.
func (m *Manager) Environment() gateway.Environment {
	return m.environment
}

// Endpoint returns the resolved gateway endpoint.
func (m *Manager) Endpoint() gateway.Endpoint {
	return m.endpoint
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected returns true if a live connection is held.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Conn returns the live connection, or nil when disconnected.
// Collaborators write on it directly and must not hold it past a
// Disconnect.
func (m *Manager) Conn() *transport.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Setters take effect for the next Connect call. Mutating settings
// while connected does not affect the live connection.

// SetConnectTimeout sets the per-attempt connect timeout.
func (m *Manager) SetConnectTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ConnectTimeout = d
}

// SetRetryTimes sets the retry budget. N retries means N+1 total
// attempts per Connect.
func (m *Manager) SetRetryTimes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.RetryTimes = n
}

// SetRetryInterval sets the constant pause between attempts.
func (m *Manager) SetRetryInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.RetryInterval = d
}

// SetWriteInterval sets the pause between a write and the probe poll.
func (m *Manager) SetWriteInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.WriteInterval = d
}

// SetProbeTimeout sets the probe readability-poll window.
func (m *Manager) SetProbeTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ProbeTimeout = d
}

// SetCertificatePassphrase sets the passphrase for the provider key.
func (m *Manager) SetCertificatePassphrase(passphrase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.CertificatePassphrase = passphrase
}

// SetRootCA sets the root CA bundle and turns peer verification on for
// subsequent connects. An unreadable path is a *ConfigError and leaves
// the previous CA setting untouched.
func (m *Manager) SetRootCA(path string) error {
	if err := checkReadable(path); err != nil {
		return &ConfigError{Setting: "root CA path", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.RootCAPath = path
	return nil
}

// Connect establishes a connection to the gateway, retrying failed
// attempts at a fixed interval until the retry budget is exhausted.
// Per-attempt failures are reported to the observer and swallowed; only
// budget exhaustion (or context cancellation) surfaces, as a
// *ConnectError. Certificate loading failures are returned immediately
// without consuming the budget.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateConnecting:
		m.mu.Unlock()
		return ErrConnectInFlight
	}

	cfg := m.config
	logger := m.logger
	connID := uuid.NewString()
	m.connID = connID
	m.state = StateConnecting
	m.mu.Unlock()

	m.logStateChange(logger, connID, StateDisconnected, StateConnecting, "")

	client, err := transport.NewClient(transport.ClientConfig{
		TLSConfig: &transport.TLSConfig{
			CertificatePath:       cfg.CertificatePath,
			CertificatePassphrase: cfg.CertificatePassphrase,
			RootCAPath:            cfg.RootCAPath,
		},
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		m.setDisconnected(logger, connID, "certificate error")
		m.logError(logger, connID, err, "loading certificate material")
		return err
	}

	policy := cfg.policy()

	for attempt := 0; ; attempt++ {
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Level:        log.LevelInfo,
			Environment:  m.environment.String(),
			RemoteAddr:   m.endpoint.Addr(),
			Attempt: &log.AttemptEvent{
				Outcome: log.AttemptStarted,
				Attempt: attempt,
				Budget:  policy.Times,
			},
		})

		conn, err := m.attempt(ctx, client, cfg)
		if err == nil {
			m.mu.Lock()
			m.conn = conn
			m.state = StateConnected
			m.mu.Unlock()

			logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: connID,
				Level:        log.LevelInfo,
				Environment:  m.environment.String(),
				RemoteAddr:   m.endpoint.Addr(),
				Attempt: &log.AttemptEvent{
					Outcome: log.AttemptSucceeded,
					Attempt: attempt,
					Budget:  policy.Times,
				},
			})
			m.logStateChange(logger, connID, StateConnecting, StateConnected, "")
			return nil
		}

		// The loop never gives up silently: every failure is reported
		// before the retry decision.
		retrying := policy.ShouldRetry(attempt + 1)

		failure := &log.AttemptEvent{
			Outcome: log.AttemptFailed,
			Attempt: attempt,
			Budget:  policy.Times,
			Reason:  err.Error(),
		}
		level := log.LevelError
		if retrying {
			level = log.LevelWarn
			failure.RetryIn = policy.Interval
		}
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Level:        level,
			Environment:  m.environment.String(),
			RemoteAddr:   m.endpoint.Addr(),
			Attempt:      failure,
		})

		if !retrying {
			m.setDisconnected(logger, connID, "retry budget exhausted")
			return &ConnectError{
				Endpoint: m.endpoint.Addr(),
				Attempts: attempt + 1,
				Err:      err,
			}
		}

		if err := m.sleep(ctx, policy.Interval); err != nil {
			m.setDisconnected(logger, connID, "cancelled")
			return &ConnectError{
				Endpoint: m.endpoint.Addr(),
				Attempts: attempt + 1,
				Err:      err,
			}
		}
	}
}

// attempt runs a single dial-plus-handshake bounded by the configured
// connect timeout.
func (m *Manager) attempt(ctx context.Context, client *transport.Client, cfg Config) (*transport.Conn, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	return client.Connect(attemptCtx, m.endpoint)
}

// Disconnect closes the live connection. Returns true when a connection
// was closed, false when already disconnected. Never errors; calling it
// repeatedly is harmless.
func (m *Manager) Disconnect() bool {
	m.mu.Lock()
	conn := m.conn
	connID := m.connID
	logger := m.logger
	oldState := m.state
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if conn == nil {
		return false
	}

	_ = conn.Close()
	m.logStateChange(logger, connID, oldState, StateDisconnected, "disconnect requested")
	return true
}

// Write sends application data on the live connection.
func (m *Manager) Write(data []byte) (int, error) {
	conn := m.Conn()
	if conn == nil {
		return 0, ErrNotConnected
	}
	return conn.Write(data)
}

// CheckLiveness runs the post-write probe with the configured write
// interval and probe timeout. A StreamBroken result means the peer has
// closed; the caller must Disconnect and Connect before further writes.
// Bytes returned with StreamData are the gateway's pending response.
func (m *Manager) CheckLiveness() (transport.ProbeResult, []byte, error) {
	m.mu.Lock()
	conn := m.conn
	connID := m.connID
	cfg := m.config
	logger := m.logger
	m.mu.Unlock()

	if conn == nil {
		return transport.StreamBroken, nil, ErrNotConnected
	}

	result, data, err := conn.Probe(cfg.WriteInterval, cfg.ProbeTimeout)

	level := log.LevelInfo
	if result == transport.StreamBroken {
		level = log.LevelWarn
	}
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Level:        level,
		Environment:  m.environment.String(),
		RemoteAddr:   m.endpoint.Addr(),
		Probe: &log.ProbeEvent{
			Result: result.String(),
			Bytes:  len(data),
		},
	})

	return result, data, err
}

func (m *Manager) setDisconnected(logger log.Logger, connID, reason string) {
	m.mu.Lock()
	oldState := m.state
	m.state = StateDisconnected
	m.mu.Unlock()
	m.logStateChange(logger, connID, oldState, StateDisconnected, reason)
}

func (m *Manager) logStateChange(logger log.Logger, connID string, oldState, newState State, reason string) {
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Level:        log.LevelInfo,
		Environment:  m.environment.String(),
		RemoteAddr:   m.endpoint.Addr(),
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
}

func (m *Manager) logError(logger log.Logger, connID string, err error, context string) {
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Level:        log.LevelError,
		Environment:  m.environment.String(),
		RemoteAddr:   m.endpoint.Addr(),
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	})
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unreadable file: %w", err)
	}
	return f.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
