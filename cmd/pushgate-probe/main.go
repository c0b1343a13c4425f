// Command pushgate-probe checks connectivity to a push gateway.
//
// It establishes a mutually-authenticated TLS connection to the
// configured gateway deployment, optionally writes a test payload and
// runs the post-write liveness probe, then disconnects. The exit code
// reports the outcome, which makes the tool usable from health checks.
//
// Usage:
//
//	pushgate-probe -cert provider.pem [flags]
//
// Flags:
//
//	-env string            Gateway environment: production, sandbox (default "sandbox")
//	-config string         YAML configuration file path
//	-cert string           Provider certificate file (PEM or PKCS#12)
//	-passphrase string     Passphrase for the provider private key
//	-root-ca string        Root CA bundle enabling peer verification
//	-retry-times int       Retry budget after the first failed attempt (default 3)
//	-retry-interval duration  Pause between attempts (default 1s)
//	-timeout duration      Per-attempt connect timeout (default 30s)
//	-payload string        Optional payload to write before probing
//	-protocol-log string   Write connection events to a CBOR .pglog file
//	-log-level string      Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Probe the sandbox gateway
//	pushgate-probe -cert provider.pem
//
//	# Probe production with peer verification and event capture
//	pushgate-probe -env production -cert provider.p12 -passphrase secret \
//	    -root-ca entrust.pem -protocol-log probe.pglog
//
// Exit codes: 0 connected and stream alive, 1 configuration error,
// 2 connect failed after exhausting the retry budget, 3 stream broken.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pushgate-project/pushgate-go/pkg/connection"
	"github.com/pushgate-project/pushgate-go/pkg/gateway"
	"github.com/pushgate-project/pushgate-go/pkg/log"
	"github.com/pushgate-project/pushgate-go/pkg/transport"
)

const (
	exitOK = iota
	exitConfig
	exitConnect
	exitBroken
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envName       = flag.String("env", "sandbox", "gateway environment: production, sandbox")
		configFile    = flag.String("config", "", "YAML configuration file path")
		certPath      = flag.String("cert", "", "provider certificate file (PEM or PKCS#12)")
		passphrase    = flag.String("passphrase", "", "passphrase for the provider private key")
		rootCA        = flag.String("root-ca", "", "root CA bundle enabling peer verification")
		retryTimes    = flag.Int("retry-times", connection.DefaultRetryTimes, "retry budget after the first failed attempt")
		retryInterval = flag.Duration("retry-interval", connection.DefaultRetryInterval, "pause between attempts")
		timeout       = flag.Duration("timeout", connection.DefaultConnectTimeout, "per-attempt connect timeout")
		payload       = flag.String("payload", "", "optional payload to write before probing")
		protocolLog   = flag.String("protocol-log", "", "write connection events to a CBOR .pglog file")
		logLevel      = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()
	seen := flagsSeen(flag.CommandLine)

	logger := newLogger(*logLevel)

	env, err := gateway.ParseEnvironment(*envName)
	if err != nil {
		logger.Error("invalid environment", "error", err)
		return exitConfig
	}

	cfg := connection.DefaultConfig()
	if *configFile != "" {
		cfg, err = connection.LoadConfigFile(*configFile)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			return exitConfig
		}
	}

	// Flags override the config file.
	if *certPath != "" {
		cfg.CertificatePath = *certPath
	}
	if cfg.CertificatePath == "" {
		logger.Error("no provider certificate configured (use -cert or a config file)")
		return exitConfig
	}

	mgr, err := connection.New(env, cfg.CertificatePath)
	if err != nil {
		logger.Error("failed to create manager", "error", err)
		return exitConfig
	}

	mgr.SetConnectTimeout(pick(seen["timeout"], *timeout, cfg.ConnectTimeout))
	mgr.SetRetryTimes(pick(seen["retry-times"], *retryTimes, cfg.RetryTimes))
	mgr.SetRetryInterval(pick(seen["retry-interval"], *retryInterval, cfg.RetryInterval))
	mgr.SetWriteInterval(cfg.WriteInterval)
	mgr.SetProbeTimeout(cfg.ProbeTimeout)

	if *passphrase != "" {
		cfg.CertificatePassphrase = *passphrase
	}
	if cfg.CertificatePassphrase != "" {
		mgr.SetCertificatePassphrase(cfg.CertificatePassphrase)
	}

	if *rootCA != "" {
		cfg.RootCAPath = *rootCA
	}
	if cfg.RootCAPath != "" {
		if err := mgr.SetRootCA(cfg.RootCAPath); err != nil {
			logger.Error("invalid root CA", "error", err)
			return exitConfig
		}
	}

	observer := log.Logger(log.NewSlogAdapter(logger))
	if *protocolLog != "" {
		fl, err := log.NewFileLogger(*protocolLog)
		if err != nil {
			logger.Error("failed to open protocol log", "error", err)
			return exitConfig
		}
		defer fl.Close()
		observer = log.NewMultiLogger(observer, fl)
	}
	mgr.SetLogger(observer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting", "environment", env.String(), "endpoint", mgr.Endpoint().String())

	start := time.Now()
	if err := mgr.Connect(ctx); err != nil {
		var connErr *connection.ConnectError
		if errors.As(err, &connErr) {
			logger.Error("connect failed",
				"attempts", connErr.Attempts,
				"error", connErr.Unwrap(),
			)
			return exitConnect
		}
		logger.Error("connect failed", "error", err)
		return exitConfig
	}
	defer mgr.Disconnect()

	logger.Info("connected",
		"elapsed", time.Since(start),
		"remote", mgr.Conn().RemoteAddr().String(),
		"tls_version", tlsVersionName(mgr.Conn().TLSState().Version),
	)

	if *payload != "" {
		if _, err := mgr.Write([]byte(*payload)); err != nil {
			logger.Error("write failed", "error", err)
			return exitBroken
		}
	}

	result, data, err := mgr.CheckLiveness()
	if err != nil {
		logger.Error("liveness probe failed", "error", err)
		return exitBroken
	}

	switch result {
	case transport.StreamBroken:
		logger.Warn("gateway closed the connection")
		return exitBroken
	case transport.StreamData:
		logger.Info("gateway responded", "bytes", len(data), "data", fmt.Sprintf("%x", data))
	}

	logger.Info("stream alive")
	return exitOK
}

// flagsSeen records which flags were passed on the command line. A
// flag explicitly set to its default value still counts as set.
func flagsSeen(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

// pick returns the flag value when the flag was passed, otherwise the
// config-file value (which already carries the default when no file or
// key was given).
func pick[T any](set bool, flagVal, cfgVal T) T {
	if set {
		return flagVal
	}
	return cfgVal
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func tlsVersionName(v uint16) string {
	switch v {
	case 0x0303:
		return "1.2"
	case 0x0304:
		return "1.3"
	default:
		return fmt.Sprintf("%x", v)
	}
}
