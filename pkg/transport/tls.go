package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// Root CA errors.
var (
	ErrRootCARead  = errors.New("failed to read root CA file")
	ErrRootCAParse = errors.New("no certificates found in root CA file")
)

// TLSConfig holds the certificate material for a gateway connection.
type TLSConfig struct {
	// CertificatePath is the provider certificate file (PEM or PKCS#12).
	// Required.
	CertificatePath string

	// CertificatePassphrase decrypts the provider private key.
	// Optional; empty means the key is unencrypted.
	CertificatePassphrase string

	// RootCAPath is a PEM bundle of trusted CA certificates. When set,
	// the gateway certificate chain is verified against it. When empty
	// the connection is made without peer verification.
	RootCAPath string
}

// NewClientTLSConfig builds a *tls.Config from the certificate material.
// The result is immutable; build a fresh one from the current settings
// before each connection attempt.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil || cfg.CertificatePath == "" {
		return nil, fmt.Errorf("%w: no certificate path configured", ErrIdentityRead)
	}

	identity, err := LoadIdentity(cfg.CertificatePath, cfg.CertificatePassphrase)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{identity},
	}

	if cfg.RootCAPath == "" {
		// Compatibility mode: no CA pinned, no peer verification.
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig, nil
	}

	pool, err := LoadRootCAs(cfg.RootCAPath)
	if err != nil {
		return nil, err
	}
	tlsConfig.RootCAs = pool

	return tlsConfig, nil
}

// LoadRootCAs reads a PEM bundle of CA certificates into a pool.
func LoadRootCAs(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootCARead, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%w: %s", ErrRootCAParse, path)
	}
	return pool, nil
}
