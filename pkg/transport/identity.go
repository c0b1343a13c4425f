package transport

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// Identity loading errors.
var (
	ErrIdentityRead       = errors.New("failed to read provider certificate")
	ErrIdentityParse      = errors.New("failed to parse provider certificate")
	ErrIdentityKey        = errors.New("invalid provider private key")
	ErrIdentityPassphrase = errors.New("provider key passphrase rejected")
)

// LoadIdentity loads the provider certificate and private key from path.
// Files with a .p12 or .pfx extension are decoded as PKCS#12 using the
// passphrase; anything else is treated as PEM with certificate and key
// in the same file. An encrypted PEM key is decrypted with the
// passphrase.
func LoadIdentity(path, passphrase string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityRead, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".p12", ".pfx":
		return loadPKCS12Identity(data, passphrase)
	default:
		return loadPEMIdentity(data, passphrase)
	}
}

func loadPKCS12Identity(data []byte, passphrase string) (tls.Certificate, error) {
	key, cert, err := pkcs12.Decode(data, passphrase)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityPassphrase, err)
		}
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityParse, err)
	}

	if key == nil {
		return tls.Certificate{}, ErrIdentityKey
	}

	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

func loadPEMIdentity(data []byte, passphrase string) (tls.Certificate, error) {
	var identity tls.Certificate

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch {
		case block.Type == "CERTIFICATE":
			identity.Certificate = append(identity.Certificate, block.Bytes)

		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			der := block.Bytes
			if x509.IsEncryptedPEMBlock(block) {
				der, _ = x509.DecryptPEMBlock(block, []byte(passphrase))
				// DecryptPEMBlock cannot reliably distinguish a wrong
				// passphrase from garbage input; the parse below catches
				// both.
			}
			key, err := parsePrivateKey(der)
			if err != nil {
				if x509.IsEncryptedPEMBlock(block) {
					return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityPassphrase, err)
				}
				return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityKey, err)
			}
			identity.PrivateKey = key
		}
	}

	if len(identity.Certificate) == 0 {
		return tls.Certificate{}, fmt.Errorf("%w: no certificate block found", ErrIdentityParse)
	}
	if identity.PrivateKey == nil {
		return tls.Certificate{}, fmt.Errorf("%w: no private key block found", ErrIdentityParse)
	}

	leaf, err := x509.ParseCertificate(identity.Certificate[0])
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrIdentityParse, err)
	}
	identity.Leaf = leaf

	return identity, nil
}

// parsePrivateKey tries the three DER encodings seen in provider key files.
func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("unsupported private key encoding")
}
