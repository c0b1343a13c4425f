package connection

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defaults.
const (
	// DefaultConnectTimeout bounds a single connect-plus-handshake attempt.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultWriteInterval is the pause between a write and the
	// liveness probe poll.
	DefaultWriteInterval = 10 * time.Millisecond

	// DefaultProbeTimeout is how long the liveness probe polls the
	// stream for readability.
	DefaultProbeTimeout = 1 * time.Second
)

// Config holds the tunable connection settings. Mutate only via the
// Manager setters between connect calls; the manager snapshots the
// config at the start of each Connect so an in-flight attempt never
// observes a mutation.
type Config struct {
	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RetryTimes is the retry budget after the first failed attempt.
	RetryTimes int `yaml:"retry_times"`

	// RetryInterval is the constant pause between attempts.
	RetryInterval time.Duration `yaml:"retry_interval"`

	// WriteInterval is the pause between a write and the probe poll.
	WriteInterval time.Duration `yaml:"write_interval"`

	// ProbeTimeout is the probe readability-poll window.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// CertificatePath is the provider certificate file (PEM or PKCS#12).
	CertificatePath string `yaml:"certificate_path"`

	// CertificatePassphrase decrypts the provider private key (optional).
	CertificatePassphrase string `yaml:"certificate_passphrase"`

	// RootCAPath enables peer verification when set (optional).
	RootCAPath string `yaml:"root_ca_path"`
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: DefaultConnectTimeout,
		RetryTimes:     DefaultRetryTimes,
		RetryInterval:  DefaultRetryInterval,
		WriteInterval:  DefaultWriteInterval,
		ProbeTimeout:   DefaultProbeTimeout,
	}
}

// policy returns the retry policy for this configuration.
func (c Config) policy() Policy {
	return Policy{Times: c.RetryTimes, Interval: c.RetryInterval}
}

// UnmarshalYAML decodes a config mapping. Durations use Go duration
// syntax ("250ms", "1s"). Absent fields keep their current values, so
// a partial file overlays the defaults.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ConnectTimeout        string  `yaml:"connect_timeout"`
		RetryTimes            *int    `yaml:"retry_times"`
		RetryInterval         string  `yaml:"retry_interval"`
		WriteInterval         string  `yaml:"write_interval"`
		ProbeTimeout          string  `yaml:"probe_timeout"`
		CertificatePath       *string `yaml:"certificate_path"`
		CertificatePassphrase *string `yaml:"certificate_passphrase"`
		RootCAPath            *string `yaml:"root_ca_path"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	durations := []struct {
		text string
		dst  *time.Duration
	}{
		{raw.ConnectTimeout, &c.ConnectTimeout},
		{raw.RetryInterval, &c.RetryInterval},
		{raw.WriteInterval, &c.WriteInterval},
		{raw.ProbeTimeout, &c.ProbeTimeout},
	}
	for _, d := range durations {
		if d.text == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.text, err)
		}
		*d.dst = parsed
	}

	if raw.RetryTimes != nil {
		c.RetryTimes = *raw.RetryTimes
	}
	if raw.CertificatePath != nil {
		c.CertificatePath = *raw.CertificatePath
	}
	if raw.CertificatePassphrase != nil {
		c.CertificatePassphrase = *raw.CertificatePassphrase
	}
	if raw.RootCAPath != nil {
		c.RootCAPath = *raw.RootCAPath
	}
	return nil
}

// LoadConfigFile reads a YAML config file. Missing fields keep their
// defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
