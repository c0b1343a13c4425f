// Package transport implements the TLS transport for gateway connections.
//
// The transport layer handles:
//   - TLS connections with client-certificate authentication
//   - Provider identity loading (PEM and PKCS#12, optional passphrase)
//   - Optional peer verification against a configured root CA
//   - Post-write liveness probing for peer half-close detection
//
// # Peer Verification
//
// When a root CA file is configured, the server certificate chain is
// verified against it and the connection fails on mismatch. Without a
// root CA the transport connects with verification disabled. This mode
// is explicitly insecure and exists only for compatibility with
// deployments that pin no CA.
//
// # Liveness
//
// The gateway sends no synchronous write acknowledgement. A rejected
// write is only discoverable through a delayed half-close (or an error
// frame) from the peer. Conn.Probe polls the stream for readability
// after a write so callers can detect a broken connection before the
// next write. See the Probe documentation for the contract.
package transport
