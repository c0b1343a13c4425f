// Package connection provides gateway connection lifecycle management.
//
// This package handles:
//   - Connection state tracking (disconnected, connecting, connected)
//   - Bounded retry with a fixed, configurable interval
//   - Configuration snapshotting per connect call
//   - Liveness checking via the transport probe
//
// # Retry Strategy
//
// The gateway protocol expects a constant pause between attempts, not
// exponential backoff. A retry count of N permits N+1 total attempts
// (one initial attempt plus N retries) before Connect fails:
//
//  1. Attempt connection (bounded by the connect timeout)
//  2. On failure: report to the observer, pause the retry interval
//  3. Repeat until connected or the budget is exhausted
//
// Per-attempt failures are reported to the configured log.Logger and
// swallowed; only budget exhaustion surfaces to the caller, as a
// *ConnectError.
//
// # Single Connection
//
// A Manager owns at most one live connection and runs at most one
// connect loop at a time. It is not a pool. Multiple Manager instances
// share no state and may run concurrently without coordination.
package connection
