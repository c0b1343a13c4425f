// Package gateway defines the fixed push-gateway deployments a client
// can connect to.
//
// The gateway service runs two deployments of the same protocol:
//
//   - Production: live traffic, tokens issued for production apps
//   - Sandbox: development traffic, tokens issued for test builds
//
// A client selects one deployment via the Environment value at
// construction time and never switches at runtime. The concrete
// addresses are static configuration data, not protocol; they are
// exposed only through Resolve.
package gateway
