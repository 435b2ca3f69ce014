// Package server provides the MCP server context and the HTTP surfaces of
// the sheetdrive process.
//
// # Key Components
//
// ServerContext owns the credential source, the gateway and the Drive and
// Sheets clients built on it, plus the optional metrics recorder and audit
// logger. Tool handlers reach every dependency through it.
//
// HTTPServer serves the MCP streamable-http transport at /mcp together with
// the health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, including service account key readability
//   - /healthz/detailed: uptime, hashed principal and scopes
//
// MetricsServer exposes Prometheus metrics on a separate listener.
package server
