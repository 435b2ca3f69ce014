// Package config holds the process-wide configuration for sheetdrive.
//
// A Config is built once at startup from command-line flags with environment
// variable fallbacks and is then passed explicitly into the constructors that
// need it (credential provider, servers). Nothing below cmd/ reads the
// environment directly.
//
// Environment variables:
//   - GOOGLE_SERVICE_ACCOUNT_FILE: path to the service-account key file
//   - GOOGLE_DRIVE_SCOPES: comma or space separated OAuth scopes
//   - HOST, PORT: listen address for the streamable-http transport
//   - MCP_TRANSPORT: stdio or streamable-http
//   - READ_ONLY: register only read tools
//   - METRICS_ENABLED, METRICS_ADDR: dedicated Prometheus metrics server
package config
