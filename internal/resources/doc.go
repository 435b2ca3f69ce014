// Package resources provides MCP resources describing the server's identity.
//
// The service-account resource reports which Google identity every tool call
// runs as, the scopes its tokens carry and whether the key is readable.
// It never mints a token.
package resources
