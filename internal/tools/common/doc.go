// Package common provides shared utilities for MCP tool implementations:
// argument parsing, uniform JSON rendering of results and failures, and the
// instrumentation wrapper every tool handler is registered through.
package common
