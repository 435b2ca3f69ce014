// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the sheetdrive MCP server.
//
// # Metrics
//
// Gateway:
//   - google_api_requests_total / google_api_request_duration_seconds: one
//     sample per dispatched request, by service, method, status and error kind
//   - credential_acquisitions_total: service-account token exchanges by result
//
// Tools:
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds
//   - google_api_operations_total / google_api_operation_duration_seconds: one
//     sample per tool-level operation, which may span several requests
//
// Transport:
//   - http_requests_total / http_request_duration_seconds for the
//     streamable-http listener
//
// # Tracing
//
// Each dispatched request gets a client span named google.<service>.<method>.
// Tool invocations get a server span named tool.<name>.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - METRICS_DETAILED_LABELS: add request paths to API metrics
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
package instrumentation
