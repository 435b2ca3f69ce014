package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
)

type testCredentials struct{}

func (testCredentials) Acquire(context.Context) (*google.Credential, error) {
	return &google.Credential{Token: "t", Expiry: time.Now().Add(time.Hour)}, nil
}
func (testCredentials) ServiceAccountEmail() (string, error) {
	return "gw@proj.iam.gserviceaccount.com", nil
}
func (testCredentials) Scopes() []string   { return []string{"https://www.googleapis.com/auth/drive"} }
func (testCredentials) CheckKeyFile() error { return nil }

func newServerContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), testCredentials{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestInstrumentedToolHandlerWithService_NoInstrumentation(t *testing.T) {
	sc := newServerContext(t)

	called := false
	wrapped := InstrumentedToolHandlerWithService("test_tool", instrumentation.ServiceDrive, instrumentation.OperationGet, sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NotNil(t, result)
}

func TestInstrumentedToolHandlerWithService_PassesErrorThrough(t *testing.T) {
	sc := newServerContext(t)
	expectedErr := errors.New("test error")

	wrapped := InstrumentedToolHandlerWithService("test_tool", instrumentation.ServiceDrive, instrumentation.OperationGet, sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	assert.Same(t, expectedErr, err)
}

func TestInstrumentedToolHandlerWithService_AuditsErrorResult(t *testing.T) {
	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), instrumentation.AuditLoggingConfig{Enabled: true})
	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)

	sc := newServerContext(t, server.WithMetrics(metrics), server.WithAuditLogger(audit))

	wrapped := InstrumentedToolHandlerWithService("download_file", instrumentation.ServiceDrive, instrumentation.OperationDownload, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return ArgumentError("file_id is required"), nil
		})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tool_failed", line["msg"])
	assert.Equal(t, "download_file", line["tool"])
	assert.Equal(t, "drive", line["service"])
	assert.Equal(t, "download", line["operation"])
	assert.Equal(t, "file_id is required", line["error"])
	assert.NotEmpty(t, line["invocation_id"])
	assert.NotEmpty(t, line["user_hash"])
}

func TestInstrumentedToolHandlerWithService_AuditsSuccess(t *testing.T) {
	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), instrumentation.AuditLoggingConfig{Enabled: true})
	sc := newServerContext(t, server.WithAuditLogger(audit))

	wrapped := InstrumentedToolHandlerWithService("list_files", instrumentation.ServiceDrive, instrumentation.OperationList, sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return JSONResult(map[string]any{"files": []any{}})
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tool_executed", line["msg"])
	assert.Equal(t, true, line["success"])
}

func TestInstrumentedToolHandlerWithService_RegistersWithServer(t *testing.T) {
	sc := newServerContext(t)

	var handler mcpserver.ToolHandlerFunc = InstrumentedToolHandlerWithService("echo", instrumentation.ServiceSheets, instrumentation.OperationRead, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return JSONResult(req.GetArguments())
		})

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool("echo", mcp.WithString("range")), handler)

	resp := s.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"range":"A1"}}}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Result.Content, 1)
	assert.JSONEq(t, `{"range":"A1"}`, decoded.Result.Content[0].Text)
}
