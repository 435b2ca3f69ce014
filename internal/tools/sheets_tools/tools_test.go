package sheets_tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/server"
)

type testCredentials struct{}

func (testCredentials) Acquire(context.Context) (*google.Credential, error) {
	return &google.Credential{Token: "ya29.test", Expiry: time.Now().Add(time.Hour)}, nil
}
func (testCredentials) ServiceAccountEmail() (string, error) {
	return "gw@proj.iam.gserviceaccount.com", nil
}
func (testCredentials) Scopes() []string   { return []string{"https://www.googleapis.com/auth/drive"} }
func (testCredentials) CheckKeyFile() error { return nil }

type capturedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     map[string]any
}

// newSheetsServer answers every request with status and body and hands the
// captured request to the test.
func newSheetsServer(t *testing.T, status int, body string) (*server.ServerContext, <-chan capturedRequest) {
	t.Helper()
	captured := make(chan capturedRequest, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cr := capturedRequest{Method: r.Method, Path: r.URL.EscapedPath(), RawQuery: r.URL.RawQuery}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &cr.Body))
		}
		select {
		case captured <- cr:
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	sc, err := server.NewServerContext(context.Background(), testCredentials{},
		server.WithGatewayOptions(gateway.WithBaseURL(gateway.FamilyTabular, ts.URL+"/v4/")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, captured
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload), text.Text)
	return result, payload
}

func TestReadSheetValues(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK,
		`{"range":"Sheet1!A1:B2","majorDimension":"ROWS","values":[["Name","Score"],["Ada","42"]]}`)

	result, payload := call(t, handleReadValues(sc), map[string]any{
		"spreadsheet_id": "sheet-1",
		"range":          "Sheet1!A1:B2",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "Sheet1!A1:B2", payload["range"])
	assert.Len(t, payload["values"], 2)

	req := <-captured
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Sheet1%21A1:B2", req.Path)
}

func TestUpdateSheetValues(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK,
		`{"spreadsheetId":"sheet-1","updatedRange":"Sheet1!A1:B1","updatedRows":1,"updatedCells":2}`)

	result, payload := call(t, handleUpdateValues(sc), map[string]any{
		"spreadsheet_id": "sheet-1",
		"range":          "Sheet1!A1:B1",
		"values":         []any{[]any{"a", 1.0}},
	})
	assert.False(t, result.IsError)
	assert.Equal(t, 2.0, payload["updatedCells"])

	req := <-captured
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "valueInputOption=USER_ENTERED", req.RawQuery)
	assert.Equal(t, []any{[]any{"a", 1.0}}, req.Body["values"])
}

func TestAppendSheetValues_RawInput(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK,
		`{"spreadsheetId":"sheet-1","updates":{"updatedRows":1}}`)

	result, _ := call(t, handleAppendValues(sc), map[string]any{
		"spreadsheet_id":     "sheet-1",
		"range":              "Sheet1!A:B",
		"values":             `[["x","=1+1"]]`,
		"value_input_option": "RAW",
	})
	assert.False(t, result.IsError)

	req := <-captured
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Sheet1%21A:B:append", req.Path)
	assert.Equal(t, "valueInputOption=RAW", req.RawQuery)
}

func TestUpdateSheetValues_InvalidValues(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK, `{}`)

	result, payload := call(t, handleUpdateValues(sc), map[string]any{
		"spreadsheet_id": "sheet-1",
		"range":          "A1",
		"values":         []any{"not a row"},
	})
	assert.True(t, result.IsError)
	assert.Contains(t, payload["error"], "2D array")
	assert.Empty(t, captured)
}

func TestReadSheetValues_MissingRange(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK, `{}`)

	result, payload := call(t, handleReadValues(sc), map[string]any{"spreadsheet_id": "sheet-1", "range": " "})
	assert.True(t, result.IsError)
	assert.Equal(t, "range is required", payload["error"])
	assert.Empty(t, captured)
}

func TestReadSheetValues_APIError(t *testing.T) {
	sc, _ := newSheetsServer(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)

	result, payload := call(t, handleReadValues(sc), map[string]any{"spreadsheet_id": "sheet-1", "range": "A1"})
	assert.True(t, result.IsError)
	assert.Equal(t, "ApiError", payload["kind"])
	assert.Equal(t, 403.0, payload["status_code"])
	assert.Equal(t, map[string]any{"error": map[string]any{
		"code":    403.0,
		"message": "The caller does not have permission",
		"status":  "PERMISSION_DENIED",
	}}, payload["details"])
}

func TestCreateSpreadsheet(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK,
		`{"spreadsheetId":"new-sheet","properties":{"title":"Budget"}}`)

	result, payload := call(t, handleCreateSpreadsheet(sc), map[string]any{"title": "Budget"})
	assert.False(t, result.IsError)
	assert.Equal(t, "new-sheet", payload["spreadsheetId"])

	req := <-captured
	assert.Equal(t, "/v4/spreadsheets", req.Path)
	assert.Equal(t, map[string]any{"title": "Budget"}, req.Body["properties"])
}

func TestBatchUpdateSheet(t *testing.T) {
	sc, captured := newSheetsServer(t, http.StatusOK, `{"spreadsheetId":"sheet-1","replies":[{}]}`)

	requests := []any{map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": "Q3"}}}}
	result, _ := call(t, handleBatchUpdate(sc), map[string]any{
		"spreadsheet_id": "sheet-1",
		"requests":       requests,
	})
	assert.False(t, result.IsError)

	req := <-captured
	assert.Equal(t, "/v4/spreadsheets/sheet-1:batchUpdate", req.Path)
	assert.Equal(t, requests, req.Body["requests"])
}

func registeredTools(t *testing.T, readOnly bool) []string {
	t.Helper()
	sc, _ := newSheetsServer(t, http.StatusOK, `{}`)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterSheetsTools(s, sc, readOnly))

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	names := make([]string, 0, len(decoded.Result.Tools))
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestRegisterSheetsTools(t *testing.T) {
	assert.Equal(t, []string{
		"append_sheet_values", "batch_update_sheet", "create_spreadsheet",
		"read_sheet_values", "update_sheet_values",
	}, registeredTools(t, false))
	assert.Equal(t, []string{"read_sheet_values"}, registeredTools(t, true))
}
