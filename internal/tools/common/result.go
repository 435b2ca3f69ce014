package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/sheetdrive/internal/gateway"
)

// JSONResult renders v as a pretty-printed JSON text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Errorf("failed to encode result: %w", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult renders err as the uniform {"error", "kind", ...} object with
// IsError set. Errors that are not gateway failures render as InternalError.
func ErrorResult(err error) *mcp.CallToolResult {
	return errorPayload(gateway.AsFailure(err).Payload())
}

// ArgumentError renders an invalid-argument message as {"error": msg}.
func ArgumentError(format string, args ...any) *mcp.CallToolResult {
	return errorPayload(map[string]any{"error": fmt.Sprintf(format, args...)})
}

func errorPayload(payload map[string]any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"error": %q}`, err.Error()))
	}
	return mcp.NewToolResultError(string(data))
}

// resultError extracts the error message of an IsError result for audit logs.
func resultError(result *mcp.CallToolResult) error {
	for _, c := range result.Content {
		text, ok := c.(mcp.TextContent)
		if !ok {
			continue
		}
		var payload struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.Unmarshal([]byte(text.Text), &payload) == nil && payload.Error != "" {
			if payload.Kind != "" {
				return fmt.Errorf("%s: %s", payload.Kind, payload.Error)
			}
			return errors.New(payload.Error)
		}
		return errors.New(text.Text)
	}
	return errors.New("tool returned an error result")
}
