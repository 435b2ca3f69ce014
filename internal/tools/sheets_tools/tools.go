package sheets_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/server"
)

// RegisterSheetsTools registers all Google Sheets-related tools with the MCP server
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerValuesTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register values tools: %w", err)
	}

	if err := registerSpreadsheetTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register spreadsheet tools: %w", err)
	}

	return nil
}
