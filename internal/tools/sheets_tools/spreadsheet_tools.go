package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

// registerSpreadsheetTools registers spreadsheet-level tools
func registerSpreadsheetTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("create_spreadsheet",
		mcp.WithDescription("Create a new, empty Google Sheets spreadsheet"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the spreadsheet"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("create_spreadsheet",
		instrumentation.ServiceSheets, instrumentation.OperationCreate, sc, handleCreateSpreadsheet(sc)))

	batchUpdateTool := mcp.NewTool("batch_update_sheet",
		mcp.WithDescription("Apply spreadsheets.batchUpdate requests, e.g. addSheet, updateCells or repeatCell"),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithArray("requests",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "object"}),
			mcp.Description("Array of Sheets API Request objects, applied in order"),
		),
	)
	s.AddTool(batchUpdateTool, common.InstrumentedToolHandlerWithService("batch_update_sheet",
		instrumentation.ServiceSheets, instrumentation.OperationBatchUpdate, sc, handleBatchUpdate(sc)))

	return nil
}

func handleCreateSpreadsheet(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := common.RequiredString(request.GetArguments(), "title")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		spreadsheet, err := sc.SheetsClient().CreateSpreadsheet(ctx, title)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(spreadsheet)
	}
}

func handleBatchUpdate(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheet_id")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}
		requests, err := common.ListArg(args, "requests")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		resp, err := sc.SheetsClient().BatchUpdate(ctx, spreadsheetID, requests)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(resp)
	}
}
