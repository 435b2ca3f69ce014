package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

const valueInputOptionDescription = "How input is interpreted: 'USER_ENTERED' parses formulas and numbers, 'RAW' stores strings as-is (default: USER_ENTERED)"

// registerValuesTools registers tools that read and write cell values
func registerValuesTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	readValuesTool := mcp.NewTool("read_sheet_values",
		mcp.WithDescription("Read the values of a range in a Google Sheets spreadsheet"),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation of the range, e.g. 'Sheet1!A1:C10'"),
		),
	)
	s.AddTool(readValuesTool, common.InstrumentedToolHandlerWithService("read_sheet_values",
		instrumentation.ServiceSheets, instrumentation.OperationRead, sc, handleReadValues(sc)))

	if readOnly {
		return nil
	}

	updateValuesTool := mcp.NewTool("update_sheet_values",
		mcp.WithDescription("Overwrite the values of a range in a Google Sheets spreadsheet"),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation of the range to write"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "array"}),
			mcp.Description("2D array of cell values, one inner array per row"),
		),
		mcp.WithString("value_input_option",
			mcp.Description(valueInputOptionDescription),
		),
	)
	s.AddTool(updateValuesTool, common.InstrumentedToolHandlerWithService("update_sheet_values",
		instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc, handleUpdateValues(sc)))

	appendValuesTool := mcp.NewTool("append_sheet_values",
		mcp.WithDescription("Append rows after the last row of the table in a range"),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation of the range used to find the table, e.g. 'Sheet1!A:C'"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "array"}),
			mcp.Description("2D array of rows to append"),
		),
		mcp.WithString("value_input_option",
			mcp.Description(valueInputOptionDescription),
		),
	)
	s.AddTool(appendValuesTool, common.InstrumentedToolHandlerWithService("append_sheet_values",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc, handleAppendValues(sc)))

	return nil
}

func handleReadValues(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, rng, errResult := idAndRange(request.GetArguments())
		if errResult != nil {
			return errResult, nil
		}

		vr, err := sc.SheetsClient().ReadValues(ctx, spreadsheetID, rng)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(vr)
	}
}

func handleUpdateValues(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		spreadsheetID, rng, errResult := idAndRange(args)
		if errResult != nil {
			return errResult, nil
		}
		values, err := common.ValuesArg(args, "values")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		resp, err := sc.SheetsClient().UpdateValues(ctx, spreadsheetID, rng, values, common.StringArg(args, "value_input_option"))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(resp)
	}
}

func handleAppendValues(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		spreadsheetID, rng, errResult := idAndRange(args)
		if errResult != nil {
			return errResult, nil
		}
		values, err := common.ValuesArg(args, "values")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		resp, err := sc.SheetsClient().AppendValues(ctx, spreadsheetID, rng, values, common.StringArg(args, "value_input_option"))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(resp)
	}
}

// idAndRange returns the spreadsheet_id and range arguments, or an error result.
// The range is not trimmed since sheet names may carry spaces.
func idAndRange(args map[string]any) (string, string, *mcp.CallToolResult) {
	spreadsheetID, err := common.RequiredString(args, "spreadsheet_id")
	if err != nil {
		return "", "", common.ArgumentError("%s", err)
	}
	if _, err := common.RequiredString(args, "range"); err != nil {
		return "", "", common.ArgumentError("%s", err)
	}
	return spreadsheetID, common.RawStringArg(args, "range"), nil
}
