package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

// registerFolderTools registers folder management tools
func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	createFolderTool := mcp.NewTool("create_folder",
		mcp.WithDescription("Create a new folder in Google Drive"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the folder"),
		),
		mcp.WithString("parent_id",
			mcp.Description("ID of the parent folder (default: Drive root)"),
		),
	)
	s.AddTool(createFolderTool, common.InstrumentedToolHandlerWithService("create_folder",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc, handleCreateFolder(sc)))

	return nil
}

func handleCreateFolder(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		name, err := common.RequiredString(args, "name")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		folder, err := sc.DriveClient().CreateFolder(ctx, name, common.StringArg(args, "parent_id"))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(folder)
	}
}
