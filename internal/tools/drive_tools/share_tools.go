package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

// registerShareTools registers file sharing tools
func registerShareTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	shareFileTool := mcp.NewTool("share_file",
		mcp.WithDescription("Share a Google Drive file with a user. The user is notified by email."),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to share"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the user to share with"),
		),
		mcp.WithString("role",
			mcp.Description("The role to grant: 'reader', 'commenter', 'writer' or 'owner' (default: reader)"),
		),
	)
	s.AddTool(shareFileTool, common.InstrumentedToolHandlerWithService("share_file",
		instrumentation.ServiceDrive, instrumentation.OperationShare, sc, handleShareFile(sc)))

	return nil
}

func handleShareFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fileID, err := common.RequiredString(args, "file_id")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}
		email, err := common.RequiredString(args, "email")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		perm, err := sc.DriveClient().ShareFile(ctx, fileID, email, common.StringArg(args, "role"))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(perm)
	}
}
