package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/drive"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

// registerFileTools registers file listing, metadata, download and upload tools
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFilesTool := mcp.NewTool("list_files",
		mcp.WithDescription("List files in Google Drive with optional filtering and pagination"),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of files to return (default: 10)"),
		),
		mcp.WithString("q",
			mcp.Description("Drive query, e.g. \"name contains 'report'\" or \"mimeType='application/pdf'\""),
		),
		mcp.WithString("page_token",
			mcp.Description("Token from a previous call's nextPageToken"),
		),
	)
	s.AddTool(listFilesTool, common.InstrumentedToolHandlerWithService("list_files",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc, handleListFiles(sc)))

	getFileInfoTool := mcp.NewTool("get_file_info",
		mcp.WithDescription("Get metadata for a file or folder in Google Drive"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(getFileInfoTool, common.InstrumentedToolHandlerWithService("get_file_info",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc, handleGetFileInfo(sc)))

	downloadFileTool := mcp.NewTool("download_file",
		mcp.WithDescription("Download a file from Google Drive as base64. Files over 10 MiB or of unknown size are refused."),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to download"),
		),
	)
	s.AddTool(downloadFileTool, common.InstrumentedToolHandlerWithService("download_file",
		instrumentation.ServiceDrive, instrumentation.OperationDownload, sc, handleDownloadFile(sc)))

	if readOnly {
		return nil
	}

	uploadFileTool := mcp.NewTool("upload_file",
		mcp.WithDescription("Upload a file to Google Drive"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The file content, standard base64 encoded"),
		),
		mcp.WithString("mime_type",
			mcp.Description("The MIME type of the file (default: text/plain)"),
		),
		mcp.WithString("parent_id",
			mcp.Description("ID of the folder to place the file in (default: Drive root)"),
		),
	)
	s.AddTool(uploadFileTool, common.InstrumentedToolHandlerWithService("upload_file",
		instrumentation.ServiceDrive, instrumentation.OperationUpload, sc, handleUploadFile(sc)))

	return nil
}

func handleListFiles(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		pageSize, err := common.IntArg(args, "page_size", drive.DefaultPageSize)
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		list, err := sc.DriveClient().ListFiles(ctx, drive.ListOptions{
			PageSize:  pageSize,
			Query:     common.RawStringArg(args, "q"),
			PageToken: common.StringArg(args, "page_token"),
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(list)
	}
}

func handleGetFileInfo(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fileID, err := common.RequiredString(request.GetArguments(), "file_id")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		info, err := sc.DriveClient().GetFile(ctx, fileID)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(info)
	}
}

func handleDownloadFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fileID, err := common.RequiredString(request.GetArguments(), "file_id")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}

		result, err := sc.DriveClient().DownloadFile(ctx, fileID)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(result)
	}
}

func handleUploadFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		name, err := common.RequiredString(args, "name")
		if err != nil {
			return common.ArgumentError("%s", err), nil
		}
		// Empty content is a valid empty file.
		content, ok := args["content"].(string)
		if !ok {
			return common.ArgumentError("content is required"), nil
		}

		info, err := sc.DriveClient().UploadFile(ctx, drive.UploadOptions{
			Name:     name,
			Content:  content,
			MimeType: common.StringArg(args, "mime_type"),
			ParentID: common.StringArg(args, "parent_id"),
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(info)
	}
}
