// Package drive_tools exposes Google Drive operations as MCP tools.
//
// Available tools:
//   - list_files: List files with an optional Drive query and pagination
//   - get_file_info: Get metadata for a file or folder
//   - download_file: Download a file of at most 10 MiB as base64
//   - upload_file: Upload base64 content as a new file
//   - create_folder: Create a folder
//   - share_file: Grant a user access to a file
//   - debug_api_connection: Check the service account, its token and Drive access
//
// In read-only mode only list_files, get_file_info, download_file and
// debug_api_connection are registered.
//
// Example tool usage:
//
//	list_files({
//	  q: "mimeType='application/pdf' and name contains 'invoice'",
//	  page_size: 25
//	})
//
//	upload_file({
//	  name: "notes.txt",
//	  content: "aGVsbG8=",
//	  parent_id: "folder_id"
//	})
package drive_tools
