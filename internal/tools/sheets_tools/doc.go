// Package sheets_tools exposes Google Sheets operations as MCP tools.
//
// Available tools:
//   - create_spreadsheet: Create an empty spreadsheet
//   - read_sheet_values: Read the values of an A1 range
//   - update_sheet_values: Overwrite the values of a range
//   - append_sheet_values: Append rows after the table found in a range
//   - batch_update_sheet: Apply raw spreadsheets.batchUpdate requests
//
// In read-only mode only read_sheet_values is registered.
//
// Values are passed as a 2D array, one inner array per row:
//
//	update_sheet_values({
//	  spreadsheet_id: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
//	  range: "Sheet1!A1:B2",
//	  values: [["Name", "Score"], ["Ada", 42]]
//	})
package sheets_tools
