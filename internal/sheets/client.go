package sheets

import (
	"context"
	"net/http"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/sheetdrive/internal/gateway"
)

// DefaultValueInputOption makes the API parse input as if typed into the UI.
const DefaultValueInputOption = "USER_ENTERED"

// Client performs spreadsheet operations through a gateway.
type Client struct {
	gw gateway.Doer
}

// NewClient creates a Client that sends every call through gw.
func NewClient(gw gateway.Doer) *Client {
	return &Client{gw: gw}
}

// CreateSpreadsheet creates an empty spreadsheet with the given title.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*sheets.Spreadsheet, error) {
	var created sheets.Spreadsheet
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyTabular,
		Path:   "spreadsheets",
		Method: http.MethodPost,
		Body: &sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: title},
		},
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ReadValues returns the values in rng.
func (c *Client) ReadValues(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error) {
	if err := requireIDAndRange(spreadsheetID, rng); err != nil {
		return nil, err
	}

	var vr sheets.ValueRange
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyTabular,
		Path:   valuesPath(spreadsheetID, rng),
		Method: http.MethodGet,
	}, &vr)
	if err != nil {
		return nil, err
	}
	return &vr, nil
}

// UpdateValues overwrites rng with values.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any, valueInputOption string) (*sheets.UpdateValuesResponse, error) {
	if err := requireIDAndRange(spreadsheetID, rng); err != nil {
		return nil, err
	}

	var resp sheets.UpdateValuesResponse
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyTabular,
		Path:   valuesPath(spreadsheetID, rng),
		Method: http.MethodPut,
		Query:  map[string]any{"valueInputOption": inputOption(valueInputOption)},
		Body:   valuesBody(values),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AppendValues appends values after the table found in rng.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any, valueInputOption string) (*sheets.AppendValuesResponse, error) {
	if err := requireIDAndRange(spreadsheetID, rng); err != nil {
		return nil, err
	}

	var resp sheets.AppendValuesResponse
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyTabular,
		Path:   valuesPath(spreadsheetID, rng) + ":append",
		Method: http.MethodPost,
		Query:  map[string]any{"valueInputOption": inputOption(valueInputOption)},
		Body:   valuesBody(values),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchUpdate applies structural requests (formatting, find/replace, sheet
// management). Requests are forwarded as given.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []any) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if spreadsheetID == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "spreadsheet_id is required")
	}
	if requests == nil {
		requests = []any{}
	}

	var resp sheets.BatchUpdateSpreadsheetResponse
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyTabular,
		Path:   gateway.Path("spreadsheets", spreadsheetID) + ":batchUpdate",
		Method: http.MethodPost,
		Body:   map[string]any{"requests": requests},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func valuesPath(spreadsheetID, rng string) string {
	return gateway.Path("spreadsheets", spreadsheetID, "values", rng)
}

// valuesBody always sends the values key, even for an empty block.
func valuesBody(values [][]any) map[string]any {
	if values == nil {
		values = [][]any{}
	}
	return map[string]any{"values": values}
}

func inputOption(option string) string {
	if option == "" {
		return DefaultValueInputOption
	}
	return option
}

func requireIDAndRange(spreadsheetID, rng string) error {
	if spreadsheetID == "" {
		return gateway.NewFailure(gateway.InternalError, "spreadsheet_id is required")
	}
	if rng == "" {
		return gateway.NewFailure(gateway.InternalError, "range is required")
	}
	return nil
}
