package drive_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/logging"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/common"
)

// connectionReport is the result of debug_api_connection.
type connectionReport struct {
	ServiceAccountEmail string   `json:"service_account_email,omitempty"`
	Scopes              []string `json:"scopes"`

	TokenValid  bool       `json:"token_valid"`
	Token       string     `json:"token,omitempty"`
	TokenExpiry *time.Time `json:"token_expiry,omitempty"`

	// APITest is "success" or "failed".
	APITest      string         `json:"api_test"`
	User         any            `json:"user_info,omitempty"`
	StorageQuota any            `json:"storage_quota,omitempty"`
	Errors       map[string]any `json:"errors,omitempty"`
}

// registerDebugTools registers the connection diagnostic tool
func registerDebugTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	debugTool := mcp.NewTool("debug_api_connection",
		mcp.WithDescription("Check the service account key, mint a token and call the Drive about endpoint"),
	)
	s.AddTool(debugTool, common.InstrumentedToolHandlerWithService("debug_api_connection",
		instrumentation.ServiceDrive, instrumentation.OperationAbout, sc, handleDebugConnection(sc)))

	return nil
}

func handleDebugConnection(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		creds := sc.Credentials()
		report := connectionReport{
			Scopes:  creds.Scopes(),
			APITest: "failed",
			Errors:  map[string]any{},
		}

		if email, err := creds.ServiceAccountEmail(); err != nil {
			report.Errors["service_account"] = err.Error()
		} else {
			report.ServiceAccountEmail = email
		}

		// The token minted here is only inspected; the about call mints its own.
		acquireCtx, cancel := context.WithTimeout(ctx, gateway.DefaultTimeout)
		cred, err := creds.Acquire(acquireCtx)
		cancel()
		switch {
		case err != nil:
			report.Errors["token"] = gateway.NewFailure(gateway.AuthError, "Authentication failed: %v", err).Payload()
		default:
			report.TokenValid = !cred.Expired(time.Now())
			report.Token = logging.SanitizeToken(cred.Token)
			if !cred.Expiry.IsZero() {
				expiry := cred.Expiry.UTC()
				report.TokenExpiry = &expiry
			}
		}

		about, err := sc.DriveClient().About(ctx)
		if err != nil {
			report.Errors["api_test"] = gateway.AsFailure(err).Payload()
		} else {
			report.APITest = "success"
			report.User = about.User
			report.StorageQuota = about.StorageQuota
		}

		if len(report.Errors) == 0 {
			report.Errors = nil
		}
		return common.JSONResult(report)
	}
}
