package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/server"
)

// ServiceAccountURI identifies the service account resource.
const ServiceAccountURI = "sheetdrive://service-account"

// serviceAccountInfo is the body of the service account resource.
type serviceAccountInfo struct {
	Email    string   `json:"email,omitempty"`
	Scopes   []string `json:"scopes"`
	KeyReady bool     `json:"key_ready"`
	KeyError string   `json:"key_error,omitempty"`
}

// RegisterIdentityResources registers resources describing the identity tool calls run as.
func RegisterIdentityResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	serviceAccountResource := mcp.NewResource(
		ServiceAccountURI,
		"Service Account",
		mcp.WithResourceDescription("The Google service account every tool call runs as and the scopes its tokens carry"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(serviceAccountResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleServiceAccount(request, sc)
	})

	return nil
}

func handleServiceAccount(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	creds := sc.Credentials()
	info := serviceAccountInfo{
		Scopes:   creds.Scopes(),
		KeyReady: true,
	}

	if email, err := creds.ServiceAccountEmail(); err != nil {
		info.KeyReady = false
		info.KeyError = err.Error()
	} else {
		info.Email = email
	}

	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service account info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
