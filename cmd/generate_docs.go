package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/config"
	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/drive_tools"
	"github.com/teemow/sheetdrive/internal/tools/sheets_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// The key file is never read while generating docs.
	credentials, err := google.NewServiceAccountProvider(config.DefaultServiceAccountFile, config.DefaultScopes)
	if err != nil {
		return fmt.Errorf("failed to configure credentials: %w", err)
	}

	serverContext, err := server.NewServerContext(context.Background(), credentials)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	// One server per category so tools group by the package that registers them
	categories := []struct {
		name     string
		register func(*mcpserver.MCPServer) error
	}{
		{
			name: "Google Drive Tools",
			register: func(s *mcpserver.MCPServer) error {
				return drive_tools.RegisterDriveTools(s, serverContext, false)
			},
		},
		{
			name: "Google Sheets Tools",
			register: func(s *mcpserver.MCPServer) error {
				return sheets_tools.RegisterSheetsTools(s, serverContext, false)
			},
		},
	}

	toolsByCategory := make(map[string][]mcp.Tool, len(categories))
	for _, category := range categories {
		mcpSrv := mcpserver.NewMCPServer("sheetdrive", version, mcpserver.WithToolCapabilities(true))
		if err := category.register(mcpSrv); err != nil {
			return fmt.Errorf("failed to register %s: %w", category.name, err)
		}
		for _, serverTool := range mcpSrv.ListTools() {
			toolsByCategory[category.name] = append(toolsByCategory[category.name], serverTool.Tool)
		}
	}

	markdown := generateToolsMarkdown(toolsByCategory)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(toolsByCategory map[string][]mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running sheetdrive as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Errors\n\n")
	sb.WriteString("Failed calls return a JSON object with `error` and `kind`, plus `status_code` and `details` when the Google API answered. ")
	sb.WriteString("`kind` is one of `AuthError`, `UnsupportedMethod`, `TransportError`, `ApiError`, `EncodingError`, `SizeLimitError` or `InternalError`.\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	// Tool name
	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	// Input schema
	if tool.InputSchema.Properties != nil && len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			prop := tool.InputSchema.Properties[name]
			isRequired := slices.Contains(tool.InputSchema.Required, name)

			requiredStr := "optional"
			if isRequired {
				requiredStr = "required"
			}

			// Get property type and description from the property map
			propMap, ok := prop.(map[string]interface{})
			if !ok {
				continue
			}

			propType := getPropertyType(propMap)

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))

			// Get description
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", propType))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
