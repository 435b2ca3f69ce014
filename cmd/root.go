package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the sheetdrive application
var rootCmd = &cobra.Command{
	Use:   "sheetdrive",
	Short: "MCP server for Google Drive and Google Sheets",
	Long: `sheetdrive exposes Google Drive files and Google Sheets spreadsheets as
MCP (Model Context Protocol) tools. Every call is authenticated with a fresh
token minted from a service account key.

It can serve over:
  - stdio (default), for MCP clients that spawn the server
  - streamable-http, for networked deployments`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sheetdrive version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
