package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/config"
	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/resources"
	"github.com/teemow/sheetdrive/internal/server"
	"github.com/teemow/sheetdrive/internal/tools/drive_tools"
	"github.com/teemow/sheetdrive/internal/tools/sheets_tools"
)

func newServeCmd() *cobra.Command {
	var scopes string
	cfg := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing Google Drive and Google Sheets tools.

Every tool call mints a fresh token from the service account key, so the key
file may be rotated while the server runs. Flags take precedence over the
environment variables named in their descriptions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("scopes") {
				cfg.Scopes = config.ParseScopes(scopes)
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.ServiceAccountFile, "service-account-file", cfg.ServiceAccountFile, "Path to the service account key file (GOOGLE_SERVICE_ACCOUNT_FILE)")
	cmd.Flags().StringVar(&scopes, "scopes", strings.Join(cfg.Scopes, ","), "Comma separated OAuth scopes requested for every token (GOOGLE_DRIVE_SCOPES)")
	cmd.Flags().StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or streamable-http (MCP_TRANSPORT)")
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "Host to listen on for streamable-http (HOST)")
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on for streamable-http (PORT)")
	cmd.Flags().BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Register only tools that never modify Drive or Sheets (READ_ONLY)")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Serve Prometheus metrics for streamable-http (METRICS_ENABLED)")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Address of the metrics server (METRICS_ADDR)")

	return cmd
}

func runServe(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout belongs to the MCP protocol in stdio mode
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	credentials, err := google.NewServiceAccountProvider(cfg.ServiceAccountFile, cfg.Scopes)
	if err != nil {
		return fmt.Errorf("failed to configure credentials: %w", err)
	}
	if err := credentials.CheckKeyFile(); err != nil {
		// Not fatal: the key is read per call and may be mounted later.
		logger.Warn("service account key not readable yet", "path", cfg.ServiceAccountFile, "error", err)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	opts := []server.Option{server.WithLogger(logger)}
	if provider.Enabled() {
		opts = append(opts,
			server.WithMetrics(provider.Metrics()),
			server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
		)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, credentials, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("sheetdrive", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if cfg.ReadOnly {
		logger.Info("starting in read-only mode")
	}
	if err := registerAllTools(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return err
	}

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		if cfg.MetricsEnabled && provider.Enabled() && provider.ServesPrometheus() {
			metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
				Addr:                    cfg.MetricsAddr,
				InstrumentationProvider: provider,
			})
			if err != nil {
				return fmt.Errorf("failed to create metrics server: %w", err)
			}
			go func() {
				if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server stopped", "error", err)
				}
			}()
			defer shutdownServer(logger, "metrics", metricsServer.Shutdown)
		}
		return runStreamableHTTPServer(shutdownCtx, logger, mcpSrv, serverContext, cfg.Addr())
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers the Drive and Sheets tools and the identity resources.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Drive tools",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Sheets tools",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Identity Resources",
			register: func() error {
				return resources.RegisterIdentityResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, logger *slog.Logger, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc, addr)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownServer(logger, "http", httpServer.Shutdown)
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}

func shutdownServer(logger *slog.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "server", name, "error", err)
	}
}
