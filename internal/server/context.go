package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/sheetdrive/internal/drive"
	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/sheets"
)

// Credentials is the credential source of the server. It mints per-call
// tokens and describes the identity they belong to.
type Credentials interface {
	google.CredentialProvider

	// ServiceAccountEmail returns the identity of the key.
	ServiceAccountEmail() (string, error)

	// Scopes returns the scopes every token is minted for.
	Scopes() []string

	// CheckKeyFile reports whether the key is currently readable.
	CheckKeyFile() error
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	credentials  Credentials
	gateway      *gateway.Dispatcher
	driveClient  *drive.Client
	sheetsClient *sheets.Client

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	gatewayOpts []gateway.Option

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics records gateway and tool metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger logs every tool invocation through al.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithLogger sets the logger shared by the server and the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithGatewayOptions passes extra options to the gateway, such as base URL overrides.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(sc *ServerContext) {
		sc.gatewayOpts = append(sc.gatewayOpts, opts...)
	}
}

// NewServerContext creates a new server context with a gateway over credentials.
func NewServerContext(ctx context.Context, credentials Credentials, opts ...Option) (*ServerContext, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		credentials: credentials,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	gwOpts := append([]gateway.Option{
		gateway.WithLogger(sc.logger),
		gateway.WithMetrics(sc.metrics),
	}, sc.gatewayOpts...)

	gw, err := gateway.New(credentials, gwOpts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	sc.gateway = gw
	sc.driveClient = drive.NewClient(gw)
	sc.sheetsClient = sheets.NewClient(gw)
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Gateway returns the request dispatcher.
func (sc *ServerContext) Gateway() *gateway.Dispatcher {
	return sc.gateway
}

// DriveClient returns the storage client.
func (sc *ServerContext) DriveClient() *drive.Client {
	return sc.driveClient
}

// SheetsClient returns the tabular client.
func (sc *ServerContext) SheetsClient() *sheets.Client {
	return sc.sheetsClient
}

// Credentials returns the credential source.
func (sc *ServerContext) Credentials() Credentials {
	return sc.credentials
}

// Principal returns the service account email, or "" if the key cannot be read.
func (sc *ServerContext) Principal() string {
	email, err := sc.credentials.ServiceAccountEmail()
	if err != nil {
		return ""
	}
	return email
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
