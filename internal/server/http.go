package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/instrumentation"
)

// MCPEndpointPath is where the streamable-http transport is served.
const MCPEndpointPath = "/mcp"

const (
	DefaultHTTPReadHeaderTimeout = 10 * time.Second
	DefaultHTTPIdleTimeout       = 120 * time.Second

	// DefaultHTTPWriteTimeout leaves room for the slowest dispatch (a multipart upload).
	DefaultHTTPWriteTimeout = gateway.MultipartTimeout + 30*time.Second
)

// HTTPServer serves the MCP streamable-http transport next to the health endpoints.
type HTTPServer struct {
	httpServer *http.Server
	health     *HealthChecker
	handler    http.Handler
}

// NewHTTPServer wires mcpServer and the health endpoints of sc onto one listener at addr.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, addr string) *HTTPServer {
	health := NewHealthChecker(sc)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	))
	health.RegisterHealthEndpoints(mux)

	var metrics *instrumentation.Metrics
	if sc != nil {
		metrics = sc.Metrics()
	}
	handler := metricsMiddleware(metrics, mux)

	return &HTTPServer{
		health:  health,
		handler: handler,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
			WriteTimeout:      DefaultHTTPWriteTimeout,
			IdleTimeout:       DefaultHTTPIdleTimeout,
		},
	}
}

// Handler returns the root HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Health returns the health checker, used to flip readiness during shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed after a clean shutdown.
func (s *HTTPServer) Start() error {
	slog.Info("starting streamable-http server", "addr", s.httpServer.Addr, "endpoint", MCPEndpointPath)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// metricsMiddleware records every request by matched route pattern, so
// unmatched paths cannot inflate label cardinality.
func metricsMiddleware(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, time.Since(start))
	})
}
