// Package server provides the MCP server exposing the audit and cleaning tools.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/osmaudit/pkg/tools"
	"github.com/NERVsystems/osmaudit/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = "osmaudit"

// Options configures a Server
type Options struct {
	Logger *slog.Logger

	// Limiter bounds calls per tool. Nil disables rate limiting.
	Limiter *tools.RateLimiter
}

// Server encapsulates the MCP server with the osmaudit tools.
type Server struct {
	srv    *mcpserver.MCPServer
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"rate_limit", opts.Limiter.String())

	srv := mcpserver.NewMCPServer(
		ServerName,
		version.BuildVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	registry := tools.NewRegistry(logger, opts.Limiter)
	registry.RegisterTools(srv)

	return &Server{
		srv:    srv,
		logger: logger,
		doneCh: make(chan struct{}),
	}, nil
}

// Serve speaks the MCP protocol over in and out until ctx is canceled,
// Shutdown is called or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.doneCh)
	}()

	stdio := mcpserver.NewStdioServer(s.srv)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		s.logger.Info("server stopped")
		return nil
	}
	s.logger.Error("server error", "error", err)
	return err
}

// RunWithContext serves on stdin and stdout. It blocks until the context is
// canceled, Shutdown is called or stdin is closed.
func (s *Server) RunWithContext(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Shutdown initiates a graceful shutdown of the server.
// It does not block and returns immediately.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.cancel != nil {
		s.cancel()
	}
}

// WaitForShutdown blocks until Serve has returned.
func (s *Server) WaitForShutdown() {
	<-s.doneCh
}

// GetMCPServer returns the underlying MCP server instance
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.srv
}
