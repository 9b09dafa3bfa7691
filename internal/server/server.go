// Package server implements the MCP server for the Jupyter notebook bridge.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/jupyter-bridge/jupyter-mcp/internal/config"
	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
	"github.com/jupyter-bridge/jupyter-mcp/internal/session"
	"github.com/jupyter-bridge/jupyter-mcp/internal/tools"
	"github.com/jupyter-bridge/jupyter-mcp/internal/tools/notebook"
	"github.com/jupyter-bridge/jupyter-mcp/pkg/version"
)

// shutdownTimeout bounds the HTTP server drain during shutdown.
const shutdownTimeout = 5 * time.Second

// loggerAdapter wraps logging.Logger to implement tools.Logger interface.
// This avoids a circular dependency between logging and tools packages.
type loggerAdapter struct {
	*logging.Logger
}

// WithTool implements tools.Logger interface.
func (a *loggerAdapter) WithTool(toolName string) tools.Logger {
	return &loggerAdapter{Logger: a.Logger.WithTool(toolName)}
}

// Server represents the Jupyter MCP bridge server.
type Server struct {
	mcpServer *mcp.Server
	registry  *tools.Registry
	logger    *logging.Logger
	cfg       *config.Config

	sessions *session.Manager
	kernel   *session.KernelHolder
	service  *notebook.Service
}

// Options configures the server instance.
type Options struct {
	Logger *logging.Logger
	Config *config.Config
}

// New creates a new Jupyter MCP bridge server with the given options.
func New(opts *Options) (*Server, error) {
	if opts.Logger == nil {
		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			logLevel = "info"
		}
		opts.Logger = logging.NewLogger(logLevel)
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load("")
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	logger := opts.Logger

	sessions := session.NewManager(func(ctx context.Context) (jupyter.NotebookSession, error) {
		return jupyter.NewNotebookSession(cfg.ServerURL, cfg.Token, cfg.NotebookPath, logger)
	}, logger)

	kernel := session.NewKernelHolder(func() jupyter.KernelClient {
		return jupyter.NewKernelClient(cfg.ServerURL, cfg.Token, logger)
	}, logger)

	poller := session.NewPoller(cfg.MaxWait, cfg.PollInterval, logger)
	service := notebook.NewService(sessions, kernel, poller, logger)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "jupyter-mcp",
		Version: version.GetVersion().Version,
	}, nil)

	server := &Server{
		mcpServer: mcpServer,
		registry:  tools.NewRegistry(),
		logger:    logger,
		cfg:       cfg,
		sessions:  sessions,
		kernel:    kernel,
		service:   service,
	}

	if err := server.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return server, nil
}

// Start validates the tool registry and launches the kernel client. A
// kernel start failure here is a fatal startup fault: the caller is
// expected to run Stop for cleanup and exit non-zero.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting Jupyter MCP server",
		slog.String("version", version.GetVersion().Version),
		slog.String("server_url", s.cfg.ServerURL),
		slog.String("notebook", s.cfg.NotebookPath),
		slog.Int("tools", s.registry.Count()),
	)

	if err := s.registry.Validate(); err != nil {
		return fmt.Errorf("tool registry validation failed: %w", err)
	}

	if err := s.kernel.Start(ctx); err != nil {
		return fmt.Errorf("failed to start kernel client: %w", err)
	}

	return nil
}

// Stop stops the server and cleans up the kernel and notebook session.
// Cleanup is best-effort: faults are logged, not propagated.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping Jupyter MCP server")

	if err := s.sessions.Close(ctx); err != nil {
		s.logger.Warn("Error stopping notebook session", slog.Any("error", err))
	}
	if err := s.kernel.Stop(ctx); err != nil {
		s.logger.Warn("Error stopping kernel client", slog.Any("error", err))
	}

	select {
	case <-ctx.Done():
		s.logger.Warn("Server stop timed out")
		return ctx.Err()
	default:
		s.logger.Info("Server stopped successfully")
		return nil
	}
}

// GetRegistry returns the tool registry.
func (s *Server) GetRegistry() *tools.Registry {
	return s.registry
}

// Service returns the notebook tool service.
func (s *Server) Service() *notebook.Service {
	return s.service
}

// registerTools registers all notebook tools with the MCP server.
func (s *Server) registerTools() error {
	s.logger.Debug("Registering tools with MCP server")

	toolCtx := &tools.Context{
		Logger: &loggerAdapter{Logger: s.logger},
	}

	notebookTools := notebook.CreateNotebookTools(toolCtx, s.service)

	var toolNames []string
	for _, tool := range notebookTools {
		if err := s.registry.Register(tool); err != nil {
			return err
		}
		tool.RegisterFunc(s.mcpServer)
		toolNames = append(toolNames, tool.Tool.Name)

		s.logger.Debug("Registered tool", "name", tool.Tool.Name)
	}

	s.logger.Info("Successfully registered tools",
		slog.Int("count", len(notebookTools)),
		slog.Any("tools", toolNames),
	)

	return nil
}

// Serve runs the MCP server on the given transport. It connects the MCP
// server to the transport and waits for either the session to complete or
// the context to be cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting MCP server transport",
		slog.String("transport", fmt.Sprintf("%T", transport)),
	)

	session, err := s.mcpServer.Connect(ctx, transport)
	if err != nil {
		return fmt.Errorf("failed to connect MCP server: %w", err)
	}

	sessionDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("MCP session goroutine panicked",
					slog.Any("panic", r))
				sessionDone <- fmt.Errorf("session panicked: %v", r)
			}
		}()
		sessionDone <- session.Wait()
	}()

	select {
	case err := <-sessionDone:
		s.logger.Info("MCP session finished")
		return err
	case <-ctx.Done():
		s.logger.Info("MCP server shutting down due to context cancellation")
		return ctx.Err()
	}
}

// ServeHTTP runs the MCP server over the streamable HTTP transport on
// addr. This is the fallback socket transport for environments where the
// stdio transport is not usable.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	router := chi.NewRouter()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	router.Handle("/mcp", handler)
	router.Handle("/mcp/*", handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	s.logger.Info("Starting MCP server transport",
		slog.String("transport", "http"),
		slog.String("addr", addr),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
