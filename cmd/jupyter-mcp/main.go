// Package main implements the Jupyter MCP bridge executable.
// It provides a Model Context Protocol server whose tools manipulate a
// live, collaboratively-edited Jupyter notebook and its execution kernel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/jupyter-bridge/jupyter-mcp/internal/config"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
	"github.com/jupyter-bridge/jupyter-mcp/internal/server"
	"github.com/jupyter-bridge/jupyter-mcp/pkg/version"
)

// fallbackHTTPAddr is used when the stdio transport fails and no explicit
// HTTP address was requested.
const fallbackHTTPAddr = "localhost:8050"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jupyter-mcp",
	Short: "Jupyter MCP bridge server",
	Long: `Jupyter MCP bridge server exposes tools for manipulating a live,
collaboratively-edited Jupyter notebook: appending markdown cells, appending
and executing code cells, reading the full notebook content, and restarting
the execution kernel.`,
	RunE: runServer,
}

// serverFlags holds the flags for the server command
type serverFlags struct {
	httpAddr   string
	configFile string
}

var serverOpts = &serverFlags{}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and exit")

	rootCmd.Flags().StringVar(&serverOpts.httpAddr, "http", "", "HTTP server address (e.g., :8080); default is stdio transport")
	rootCmd.Flags().StringVar(&serverOpts.configFile, "config", "", "Path to TOML config file")
}

// runServer starts the MCP server
func runServer(cmd *cobra.Command, args []string) error {
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Println(version.GetVersion().String())
		return nil
	}

	// Pick up a local .env before reading the environment. A missing
	// file is fine.
	_ = godotenv.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := logging.NewLogger(logLevel)

	cfg, err := config.Load(serverOpts.configFile)
	if err != nil {
		logger.Error("Failed to load configuration", slog.Any("error", err))
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	srv, err := server.New(&server.Options{
		Logger: logger,
		Config: cfg,
	})
	if err != nil {
		logger.Error("Failed to create server", slog.Any("error", err))
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		logger.Error("Fatal startup fault", slog.Any("error", err))
		cleanup(srv, logger)
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Jupyter MCP Server starting",
		slog.String("version", version.GetVersion().Version),
		slog.Int("tools_available", srv.GetRegistry().Count()))

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- serve(ctx, srv, logger)
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Server error", slog.Any("error", err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	cleanup(srv, logger)
	logger.Info("Jupyter MCP Server stopped")
	return nil
}

// serve runs the requested transport: the HTTP transport when --http was
// given, otherwise stdio with a fallback to an HTTP listener if stdio
// serving fails.
func serve(ctx context.Context, srv *server.Server, logger *logging.Logger) error {
	if serverOpts.httpAddr != "" {
		return srv.ServeHTTP(ctx, serverOpts.httpAddr)
	}

	err := srv.Serve(ctx, mcp.NewStdioTransport())
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}

	logger.Error("Error using stdio transport, falling back to HTTP",
		slog.Any("error", err),
		slog.String("addr", fallbackHTTPAddr))
	return srv.ServeHTTP(ctx, fallbackHTTPAddr)
}

// cleanup stops the server with a bounded timeout.
func cleanup(srv *server.Server, logger *logging.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping server", slog.Any("error", err))
	}
}
