package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noore27/Freshdesk-MCP-Connector/internal/config"
	"github.com/noore27/Freshdesk-MCP-Connector/internal/freshdesk"
	"github.com/noore27/Freshdesk-MCP-Connector/internal/log"
	"github.com/noore27/Freshdesk-MCP-Connector/internal/mcp"
)

// runMCP initializes and starts the MCP server. The transport is stdio
// unless -http is given.
func runMCP(args []string) error {
	flags := flag.NewFlagSet("mcp", flag.ContinueOnError)
	httpAddr := flags.String("http", "", "serve streamable HTTP on this address instead of stdio")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, File: cfg.LogFile})
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting Freshdesk MCP connector",
		"version", Version,
		"domain", cfg.Domain)

	client, err := freshdesk.New(freshdesk.Config{
		Domain:       cfg.Domain,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.Timeout,
		MaxAttempts:  cfg.MaxAttempts,
		RetryBackoff: cfg.RetryBackoff,
		PageSize:     cfg.PageSize,
		MaxPages:     cfg.MaxPages,
		Logger:       logger.With("component", "freshdesk"),
	})
	if err != nil {
		return fmt.Errorf("creating Freshdesk client: %w", err)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    "freshdesk-mcp",
		Version: Version,
		Logger:  logger.With("component", "mcp"),
		Client:  client,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	if *httpAddr != "" {
		return serveHTTP(ctx, logger, server, *httpAddr)
	}

	logger.Info("MCP server ready", "transport", "stdio")
	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}

// serveHTTP runs the MCP server over the streamable HTTP transport
// until the context is canceled.
func serveHTTP(ctx context.Context, logger log.Logger, server *mcp.Server, addr string) error {
	handler := mcpSdk.NewStreamableHTTPHandler(func(*http.Request) *mcpSdk.Server {
		return server.Underlying()
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready", "transport", "http", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		logger.Info("MCP server shut down gracefully")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
