package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noore27/Freshdesk-MCP-Connector/internal/freshdesk"
	"github.com/noore27/Freshdesk-MCP-Connector/internal/log"
)

// Server wraps the MCP SDK server and the Freshdesk client.
type Server struct {
	mcpServer *mcp.Server
	client    *freshdesk.Client
	logger    log.Logger
	name      string
	version   string
}

// Config holds MCP server configuration. All fields are required.
type Config struct {
	Name    string
	Version string
	Logger  log.Logger
	Client  *freshdesk.Client
}

// NewServer creates the MCP server and statically registers every tool.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("freshdesk client is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		client:    cfg.Client,
		logger:    cfg.Logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. Blocking; returns
// when the transport closes or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Underlying exposes the SDK server for transport handlers that need it
// (streamable HTTP serving).
func (s *Server) Underlying() *mcp.Server {
	return s.mcpServer
}

// registerTools registers all tools to the MCP server.
func (s *Server) registerTools() error {
	if err := s.registerAccountTools(); err != nil {
		return err
	}
	return s.registerTicketTools()
}
