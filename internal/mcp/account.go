package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OverviewInput is the (empty) input schema for the overview tool.
type OverviewInput struct{}

// PingInput is the (empty) input schema for the ping tool.
type PingInput struct{}

// registerAccountTools registers the account-level tools.
// Tools: overview, ping
func (s *Server) registerAccountTools() error {
	overviewSchema, err := jsonschema.For[OverviewInput](nil)
	if err != nil {
		return fmt.Errorf("schema for overview: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "overview",
		Description: "Get basic information about the Freshdesk account: domain, agents, and groups.",
		InputSchema: overviewSchema,
	}, s.Overview)
	s.logger.Info("tool registered", "tool", "overview")

	pingSchema, err := jsonschema.For[PingInput](nil)
	if err != nil {
		return fmt.Errorf("schema for ping: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ping",
		Description: "Health check. Confirms the connector is alive without contacting Freshdesk.",
		InputSchema: pingSchema,
	}, s.Ping)
	s.logger.Info("tool registered", "tool", "ping")

	return nil
}

// Overview handles the overview MCP tool call. Agent and group lists
// are returned verbatim; a failed list degrades to an embedded error
// record rather than failing the whole call.
func (s *Server) Overview(ctx context.Context, req *mcp.CallToolRequest, input OverviewInput) (*mcp.CallToolResult, any, error) {
	out := map[string]any{
		"company": map[string]string{"domain": s.client.Domain()},
	}

	if agents, err := s.client.ListAgents(ctx); err != nil {
		out["agents"] = map[string]string{"error": err.Error()}
	} else {
		out["agents"] = json.RawMessage(agents)
	}

	if groups, err := s.client.ListGroups(ctx); err != nil {
		out["groups"] = map[string]string{"error": err.Error()}
	} else {
		out["groups"] = json.RawMessage(groups)
	}

	return dataToMCP(out), nil, nil
}

// Ping handles the ping MCP tool call. No remote call is made.
func (s *Server) Ping(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(map[string]string{
		"status": "ok",
		"domain": s.client.Domain(),
	}), nil, nil
}
