package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"testing"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectServer builds a connector MCP server backed by the given mock
// API handler and an SDK client connected via in-memory transports.
// Returns the client session for making protocol calls.
func connectServer(t *testing.T, handler http.Handler) *mcpSdk.ClientSession {
	t.Helper()

	server := newTestServer(t, handler)

	ctx := context.Background()
	serverTransport, clientTransport := mcpSdk.NewInMemoryTransports()

	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcpSdk.NewClient(&mcpSdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

// TestProtocol_ListTools verifies that tools/list returns exactly the
// connector's tool set.
func TestProtocol_ListTools(t *testing.T) {
	session := connectServer(t, http.NotFoundHandler())

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() unexpected error: %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	want := []string{
		"close_ticket",
		"create_ticket",
		"fetch",
		"overview",
		"ping",
		"reply",
		"search",
		"update_ticket",
	}
	if len(names) != len(want) {
		t.Fatalf("registered tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("registered tools = %v, want %v", names, want)
			break
		}
	}
}

// TestProtocol_CallTool_Ping verifies tools/call end to end for the
// no-network health check.
func TestProtocol_CallTool_Ping(t *testing.T) {
	session := connectServer(t, refuseAllRequests(t))

	result, err := session.CallTool(context.Background(), &mcpSdk.CallToolParams{
		Name: "ping",
	})
	if err != nil {
		t.Fatalf("CallTool(ping) unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("CallTool(ping) returned error result")
	}

	text, ok := result.Content[0].(*mcpSdk.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", result.Content[0])
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text.Text), &parsed); err != nil {
		t.Fatalf("ping result is not JSON: %v\ntext: %s", err, text.Text)
	}
	if parsed["status"] != "ok" {
		t.Errorf("status = %v, want ok", parsed["status"])
	}
	if parsed["domain"] != "acme.freshdesk.com" {
		t.Errorf("domain = %v", parsed["domain"])
	}
}

// TestProtocol_CallTool_SearchBlankQuery verifies the no-network blank
// query contract over the real protocol path.
func TestProtocol_CallTool_SearchBlankQuery(t *testing.T) {
	session := connectServer(t, refuseAllRequests(t))

	result, err := session.CallTool(context.Background(), &mcpSdk.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "   "},
	})
	if err != nil {
		t.Fatalf("CallTool(search) unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("CallTool(search) returned error result for blank query")
	}
}

// TestProtocol_CallTool_UnknownTool verifies that a non-existent tool
// yields a protocol-level error.
func TestProtocol_CallTool_UnknownTool(t *testing.T) {
	session := connectServer(t, http.NotFoundHandler())

	_, err := session.CallTool(context.Background(), &mcpSdk.CallToolParams{
		Name: "nonexistent_tool",
	})
	if err == nil {
		t.Fatal("CallTool(nonexistent_tool) expected error, got nil")
	}
}
