package mcp

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestDataToMCP_ValidData(t *testing.T) {
	result := dataToMCP(map[string]any{"key": "value", "count": 42})

	if result.IsError {
		t.Error("dataToMCP should not set IsError for valid data")
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("dataToMCP content is not TextContent")
	}
	if !contains(text.Text, "key") || !contains(text.Text, "value") {
		t.Errorf("dataToMCP should contain JSON data: %s", text.Text)
	}
}

func TestDataToMCP_NilData(t *testing.T) {
	result := dataToMCP(nil)

	if result.IsError {
		t.Error("dataToMCP should not set IsError for nil data")
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("dataToMCP content is not TextContent")
	}
	if text.Text != "" {
		t.Errorf("dataToMCP(nil) should return empty string, got: %q", text.Text)
	}
}

func TestDataToMCP_RawMessagePassesThrough(t *testing.T) {
	raw := json.RawMessage(`{"id":7,"weird_upstream_field":true}`)
	result := dataToMCP(raw)

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("dataToMCP content is not TextContent")
	}
	if text.Text != string(raw) {
		t.Errorf("raw payload changed in transit: %s", text.Text)
	}
}

func TestDataToMCP_MarshalError(t *testing.T) {
	// Channels cannot be marshaled to JSON
	result := dataToMCP(make(chan int))

	if !result.IsError {
		t.Error("dataToMCP should set IsError for unmarshalable data")
	}
}

func TestErrorToMCP(t *testing.T) {
	result := errorToMCP(errors.New("HTTP 404: ticket not found (tickets/999)"))

	if !result.IsError {
		t.Error("errorToMCP should set IsError")
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("errorToMCP content is not TextContent")
	}

	var record map[string]string
	if err := json.Unmarshal([]byte(text.Text), &record); err != nil {
		t.Fatalf("error record is not JSON: %v\ntext: %s", err, text.Text)
	}
	if record["error"] != "HTTP 404: ticket not found (tickets/999)" {
		t.Errorf("error field = %q", record["error"])
	}
}
