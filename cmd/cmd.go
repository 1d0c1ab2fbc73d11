// Package cmd provides the CLI commands for the connector.
//
// Commands:
//   - mcp: run the MCP server (stdio by default, streamable HTTP with -http)
//   - version: show version information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the connector CLI.
func Execute() error {
	// Initialize a default logger once at entry point; the mcp command
	// replaces it with the configured file-backed logger.
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "mcp":
		return runMCP(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("freshdesk-mcp - Freshdesk MCP connector")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  freshdesk-mcp mcp                Start MCP server on stdio")
	fmt.Println("  freshdesk-mcp mcp -http <addr>   Start MCP server over streamable HTTP")
	fmt.Println("  freshdesk-mcp version            Show version information")
	fmt.Println("  freshdesk-mcp help               Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FRESHDESK_DOMAIN     Required: account domain (e.g. acme.freshdesk.com)")
	fmt.Println("  FRESHDESK_API_KEY    Required: Freshdesk API key")
	fmt.Println("  FRESHDESK_LOG_FILE   Optional: append-only log file path")
	fmt.Println("  DEBUG                Optional: enable debug logging")
	fmt.Println()
	fmt.Println("Both required settings may also come from a .env file or freshdesk.yaml")
	fmt.Println("in the working directory.")
}
