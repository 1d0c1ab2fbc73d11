// Package mcp exposes the Freshdesk connector as a Model Context
// Protocol server built on the official MCP Go SDK.
//
// # Architecture
//
// The server is a thin translation layer: each tool handler validates
// and defaults its arguments, calls one or more freshdesk.Client
// operations, reshapes the raw API payload into a compact stable shape,
// and returns it as a single JSON text content block.
//
// Tools are registered statically in NewServer from an explicit
// registration fan-out; there is no dynamic discovery or decorator
// machinery. Input schemas are inferred from the input structs with
// jsonschema.For.
//
// # Error handling
//
// Recoverable upstream failures (network errors, non-2xx statuses, rate
// limit exhaustion) never cross the tool boundary as protocol errors.
// They surface to the caller as a JSON object with an "error" field and
// the IsError flag set, mirroring the upstream error-record contract.
// Partial failures degrade: a ticket fetch whose conversation listing
// fails returns the ticket with an empty conversation list.
//
// # Tools
//
//   - overview:      account domain plus verbatim agent and group lists
//   - search:        paginated server-side ticket search with a
//     client-side substring fallback
//   - fetch:         full ticket detail with embedded conversations
//   - create_ticket: create a ticket (priority defaults to 1, status to 2)
//   - update_ticket: sparse patch of status/priority/description
//   - reply:         reply or private note on a ticket
//   - close_ticket:  set status to closed (5)
//   - ping:          liveness check, no remote call
package mcp
