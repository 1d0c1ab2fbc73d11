package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noore27/Freshdesk-MCP-Connector/internal/freshdesk"
)

// summaryDescriptionLimit caps the description length in search
// summaries.
const summaryDescriptionLimit = 200

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Free-text keyword to search tickets for"`
}

// FetchInput defines the input schema for the fetch tool.
type FetchInput struct {
	TicketID int64 `json:"ticket_id" jsonschema:"Numeric id of the ticket to retrieve"`
}

// CreateTicketInput defines the input schema for the create_ticket tool.
type CreateTicketInput struct {
	Email       string `json:"email" jsonschema:"Requester email address"`
	Subject     string `json:"subject" jsonschema:"Ticket subject line"`
	Description string `json:"description" jsonschema:"Ticket body text"`
	Priority    int    `json:"priority,omitempty" jsonschema:"Priority code 1-4, defaults to 1 (low)"`
	Status      int    `json:"status,omitempty" jsonschema:"Status code, defaults to 2 (open)"`
}

// UpdateTicketInput defines the input schema for the update_ticket tool.
// Optional fields are pointers so the patch stays sparse: only supplied
// keys reach the API.
type UpdateTicketInput struct {
	TicketID    int64  `json:"ticket_id" jsonschema:"Numeric id of the ticket to update"`
	Status      *int   `json:"status,omitempty" jsonschema:"New status code, omitted when unchanged"`
	Priority    *int   `json:"priority,omitempty" jsonschema:"New priority code, omitted when unchanged"`
	Description string `json:"description,omitempty" jsonschema:"Replacement description, omitted when unchanged"`
}

// ReplyInput defines the input schema for the reply tool.
type ReplyInput struct {
	TicketID int64  `json:"ticket_id" jsonschema:"Numeric id of the ticket to reply on"`
	Body     string `json:"body" jsonschema:"Reply body text"`
	Private  bool   `json:"private,omitempty" jsonschema:"True to add a private note instead of a reply"`
}

// CloseTicketInput defines the input schema for the close_ticket tool.
type CloseTicketInput struct {
	TicketID int64 `json:"ticket_id" jsonschema:"Numeric id of the ticket to close"`
}

// TicketSummary is the compact search result shape.
type TicketSummary struct {
	ID          int64  `json:"id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	URL         string `json:"url"`
}

// ConversationSummary is the reshaped conversation entry embedded in
// ticket details.
type ConversationSummary struct {
	ID        int64    `json:"id"`
	BodyText  string   `json:"body_text"`
	FromEmail string   `json:"from_email,omitempty"`
	ToEmails  []string `json:"to_emails,omitempty"`
	Incoming  bool     `json:"incoming"`
	CreatedAt string   `json:"created_at"`
}

// TicketDetail is the full fetch result shape.
type TicketDetail struct {
	ID            int64                 `json:"id"`
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Status        int                   `json:"status"`
	Priority      int                   `json:"priority"`
	Type          string                `json:"type,omitempty"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
	RequesterID   int64                 `json:"requester_id,omitempty"`
	ResponderID   int64                 `json:"responder_id,omitempty"`
	GroupID       int64                 `json:"group_id,omitempty"`
	Tags          []string              `json:"tags"`
	Conversations []ConversationSummary `json:"conversations"`
	Metadata      TicketMetadata        `json:"metadata"`
}

// TicketMetadata carries provenance for a fetched ticket.
type TicketMetadata struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// registerTicketTools registers the ticket tools.
// Tools: search, fetch, create_ticket, update_ticket, reply, close_ticket
func (s *Server) registerTicketTools() error {
	for _, reg := range []struct {
		name     string
		register func() error
	}{
		{"search", s.registerSearch},
		{"fetch", s.registerFetch},
		{"create_ticket", s.registerCreateTicket},
		{"update_ticket", s.registerUpdateTicket},
		{"reply", s.registerReply},
		{"close_ticket", s.registerCloseTicket},
	} {
		if err := reg.register(); err != nil {
			return fmt.Errorf("registering %s: %w", reg.name, err)
		}
		s.logger.Info("tool registered", "tool", reg.name)
	}
	return nil
}

func (s *Server) registerSearch() error {
	schema, err := jsonschema.For[SearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for search: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search",
		Description: "Search Freshdesk tickets by keyword. Returns compact summaries with permalinks.",
		InputSchema: schema,
	}, s.Search)
	return nil
}

func (s *Server) registerFetch() error {
	schema, err := jsonschema.For[FetchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for fetch: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "fetch",
		Description: "Retrieve full details of a Freshdesk ticket, including its conversation history.",
		InputSchema: schema,
	}, s.Fetch)
	return nil
}

func (s *Server) registerCreateTicket() error {
	schema, err := jsonschema.For[CreateTicketInput](nil)
	if err != nil {
		return fmt.Errorf("schema for create_ticket: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_ticket",
		Description: "Create a new Freshdesk ticket. Priority defaults to 1 (low), status to 2 (open).",
		InputSchema: schema,
	}, s.CreateTicket)
	return nil
}

func (s *Server) registerUpdateTicket() error {
	schema, err := jsonschema.For[UpdateTicketInput](nil)
	if err != nil {
		return fmt.Errorf("schema for update_ticket: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_ticket",
		Description: "Update ticket fields. Only the supplied fields are changed.",
		InputSchema: schema,
	}, s.UpdateTicket)
	return nil
}

func (s *Server) registerReply() error {
	schema, err := jsonschema.For[ReplyInput](nil)
	if err != nil {
		return fmt.Errorf("schema for reply: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reply",
		Description: "Reply to a ticket, or add a private note when private is true.",
		InputSchema: schema,
	}, s.Reply)
	return nil
}

func (s *Server) registerCloseTicket() error {
	schema, err := jsonschema.For[CloseTicketInput](nil)
	if err != nil {
		return fmt.Errorf("schema for close_ticket: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "close_ticket",
		Description: "Close a ticket (sets status to 5).",
		InputSchema: schema,
	}, s.CloseTicket)
	return nil
}

// Search handles the search MCP tool call.
//
// Blank or whitespace-only queries short-circuit to an empty result set
// with no network call. Server-side paginated search is primary; when
// the search endpoint itself fails, the handler falls back to listing
// tickets and filtering client-side by case-insensitive substring match
// over subject and description.
func (s *Server) Search(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return dataToMCP(map[string]any{"results": []TicketSummary{}}), nil, nil
	}

	tickets, err := s.client.SearchTickets(ctx, query)
	if err != nil {
		s.logger.Warn("server-side search failed, falling back to client-side filter",
			"query", query,
			"error", err)
		listed, listErr := s.client.ListTickets(ctx)
		if listErr != nil {
			return errorToMCP(listErr), nil, nil
		}
		tickets = freshdesk.FilterTickets(listed, query)
	}

	summaries := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		summaries = append(summaries, s.summarize(t))
	}

	return dataToMCP(map[string]any{"results": summaries}), nil, nil
}

// Fetch handles the fetch MCP tool call.
//
// A ticket fetch failure returns the error record unchanged without
// attempting the conversation listing. A conversation listing failure
// is tolerated as an empty list.
func (s *Server) Fetch(ctx context.Context, req *mcp.CallToolRequest, input FetchInput) (*mcp.CallToolResult, any, error) {
	ticket, err := s.client.GetTicket(ctx, input.TicketID)
	if err != nil {
		return errorToMCP(err), nil, nil
	}

	conversations, err := s.client.ListConversations(ctx, input.TicketID)
	if err != nil {
		s.logger.Warn("conversation fetch failed, returning ticket without conversations",
			"ticket_id", input.TicketID,
			"error", err)
		conversations = nil
	}

	convs := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		convs = append(convs, ConversationSummary{
			ID:        c.ID,
			BodyText:  c.BodyText,
			FromEmail: c.FromEmail,
			ToEmails:  c.ToEmails,
			Incoming:  c.Incoming,
			CreatedAt: c.CreatedAt,
		})
	}

	tags := ticket.Tags
	if tags == nil {
		tags = []string{}
	}

	detail := TicketDetail{
		ID:            ticket.ID,
		Subject:       ticket.Subject,
		Description:   ticket.DescriptionText,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		Type:          ticket.Type,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
		RequesterID:   ticket.RequesterID,
		ResponderID:   ticket.ResponderID,
		GroupID:       ticket.GroupID,
		Tags:          tags,
		Conversations: convs,
		Metadata: TicketMetadata{
			Source: "freshdesk",
			URL:    s.client.Permalink(input.TicketID),
		},
	}

	return dataToMCP(detail), nil, nil
}

// CreateTicket handles the create_ticket MCP tool call.
func (s *Server) CreateTicket(ctx context.Context, req *mcp.CallToolRequest, input CreateTicketInput) (*mcp.CallToolResult, any, error) {
	// Zero is not a valid Freshdesk code, so unset fields get defaults.
	priority := input.Priority
	if priority == 0 {
		priority = freshdesk.PriorityLow
	}
	status := input.Status
	if status == 0 {
		status = freshdesk.StatusOpen
	}

	created, err := s.client.CreateTicket(ctx, freshdesk.CreateTicketRequest{
		Email:       input.Email,
		Subject:     input.Subject,
		Description: input.Description,
		Priority:    priority,
		Status:      status,
	})
	if err != nil {
		return errorToMCP(err), nil, nil
	}
	return dataToMCP(created), nil, nil
}

// UpdateTicket handles the update_ticket MCP tool call. The patch
// contains only the fields the caller supplied.
func (s *Server) UpdateTicket(ctx context.Context, req *mcp.CallToolRequest, input UpdateTicketInput) (*mcp.CallToolResult, any, error) {
	patch := map[string]any{}
	if input.Status != nil {
		patch["status"] = *input.Status
	}
	if input.Priority != nil {
		patch["priority"] = *input.Priority
	}
	if input.Description != "" {
		patch["description"] = input.Description
	}

	updated, err := s.client.UpdateTicket(ctx, input.TicketID, patch)
	if err != nil {
		return errorToMCP(err), nil, nil
	}
	return dataToMCP(updated), nil, nil
}

// Reply handles the reply MCP tool call.
func (s *Server) Reply(ctx context.Context, req *mcp.CallToolRequest, input ReplyInput) (*mcp.CallToolResult, any, error) {
	created, err := s.client.Reply(ctx, input.TicketID, freshdesk.ReplyRequest{
		Body:    input.Body,
		Private: input.Private,
	})
	if err != nil {
		return errorToMCP(err), nil, nil
	}
	return dataToMCP(created), nil, nil
}

// CloseTicket handles the close_ticket MCP tool call. The patch body is
// exactly {"status": 5} regardless of ticket state.
func (s *Server) CloseTicket(ctx context.Context, req *mcp.CallToolRequest, input CloseTicketInput) (*mcp.CallToolResult, any, error) {
	updated, err := s.client.UpdateTicket(ctx, input.TicketID, map[string]any{
		"status": freshdesk.StatusClosed,
	})
	if err != nil {
		return errorToMCP(err), nil, nil
	}
	return dataToMCP(updated), nil, nil
}

// summarize reshapes a ticket into the compact search result form.
func (s *Server) summarize(t freshdesk.Ticket) TicketSummary {
	description := t.DescriptionText
	if description == "" {
		description = t.Description
	}
	return TicketSummary{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: truncate(description, summaryDescriptionLimit),
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		URL:         s.client.Permalink(t.ID),
	}
}

// truncate cuts s to at most limit runes, marking the cut with an
// ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
