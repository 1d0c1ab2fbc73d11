// Package freshdesk provides a lightweight client for the Freshdesk
// ticketing REST API (api/v2).
//
// The client performs authenticated round trips with a fixed per-request
// timeout and a bounded retry loop on rate limiting (HTTP 429). Every
// failure is normalized into an *APIError carrying the endpoint and a
// human-readable message; callers convert these into error-shaped tool
// results rather than propagating them as faults.
package freshdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noore27/Freshdesk-MCP-Connector/internal/log"
)

// basicAuthPassword is the fixed placeholder Freshdesk expects alongside
// the API key.
const basicAuthPassword = "X"

// APIError is a normalized request failure. It names the endpoint so the
// resulting error record is actionable without server logs.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.Status, e.Message, e.Endpoint)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Endpoint)
}

// Config holds everything the client needs; there is no ambient state.
type Config struct {
	// Domain is the normalized account domain, e.g. "acme.freshdesk.com".
	Domain string

	// APIKey authenticates requests via HTTP basic auth.
	APIKey string

	// BaseURL overrides the derived "https://<domain>/api/v2" base.
	// Intended for tests.
	BaseURL string

	// Timeout bounds a single round trip. Default 20s.
	Timeout time.Duration

	// MaxAttempts is the total attempt count when rate limited. Default 3.
	MaxAttempts int

	// RetryBackoff is the fixed sleep between rate-limited attempts.
	// Default 2s.
	RetryBackoff time.Duration

	// PageSize is the per_page value for ticket search. Default 50.
	PageSize int

	// MaxPages caps search pagination. Default 5.
	MaxPages int

	// Logger receives request warnings and errors. Required.
	Logger log.Logger
}

// Client is a Freshdesk API client. Safe for concurrent use; it holds no
// mutable state beyond the underlying http.Client's connection pool.
type Client struct {
	domain       string
	apiKey       string
	baseURL      string
	maxAttempts  int
	retryBackoff time.Duration
	pageSize     int
	maxPages     int
	httpClient   *http.Client
	logger       log.Logger
}

// New creates a Freshdesk client from an explicit configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("freshdesk domain is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("freshdesk API key is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 50
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 5
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Domain + "/api/v2"
	}

	return &Client{
		domain:       cfg.Domain,
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxAttempts:  cfg.MaxAttempts,
		retryBackoff: cfg.RetryBackoff,
		pageSize:     cfg.PageSize,
		maxPages:     cfg.MaxPages,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       cfg.Logger,
	}, nil
}

// Domain returns the normalized account domain.
func (c *Client) Domain() string {
	return c.domain
}

// Permalink builds the agent-facing URL for a ticket.
func (c *Client) Permalink(ticketID int64) string {
	return fmt.Sprintf("https://%s/a/tickets/%d", c.domain, ticketID)
}

// Get performs an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, query, nil)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, body)
}

// Put performs an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, endpoint, nil, body)
}

// ListAgents returns the account's agents verbatim.
func (c *Client) ListAgents(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "agents", nil)
}

// ListGroups returns the account's groups verbatim.
func (c *Client) ListGroups(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "groups", nil)
}

// GetTicket fetches a single ticket by id.
func (c *Client) GetTicket(ctx context.Context, ticketID int64) (*Ticket, error) {
	raw, err := c.Get(ctx, fmt.Sprintf("tickets/%d", ticketID), nil)
	if err != nil {
		return nil, err
	}
	var t Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, &APIError{
			Endpoint: fmt.Sprintf("tickets/%d", ticketID),
			Message:  fmt.Sprintf("decoding ticket: %v", err),
		}
	}
	return &t, nil
}

// ListConversations fetches all replies and notes for a ticket.
func (c *Client) ListConversations(ctx context.Context, ticketID int64) ([]Conversation, error) {
	endpoint := fmt.Sprintf("tickets/%d/conversations", ticketID)
	raw, err := c.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var convs []Conversation
	if err := json.Unmarshal(raw, &convs); err != nil {
		return nil, &APIError{Endpoint: endpoint, Message: fmt.Sprintf("decoding conversations: %v", err)}
	}
	return convs, nil
}

// CreateTicket submits a ticket creation payload and returns the created
// record verbatim.
func (c *Client) CreateTicket(ctx context.Context, req CreateTicketRequest) (json.RawMessage, error) {
	return c.Post(ctx, "tickets", req)
}

// UpdateTicket submits a sparse patch for a ticket and returns the
// updated record verbatim. Only the keys present in patch are sent.
func (c *Client) UpdateTicket(ctx context.Context, ticketID int64, patch map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, fmt.Sprintf("tickets/%d", ticketID), patch)
}

// Reply posts a reply or a private note on a ticket.
func (c *Client) Reply(ctx context.Context, ticketID int64, req ReplyRequest) (json.RawMessage, error) {
	return c.Post(ctx, fmt.Sprintf("tickets/%d/reply", ticketID), req)
}

// do performs one authenticated round trip with bounded retry on rate
// limiting. Every failure comes back as an *APIError; nothing panics.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	reqURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &APIError{Endpoint: endpoint, Message: fmt.Sprintf("encoding request body: %v", err)}
		}
	}

	requestID := uuid.NewString()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, &APIError{Endpoint: endpoint, Message: fmt.Sprintf("creating request: %v", err)}
		}
		req.SetBasicAuth(c.apiKey, basicAuthPassword)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("freshdesk request failed",
				"request_id", requestID,
				"method", method,
				"endpoint", endpoint,
				"error", err)
			return nil, &APIError{Endpoint: endpoint, Message: err.Error()}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			c.logger.Error("freshdesk response unreadable",
				"request_id", requestID,
				"endpoint", endpoint,
				"error", readErr)
			return nil, &APIError{Endpoint: endpoint, Message: fmt.Sprintf("reading response: %v", readErr)}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == c.maxAttempts {
				c.logger.Warn("freshdesk rate limit retries exhausted",
					"request_id", requestID,
					"endpoint", endpoint,
					"attempts", attempt)
				return nil, &APIError{
					Endpoint: endpoint,
					Status:   resp.StatusCode,
					Message:  "rate limited: max retries reached",
				}
			}
			c.logger.Warn("freshdesk rate limited, backing off",
				"request_id", requestID,
				"endpoint", endpoint,
				"attempt", attempt,
				"backoff", c.retryBackoff)
			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return nil, &APIError{Endpoint: endpoint, Message: ctx.Err().Error()}
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("freshdesk non-2xx response",
				"request_id", requestID,
				"method", method,
				"endpoint", endpoint,
				"status", resp.StatusCode)
			return nil, &APIError{
				Endpoint: endpoint,
				Status:   resp.StatusCode,
				Message:  strings.TrimSpace(string(respBody)),
			}
		}

		if len(respBody) == 0 {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid(respBody) {
			c.logger.Warn("freshdesk response is not valid JSON",
				"request_id", requestID,
				"endpoint", endpoint)
			return nil, &APIError{Endpoint: endpoint, Message: "malformed JSON response"}
		}
		return json.RawMessage(respBody), nil
	}

	// Unreachable: the loop always returns.
	return nil, &APIError{Endpoint: endpoint, Message: "rate limited: max retries reached"}
}
