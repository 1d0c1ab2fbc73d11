package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchTickets runs the search/tickets endpoint across pages, starting
// at page 1, concatenating results until one of: an error, an empty
// page, a short page (last page), or the configured page ceiling.
//
// An error is returned only when the very first page fails and nothing
// was gathered, so the caller can fall back to listing. A failure after
// at least one successful page degrades to a partial result.
func (c *Client) SearchTickets(ctx context.Context, query string) ([]Ticket, error) {
	var all []Ticket

	for page := 1; page <= c.maxPages; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(c.pageSize))
		if query != "" {
			// Freshdesk expects the query wrapped in double quotes.
			params.Set("query", fmt.Sprintf("%q", query))
		}

		raw, err := c.Get(ctx, "search/tickets", params)
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			c.logger.Warn("ticket search stopped mid-pagination",
				"page", page,
				"gathered", len(all),
				"error", err)
			break
		}

		var resp SearchResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			if len(all) == 0 {
				return nil, &APIError{Endpoint: "search/tickets", Message: fmt.Sprintf("decoding search page: %v", err)}
			}
			break
		}

		if len(resp.Results) == 0 {
			break
		}
		all = append(all, resp.Results...)
		if len(resp.Results) < c.pageSize {
			break
		}
	}

	return all, nil
}

// ListTickets fetches the plain tickets listing. Used as the search
// fallback when the search endpoint itself is unavailable.
func (c *Client) ListTickets(ctx context.Context) ([]Ticket, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.pageSize))

	raw, err := c.Get(ctx, "tickets", params)
	if err != nil {
		return nil, err
	}
	var tickets []Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, &APIError{Endpoint: "tickets", Message: fmt.Sprintf("decoding tickets: %v", err)}
	}
	return tickets, nil
}

// FilterTickets keeps the tickets whose subject or description contains
// the query, case-insensitively. Client-side counterpart to server-side
// search.
func FilterTickets(tickets []Ticket, query string) []Ticket {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matched []Ticket
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.Subject), needle) ||
			strings.Contains(strings.ToLower(t.DescriptionText), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			matched = append(matched, t)
		}
	}
	return matched
}
