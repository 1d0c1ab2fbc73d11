package freshdesk

// Ticket status codes used by the Freshdesk API.
const (
	StatusOpen     = 2
	StatusPending  = 3
	StatusResolved = 4
	StatusClosed   = 5
)

// Ticket priority codes used by the Freshdesk API.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
	PriorityUrgent = 4
)

// Ticket is a Freshdesk support ticket. Fields mirror the API payload;
// the connector never persists tickets beyond a single call.
type Ticket struct {
	ID              int64    `json:"id"`
	Subject         string   `json:"subject"`
	Description     string   `json:"description"`
	DescriptionText string   `json:"description_text"`
	Status          int      `json:"status"`
	Priority        int      `json:"priority"`
	Type            string   `json:"type,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	RequesterID     int64    `json:"requester_id,omitempty"`
	ResponderID     int64    `json:"responder_id,omitempty"`
	GroupID         int64    `json:"group_id,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// Conversation is a reply or internal note attached to a ticket.
type Conversation struct {
	ID        int64    `json:"id"`
	BodyText  string   `json:"body_text"`
	FromEmail string   `json:"from_email,omitempty"`
	ToEmails  []string `json:"to_emails,omitempty"`
	Incoming  bool     `json:"incoming"`
	CreatedAt string   `json:"created_at"`
}

// SearchResponse is the payload shape of the search/tickets endpoint.
type SearchResponse struct {
	Total   int      `json:"total"`
	Results []Ticket `json:"results"`
}

// CreateTicketRequest is the creation payload for the tickets endpoint.
type CreateTicketRequest struct {
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Status      int    `json:"status"`
}

// ReplyRequest is the payload for tickets/{id}/reply. Private marks the
// entry as an internal note instead of an outgoing reply.
type ReplyRequest struct {
	Body    string `json:"body"`
	Private bool   `json:"private"`
}
