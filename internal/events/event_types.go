package events

import (
	"time"

	"github.com/yafi/support-backend/internal/domain"
)

// Action enumerates ticket lifecycle actions.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TicketSnapshot is the projection of a ticket carried by an event. For
// deletions it is captured before the row is removed so subscribers always
// see full ticket data.
type TicketSnapshot struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	AgentName   *string             `json:"agent_name"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Event is emitted once per committed ticket mutation and consumed exactly
// once by the notification fan-out. ClientID and AgentID identify the
// participants for the email/SMS channels; only the snapshot goes on the
// wire to live subscribers.
type Event struct {
	ID        string         `json:"id"`
	Action    Action         `json:"action"`
	Ticket    TicketSnapshot `json:"ticket"`
	ClientID  string         `json:"-"`
	AgentID   *string        `json:"-"`
	Timestamp time.Time      `json:"timestamp"`
}
