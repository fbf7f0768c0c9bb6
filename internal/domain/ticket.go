package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusRejected   TicketStatus = "REJECTED"
)

// Valid reports whether the status is a member of the enumerated set. Status
// changes are validated by membership only; the intended flow is
// ASSIGNED -> IN_PROGRESS -> RESOLVED/REJECTED but no transition graph is
// enforced.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusAssigned, TicketStatusInProgress, TicketStatusResolved, TicketStatusRejected:
		return true
	}
	return false
}

// Ticket is the aggregate for client-reported issues. A ticket always has a
// client owner; the agent is chosen at creation by the assignment policy and
// may be null only if an agent account was later removed.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	ClientID    string
	AgentID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
