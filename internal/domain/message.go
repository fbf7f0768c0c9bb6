package domain

import "time"

// Message is a single entry in a ticket conversation thread. Messages are
// immutable once sent.
type Message struct {
	ID       string
	TicketID string
	AuthorID string
	Body     string
	SentAt   time.Time
}
