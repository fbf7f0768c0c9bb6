package dto

import (
	"time"

	"github.com/yafi/support-backend/internal/domain"
)

// PostMessageRequest payload.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// MessageResponse represents one conversation entry.
type MessageResponse struct {
	ID       string    `json:"id"`
	TicketID string    `json:"ticket_id"`
	AuthorID string    `json:"author_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:       msg.ID,
		TicketID: msg.TicketID,
		AuthorID: msg.AuthorID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
	}
}

// NewMessageListResponse maps a conversation.
func NewMessageListResponse(msgs []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewMessageResponse(&msgs[i]))
	}
	return out
}
