package service

import (
	"context"
	"strings"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/repository"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// MessageService handles the conversation attached to a ticket.
type MessageService struct {
	messages repository.MessageRepository
	tickets  repository.TicketRepository
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, tickets repository.TicketRepository) *MessageService {
	return &MessageService{messages: messages, tickets: tickets}
}

// Post appends a message to a ticket's conversation. Only the conversation's
// participants (owning client, assigned agent) and administrators may write.
func (s *MessageService) Post(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}
	if err := s.authorizeParticipant(ctx, actor, ticketID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		TicketID: ticketID,
		AuthorID: actor.ID,
		Body:     body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

// ListForTicket returns a ticket's conversation in send order.
func (s *MessageService) ListForTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Message, error) {
	if err := s.authorizeParticipant(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

func (s *MessageService) authorizeParticipant(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if actor.Role.CanViewGlobalStats() {
		return nil
	}
	if ticket.ClientID == actor.ID {
		return nil
	}
	if ticket.AgentID != nil && *ticket.AgentID == actor.ID {
		return nil
	}
	return apperrors.NewForbidden("not a participant of this ticket")
}
