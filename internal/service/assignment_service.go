package service

import (
	"context"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/repository"
)

// AssignmentService selects the agent who should receive a new ticket.
type AssignmentService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(tickets repository.TicketRepository, users repository.UserRepository) *AssignmentService {
	return &AssignmentService{tickets: tickets, users: users}
}

// SelectAgent returns the least-loaded active agent, or nil when no agent is
// available. Load is the count of ALL tickets currently assigned to the
// agent, resolved and rejected included; counts are read fresh from the
// repository on every call, never cached across decisions. Ties keep the
// first agent in the pool's stable enumeration (ascending creation order),
// so repeated calls over an unchanged snapshot pick the same agent.
func (s *AssignmentService) SelectAgent(ctx context.Context) (*domain.User, error) {
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}

	var best *domain.User
	bestCount := 0
	for i := range agents {
		count, err := s.tickets.CountByAgent(ctx, agents[i].ID)
		if err != nil {
			return nil, err
		}
		if best == nil || count < bestCount {
			best = &agents[i]
			bestCount = count
		}
	}
	return best, nil
}
