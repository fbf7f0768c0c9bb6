package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/events"
	"github.com/yafi/support-backend/internal/repository"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle: creation with load-balanced
// assignment, status changes, deletion, and the lifecycle event emitted after
// every committed mutation.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// assignMu serializes "read agent loads + pick + persist" so two
	// concurrent creations cannot both observe the same minimum and pile
	// onto one agent.
	assignMu sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Assigner   *AssignmentService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket validates input, assigns the least-loaded agent, persists the
// ticket with status ASSIGNED, and emits a created event. Validation or
// assignment failure aborts with no partial state.
func (s *TicketService) CreateTicket(ctx context.Context, client *domain.User, title, description string) (*domain.Ticket, error) {
	if client == nil || !client.Role.CanFileTickets() {
		return nil, apperrors.NewForbidden("only clients can open tickets")
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	agent, err := s.assigner.SelectAgent(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if agent == nil {
		return nil, apperrors.NewAssignmentError("no agent available for assignment")
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusAssigned,
		ClientID:    client.ID,
		AgentID:     &agent.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.emit(ctx, events.ActionCreated, ticket)
	return ticket, nil
}

// CreateFromConversation is the chatbot-originated creation path. The
// collaborator posts on behalf of an authenticated client principal; the
// semantics are otherwise identical to CreateTicket.
func (s *TicketService) CreateFromConversation(ctx context.Context, client *domain.User, title, description string) (*domain.Ticket, error) {
	return s.CreateTicket(ctx, client, title, description)
}

// ChangeStatus sets a new status on the ticket. Only the assigned agent may
// do so, and the status must be a member of the enumerated set; no stricter
// transition graph is enforced.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.AgentID == nil || *ticket.AgentID != actor.ID {
		return nil, apperrors.NewForbidden("only the assigned agent can change ticket status")
	}

	updated, err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.emit(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// DeleteTicket removes the ticket. The deleted event is emitted BEFORE the
// row is removed so subscribers receive a full snapshot; deletion is terminal.
// Agents may delete their own tickets, administrators any ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}

	ownAsAgent := ticket.AgentID != nil && *ticket.AgentID == actor.ID
	if !ownAsAgent && !actor.Role.CanViewGlobalStats() {
		return apperrors.NewForbidden("not allowed to delete this ticket")
	}

	s.emit(ctx, events.ActionDeleted, ticket)

	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetTicket fetches a ticket, restricted to its participants and admins.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !s.canAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListForClient returns the client's own tickets, newest first.
func (s *TicketService) ListForClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		ClientID: &clientID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListForAgent returns tickets assigned to the agent, newest first.
func (s *TicketService) ListForAgent(ctx context.Context, agentID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AgentID: &agentID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListWithFilter is the unrestricted admin listing.
func (s *TicketService) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Snapshot builds the event projection of a ticket, resolving the agent's
// display name. Exposed for handlers that need the same projection shape.
func (s *TicketService) Snapshot(ctx context.Context, ticket *domain.Ticket) events.TicketSnapshot {
	snapshot := events.TicketSnapshot{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if ticket.AgentID != nil {
		if agent, err := s.users.GetByID(ctx, *ticket.AgentID); err == nil {
			snapshot.AgentName = &agent.Name
		} else {
			s.logger.Warn("resolve agent name", zap.String("agent_id", *ticket.AgentID), zap.Error(err))
		}
	}
	return snapshot
}

func (s *TicketService) canAccess(actor *domain.User, ticket *domain.Ticket) bool {
	if actor.Role.CanViewGlobalStats() {
		return true
	}
	if ticket.ClientID == actor.ID {
		return true
	}
	return ticket.AgentID != nil && *ticket.AgentID == actor.ID
}

// emit publishes a lifecycle event for a committed mutation. Publication
// failure is logged and never propagated: the repository commit is the source
// of truth and notification is best-effort.
func (s *TicketService) emit(ctx context.Context, action events.Action, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Action:    action,
		Ticket:    s.Snapshot(ctx, ticket),
		ClientID:  ticket.ClientID,
		AgentID:   ticket.AgentID,
		Timestamp: time.Now(),
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("publish lifecycle event",
			zap.String("action", string(action)),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
