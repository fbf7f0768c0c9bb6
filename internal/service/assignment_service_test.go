package service

import (
	"context"
	"testing"

	"github.com/yafi/support-backend/internal/domain"
)

func TestSelectAgentPicksLeastLoaded(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(tickets, users)

	busy := users.add("busy", domain.RoleAgent)
	idle := users.add("idle", domain.RoleAgent)

	for i := 0; i < 3; i++ {
		if err := tickets.Create(context.Background(), &domain.Ticket{
			Title: "existing", ClientID: "client", AgentID: &busy.ID,
			Status: domain.TicketStatusAssigned,
		}); err != nil {
			t.Fatalf("seed ticket: %v", err)
		}
	}

	agent, err := svc.SelectAgent(context.Background())
	if err != nil {
		t.Fatalf("SelectAgent: %v", err)
	}
	if agent == nil || agent.ID != idle.ID {
		t.Fatalf("selected %+v, want idle agent %s", agent, idle.ID)
	}
}

func TestSelectAgentCountsResolvedTickets(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(tickets, users)

	first := users.add("first", domain.RoleAgent)
	second := users.add("second", domain.RoleAgent)

	// A resolved ticket still counts toward load.
	if err := tickets.Create(context.Background(), &domain.Ticket{
		Title: "done", ClientID: "client", AgentID: &first.ID,
		Status: domain.TicketStatusResolved,
	}); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	agent, err := svc.SelectAgent(context.Background())
	if err != nil {
		t.Fatalf("SelectAgent: %v", err)
	}
	if agent.ID != second.ID {
		t.Fatalf("selected %s, want %s", agent.ID, second.ID)
	}
}

func TestSelectAgentTieBreakIsDeterministic(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(tickets, users)

	oldest := users.add("oldest", domain.RoleAgent)
	users.add("newer", domain.RoleAgent)
	users.add("newest", domain.RoleAgent)

	for i := 0; i < 5; i++ {
		agent, err := svc.SelectAgent(context.Background())
		if err != nil {
			t.Fatalf("SelectAgent: %v", err)
		}
		if agent.ID != oldest.ID {
			t.Fatalf("tie broke to %s on call %d, want %s every time", agent.ID, i, oldest.ID)
		}
	}
}

func TestSelectAgentEmptyPool(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(tickets, users)

	users.add("client-only", domain.RoleClient)

	agent, err := svc.SelectAgent(context.Background())
	if err != nil {
		t.Fatalf("SelectAgent: %v", err)
	}
	if agent != nil {
		t.Fatalf("selected %+v from an empty agent pool", agent)
	}
}

func TestSelectAgentIgnoresInactiveAgents(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(tickets, users)

	inactive := users.add("inactive", domain.RoleAgent)
	inactive.Active = false
	active := users.add("active", domain.RoleAgent)

	agent, err := svc.SelectAgent(context.Background())
	if err != nil {
		t.Fatalf("SelectAgent: %v", err)
	}
	if agent == nil || agent.ID != active.ID {
		t.Fatalf("selected %+v, want active agent %s", agent, active.ID)
	}
}
