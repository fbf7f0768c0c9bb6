package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/events"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

func newTicketFixture() (*TicketService, *fakeUserRepo, *fakeTicketRepo, *recordingDispatcher) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Assigner:   NewAssignmentService(tickets, users),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, users, tickets, dispatcher
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return de.Code
}

func TestCreateTicketAssignsAndEmits(t *testing.T) {
	svc, users, tickets, dispatcher := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	agent := users.add("agent", domain.RoleAgent)

	ticket, err := svc.CreateTicket(context.Background(), client, "Printer broken", "It jams on page two")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Fatalf("status = %s, want %s", ticket.Status, domain.TicketStatusAssigned)
	}
	if ticket.AgentID == nil || *ticket.AgentID != agent.ID {
		t.Fatalf("agent = %v, want %s", ticket.AgentID, agent.ID)
	}

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("persisted ticket missing: %v", err)
	}

	published := dispatcher.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	event := published[0]
	if event.Action != events.ActionCreated {
		t.Fatalf("action = %s, want %s", event.Action, events.ActionCreated)
	}
	if event.Ticket.ID != stored.ID || event.Ticket.Title != stored.Title {
		t.Fatalf("event snapshot %+v does not match persisted row %+v", event.Ticket, stored)
	}
	if event.Ticket.AgentName == nil || *event.Ticket.AgentName != agent.Name {
		t.Fatalf("agent name = %v, want %s", event.Ticket.AgentName, agent.Name)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc, users, tickets, dispatcher := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	users.add("agent", domain.RoleAgent)

	for _, tc := range []struct{ title, description string }{
		{"", "body"},
		{"title", ""},
		{"   ", "body"},
	} {
		_, err := svc.CreateTicket(context.Background(), client, tc.title, tc.description)
		if code := domainCode(t, err); code != "VALIDATION_FAILED" {
			t.Fatalf("code = %s, want VALIDATION_FAILED", code)
		}
	}
	if tickets.size() != 0 {
		t.Fatalf("%d tickets persisted after rejected input", tickets.size())
	}
	if len(dispatcher.published()) != 0 {
		t.Fatal("events published for rejected input")
	}
}

func TestCreateTicketNoAgentAvailable(t *testing.T) {
	svc, users, tickets, dispatcher := newTicketFixture()
	client := users.add("client", domain.RoleClient)

	_, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if code := domainCode(t, err); code != "ASSIGNMENT_FAILED" {
		t.Fatalf("code = %s, want ASSIGNMENT_FAILED", code)
	}
	if tickets.size() != 0 {
		t.Fatal("ticket persisted despite empty agent pool")
	}
	if len(dispatcher.published()) != 0 {
		t.Fatal("events published despite assignment failure")
	}
}

func TestCreateTicketRequiresClientRole(t *testing.T) {
	svc, users, _, _ := newTicketFixture()
	agent := users.add("agent", domain.RoleAgent)

	_, err := svc.CreateTicket(context.Background(), agent, "title", "description")
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
}

func TestChangeStatusByAssignedAgent(t *testing.T) {
	svc, users, _, dispatcher := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	agent := users.add("agent", domain.RoleAgent)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	updated, err := svc.ChangeStatus(context.Background(), agent, ticket.ID, domain.TicketStatusInProgress)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s, want %s", updated.Status, domain.TicketStatusInProgress)
	}

	published := dispatcher.published()
	if len(published) != 2 || published[1].Action != events.ActionUpdated {
		t.Fatalf("expected created then updated events, got %+v", published)
	}
}

func TestChangeStatusRejectsNonMember(t *testing.T) {
	svc, users, tickets, _ := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	agent := users.add("agent", domain.RoleAgent)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	_, err = svc.ChangeStatus(context.Background(), agent, ticket.ID, domain.TicketStatus("ARCHIVED"))
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}

	stored, _ := tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusAssigned {
		t.Fatalf("status mutated to %s by invalid input", stored.Status)
	}
}

func TestChangeStatusOnlyAssignedAgent(t *testing.T) {
	svc, users, tickets, _ := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	users.add("assigned", domain.RoleAgent)
	other := users.add("other", domain.RoleAgent)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	_, err = svc.ChangeStatus(context.Background(), other, ticket.ID, domain.TicketStatusResolved)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
	_, err = svc.ChangeStatus(context.Background(), client, ticket.ID, domain.TicketStatusResolved)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}

	stored, _ := tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusAssigned {
		t.Fatalf("status mutated to %s by unauthorized caller", stored.Status)
	}
}

func TestDeleteTicketEmitsBeforeRemoval(t *testing.T) {
	svc, users, tickets, dispatcher := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	agent := users.add("agent", domain.RoleAgent)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	dispatcher.onPublish = func(event events.Event) {
		if event.Action != events.ActionDeleted {
			return
		}
		// The row must still exist at publish time.
		if _, err := tickets.GetByID(context.Background(), event.Ticket.ID); err != nil {
			t.Errorf("ticket already removed when deleted event published: %v", err)
		}
	}

	if err := svc.DeleteTicket(context.Background(), agent, ticket.ID); err != nil {
		t.Fatalf("DeleteTicket: %v", err)
	}
	if tickets.size() != 0 {
		t.Fatal("ticket not removed")
	}

	published := dispatcher.published()
	last := published[len(published)-1]
	if last.Action != events.ActionDeleted {
		t.Fatalf("last action = %s, want %s", last.Action, events.ActionDeleted)
	}
	if last.Ticket.ID != ticket.ID || last.Ticket.Title != ticket.Title {
		t.Fatalf("deleted snapshot %+v does not describe ticket %s", last.Ticket, ticket.ID)
	}
}

func TestDeleteTicketAuthorization(t *testing.T) {
	svc, users, tickets, _ := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	users.add("assigned", domain.RoleAgent)
	other := users.add("other", domain.RoleAgent)
	admin := users.add("admin", domain.RoleAdmin)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if err := svc.DeleteTicket(context.Background(), other, ticket.ID); err == nil {
		t.Fatal("unrelated agent deleted a ticket")
	}
	if err := svc.DeleteTicket(context.Background(), client, ticket.ID); err == nil {
		t.Fatal("client deleted a ticket")
	}
	if tickets.size() != 1 {
		t.Fatal("ticket removed by unauthorized caller")
	}

	if err := svc.DeleteTicket(context.Background(), admin, ticket.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestGetTicketAccess(t *testing.T) {
	svc, users, _, _ := newTicketFixture()
	client := users.add("client", domain.RoleClient)
	agent := users.add("agent", domain.RoleAgent)
	stranger := users.add("stranger", domain.RoleClient)
	admin := users.add("admin", domain.RoleAdmin)

	ticket, err := svc.CreateTicket(context.Background(), client, "title", "description")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	for _, actor := range []*domain.User{client, agent, admin} {
		if _, err := svc.GetTicket(context.Background(), actor, ticket.ID); err != nil {
			t.Fatalf("%s denied access: %v", actor.Role, err)
		}
	}
	if _, err := svc.GetTicket(context.Background(), stranger, ticket.ID); err == nil {
		t.Fatal("stranger granted access")
	}
}
