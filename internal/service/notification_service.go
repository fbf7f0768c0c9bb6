package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/events"
	"github.com/yafi/support-backend/internal/notify"
	"github.com/yafi/support-backend/internal/observability"
	"github.com/yafi/support-backend/internal/realtime"
	"github.com/yafi/support-backend/internal/repository"
)

// wireFrame is what live subscribers receive on the tickets group.
type wireFrame struct {
	Type   events.Action         `json:"type"`
	Ticket events.TicketSnapshot `json:"ticket"`
}

// NotificationService fans a lifecycle event out to the live hub and the
// email/SMS channels. The hub publish runs synchronously on the publisher's
// goroutine; email and SMS are fired in the background and their failures are
// logged only — never surfaced to the caller and never rolling back the
// mutation that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	hub        *realtime.Hub
	users      repository.UserRepository
	email      notify.EmailSender
	sms        notify.SMSSender
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Hub        *realtime.Hub
	UserRepo   repository.UserRepository
	Email      notify.EmailSender
	SMS        notify.SMSSender
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		hub:        deps.Hub,
		users:      deps.UserRepo,
		email:      deps.Email,
		sms:        deps.SMS,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// RegisterHandlers subscribes to all lifecycle actions. The broadcast handler
// is registered first so the synchronous dispatcher always runs the live push
// before the deferred channels are scheduled.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, action := range []events.Action{events.ActionCreated, events.ActionUpdated, events.ActionDeleted} {
		n.dispatcher.Subscribe(action, n.handleBroadcast)
		n.dispatcher.Subscribe(action, n.handleSideEffects)
	}
}

// handleBroadcast pushes the event to every live subscriber of the tickets
// group. This is the time-sensitive channel and completes before Publish
// returns to the ticket service.
func (n *NotificationService) handleBroadcast(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(wireFrame{Type: event.Action, Ticket: event.Ticket})
	if err != nil {
		n.logger.Error("marshal broadcast frame", zap.Error(err))
		return err
	}
	delivered, dropped := n.hub.Publish(realtime.GroupTickets, payload)
	n.metrics.RecordBroadcast(realtime.GroupTickets, delivered, dropped)
	n.logger.Debug("broadcast",
		zap.String("action", string(event.Action)),
		zap.String("ticket_id", event.Ticket.ID),
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped))
	return nil
}

// handleSideEffects schedules email and SMS delivery off the critical path.
// The request context is not reused: the sends outlive the request.
func (n *NotificationService) handleSideEffects(_ context.Context, event events.Event) error {
	go n.sendEmail(context.Background(), event)
	go n.sendSMS(context.Background(), event)
	return nil
}

func (n *NotificationService) sendEmail(ctx context.Context, event events.Event) {
	recipients := n.emailRecipients(ctx, event)
	if len(recipients) == 0 {
		n.logger.Warn("no valid email recipients",
			zap.String("ticket_id", event.Ticket.ID),
			zap.String("action", string(event.Action)))
		return
	}

	subject, body := emailContent(event)
	if err := n.email.Send(ctx, recipients, subject, body); err != nil {
		n.metrics.RecordNotification("email", false)
		n.logger.Error("email delivery failed",
			zap.String("ticket_id", event.Ticket.ID),
			zap.String("action", string(event.Action)),
			zap.Error(err))
		return
	}
	n.metrics.RecordNotification("email", true)
	n.logger.Info("email sent",
		zap.String("ticket_id", event.Ticket.ID),
		zap.Strings("to", recipients))
}

// emailRecipients resolves addresses: client always, assigned agent for
// created/updated, client only for deleted. Missing addresses are skipped
// silently.
func (n *NotificationService) emailRecipients(ctx context.Context, event events.Event) []string {
	var recipients []string
	if client := n.lookup(ctx, event.ClientID); client != nil && client.Email != "" {
		recipients = append(recipients, client.Email)
	}
	if event.Action != events.ActionDeleted && event.AgentID != nil {
		if agent := n.lookup(ctx, *event.AgentID); agent != nil && agent.Email != "" {
			recipients = append(recipients, agent.Email)
		}
	}
	return recipients
}

func (n *NotificationService) sendSMS(ctx context.Context, event events.Event) {
	client := n.lookup(ctx, event.ClientID)
	if client == nil || client.Phone == "" {
		return
	}

	body := smsContent(event)
	if err := n.sms.Send(ctx, client.Phone, body); err != nil {
		n.metrics.RecordNotification("sms", false)
		n.logger.Error("sms delivery failed",
			zap.String("ticket_id", event.Ticket.ID),
			zap.String("action", string(event.Action)),
			zap.Error(err))
		return
	}
	n.metrics.RecordNotification("sms", true)
}

func (n *NotificationService) lookup(ctx context.Context, userID string) *domain.User {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("resolve notification recipient", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return user
}

func emailContent(event events.Event) (subject, body string) {
	switch event.Action {
	case events.ActionCreated:
		subject = fmt.Sprintf("[YaFi] New ticket: %s", event.Ticket.Title)
		body = fmt.Sprintf("Your ticket %q has been created and assigned to an agent.", event.Ticket.Title)
	case events.ActionUpdated:
		subject = fmt.Sprintf("[YaFi] Ticket updated: %s (status: %s)", event.Ticket.Title, event.Ticket.Status)
		body = fmt.Sprintf("Ticket %q is now %s.", event.Ticket.Title, event.Ticket.Status)
	case events.ActionDeleted:
		subject = fmt.Sprintf("[YaFi] Ticket deleted: %s", event.Ticket.Title)
		body = fmt.Sprintf("Your ticket %q has been deleted.", event.Ticket.Title)
	}
	return subject, body
}

func smsContent(event events.Event) string {
	switch event.Action {
	case events.ActionCreated:
		return fmt.Sprintf("YaFi support: ticket %q created successfully.", event.Ticket.Title)
	case events.ActionUpdated:
		return fmt.Sprintf("YaFi support: ticket %q updated. Status: %s", event.Ticket.Title, event.Ticket.Status)
	case events.ActionDeleted:
		return fmt.Sprintf("YaFi support: your ticket %q has been deleted.", event.Ticket.Title)
	}
	return ""
}
