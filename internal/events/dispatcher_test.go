package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsHandlersInRegistrationOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var order []string

	d.Subscribe(ActionCreated, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(ActionCreated, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Action: ActionCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("handler order = %v", order)
	}
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false

	d.Subscribe(ActionDeleted, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(ActionDeleted, func(context.Context, Event) error {
		ran = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Action: ActionDeleted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !ran {
		t.Fatal("second handler skipped after first failed")
	}
}

func TestPublishIgnoresOtherActions(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false

	d.Subscribe(ActionUpdated, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Action: ActionCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if called {
		t.Fatal("handler invoked for a different action")
	}
}
