package realtime

import (
	"testing"

	"go.uber.org/zap"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	a := hub.Subscribe(GroupTickets)
	b := hub.Subscribe(GroupTickets)

	delivered, dropped := hub.Publish(GroupTickets, []byte(`{"type":"created"}`))
	if delivered != 2 || dropped != 0 {
		t.Fatalf("delivered=%d dropped=%d, want 2/0", delivered, dropped)
	}

	for _, client := range []*Client{a, b} {
		select {
		case frame := <-client.Receive():
			if string(frame) != `{"type":"created"}` {
				t.Fatalf("unexpected frame: %s", frame)
			}
		default:
			t.Fatalf("subscriber %s received nothing", client.ID())
		}
	}
}

func TestPublishPrunesStaleSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	live := hub.Subscribe(GroupTickets)
	stale := hub.Subscribe(GroupTickets)
	stale.MarkStale()

	delivered, _ := hub.Publish(GroupTickets, []byte("x"))
	if delivered != 1 {
		t.Fatalf("delivered=%d, want 1", delivered)
	}
	if hub.GroupSize(GroupTickets) != 1 {
		t.Fatalf("group size=%d after prune, want 1", hub.GroupSize(GroupTickets))
	}

	// The stale handle's channel is closed by pruning.
	if _, open := <-stale.Receive(); open {
		t.Fatal("stale channel still open")
	}

	select {
	case <-live.Receive():
	default:
		t.Fatal("live subscriber received nothing")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	slow := hub.Subscribe(GroupTickets)
	for i := 0; i < sendBuffer; i++ {
		if d, _ := hub.Publish(GroupTickets, []byte("fill")); d != 1 {
			t.Fatalf("fill publish %d not delivered", i)
		}
	}

	delivered, dropped := hub.Publish(GroupTickets, []byte("overflow"))
	if delivered != 0 || dropped != 1 {
		t.Fatalf("delivered=%d dropped=%d, want 0/1", delivered, dropped)
	}
	if hub.GroupSize(GroupTickets) != 1 {
		t.Fatal("slow subscriber must stay connected after a drop")
	}
	_ = slow
}

func TestUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	client := hub.Subscribe(GroupTickets)
	hub.Unsubscribe(GroupTickets, client)
	hub.Unsubscribe(GroupTickets, client)

	if hub.GroupSize(GroupTickets) != 0 {
		t.Fatalf("group size=%d, want 0", hub.GroupSize(GroupTickets))
	}
}

func TestPublishOrderPreservedPerSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	client := hub.Subscribe(GroupTickets)
	frames := []string{"one", "two", "three"}
	for _, f := range frames {
		hub.Publish(GroupTickets, []byte(f))
	}

	for _, want := range frames {
		got := string(<-client.Receive())
		if got != want {
			t.Fatalf("got frame %q, want %q", got, want)
		}
	}
}
