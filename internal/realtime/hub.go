package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroupTickets is the broadcast group carrying ticket lifecycle events.
const GroupTickets = "tickets"

// sendBuffer bounds per-subscriber backlog. A subscriber that cannot drain
// this many frames has its messages dropped rather than stalling publish.
const sendBuffer = 16

// Client is a live subscriber handle. Frames arrive on Receive; the owner of
// the connection marks the handle stale when a write fails so the hub can
// prune it on the next publish.
type Client struct {
	id    string
	send  chan []byte
	stale atomic.Bool
}

// ID returns the subscriber identity.
func (c *Client) ID() string {
	return c.id
}

// Receive returns the channel of outgoing frames. It is closed on unsubscribe.
func (c *Client) Receive() <-chan []byte {
	return c.send
}

// MarkStale flags the handle as dead without removing it; removal happens
// lazily on the next publish.
func (c *Client) MarkStale() {
	c.stale.Store(true)
}

// Hub is the process-wide broadcast channel. Groups hold currently-connected
// subscribers; publish delivers to every member at the moment of publish with
// no replay for late joiners.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]*Client
	logger *zap.Logger
	closed bool
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[string]*Client),
		logger: logger,
	}
}

// Subscribe adds a new subscriber to the group and returns its handle.
func (h *Hub) Subscribe(group string) *Client {
	client := &Client{
		id:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(client.send)
		return client
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[client.id] = client
	return client
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// for handles already pruned.
func (h *Hub) Unsubscribe(group string, client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(group, client)
}

// Publish delivers the payload to every subscriber currently in the group.
// Sends are non-blocking: a subscriber with a full buffer has the frame
// dropped so one slow dashboard never stalls ticket mutation latency. Stale
// handles found during delivery are pruned. Returns delivered and dropped
// counts.
func (h *Hub) Publish(group string, payload []byte) (delivered, dropped int) {
	// Sends stay under the read lock so an unsubscribe cannot close a
	// channel mid-delivery; sends are non-blocking so the hold is bounded.
	h.mu.RLock()
	var prune []*Client
	for _, client := range h.groups[group] {
		if client.stale.Load() {
			prune = append(prune, client)
			continue
		}
		select {
		case client.send <- payload:
			delivered++
		default:
			dropped++
			h.logger.Warn("drop frame for slow subscriber",
				zap.String("group", group),
				zap.String("client_id", client.id))
		}
	}
	h.mu.RUnlock()

	if len(prune) > 0 {
		h.mu.Lock()
		for _, client := range prune {
			h.removeLocked(group, client)
		}
		h.mu.Unlock()
	}
	return delivered, dropped
}

// Close drains every group, closing all subscriber channels. Used at process
// shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for group, members := range h.groups {
		for _, client := range members {
			close(client.send)
		}
		delete(h.groups, group)
	}
}

// GroupSize reports the number of currently-connected subscribers.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) removeLocked(group string, client *Client) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	if _, present := members[client.id]; !present {
		return
	}
	delete(members, client.id)
	close(client.send)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}
