package pubsub

import (
	"context"
	"log"
	"sync"

	"livepoll/internal/metrics"
)

// Conn is one live subscriber. Send may fail; a failed connection is
// evicted from the hub and never retried.
type Conn interface {
	Send(ctx context.Context, data []byte) error
}

// Hub is a process-local multicast registry keyed by poll id. The lock
// guards only the in-memory sets and is never held across a send.
type Hub struct {
	mu       sync.Mutex
	channels map[int64]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[int64]map[Conn]struct{}),
	}
}

// Subscribe registers conn under pollID. Subscribing the same connection
// twice has no additional effect.
func (h *Hub) Subscribe(pollID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.channels[pollID]
	if set == nil {
		set = make(map[Conn]struct{})
		h.channels[pollID] = set
	}
	set[conn] = struct{}{}
}

// Unsubscribe removes conn; an emptied poll entry is dropped so the map
// does not accumulate dead polls.
func (h *Hub) Unsubscribe(pollID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.channels[pollID]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.channels, pollID)
	}
}

// Broadcast delivers payload to every connection subscribed to pollID at
// call time. Connections subscribing mid-broadcast miss this payload.
// A failed send evicts that connection only; the rest still receive it.
func (h *Hub) Broadcast(ctx context.Context, pollID int64, payload []byte) {
	h.mu.Lock()
	set := h.channels[pollID]
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Send(ctx, payload); err != nil {
			log.Printf("dropping subscriber of poll %d: %v", pollID, err)
			metrics.IncBroadcastFailure()
			h.Unsubscribe(pollID, c)
		}
	}
}

// SubscriberCount reports the live subscriber count for a poll.
func (h *Hub) SubscriberCount(pollID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[pollID])
}
