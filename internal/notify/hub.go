package notify

import (
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how many undelivered events a slow consumer can
// hold. Events are cache-invalidation signals, so dropping beyond the buffer
// loses nothing the next event would not repair.
const subscriberBuffer = 8

// Hub is the in-process observer registry. Subscribe, Unsubscribe and
// Broadcast are safe to call concurrently from any number of requests.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan string
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan string)}
}

// Subscribe registers a new observer and returns its id together with the
// channel events will arrive on. The caller must Unsubscribe with the same
// id when done.
func (h *Hub) Subscribe() (string, <-chan string) {
	id := uuid.New().String()
	ch := make(chan string, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast fans the event out to every subscriber without blocking. A full
// subscriber buffer drops the event for that subscriber only.
func (h *Hub) Broadcast(event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Size returns the current subscriber count.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
