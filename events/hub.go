// events/hub.go - In-process fan-out of quest board activity
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types pushed to live clients
const (
	QuestCreated         = "quest.created"
	QuestUpdated         = "quest.updated"
	QuestDeleted         = "quest.deleted"
	ParticipantJoined    = "participant.joined"
	ParticipantCompleted = "participant.completed"
	ParticipantCleared   = "participant.cleared"
)

const subscriberBuffer = 32

type Event struct {
	Type    string      `json:"type"`
	QuestID uint        `json:"quest_id"`
	UserID  uint        `json:"user_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Hub delivers every published event to every current subscriber. A
// subscriber whose buffer is full is disconnected rather than blocking the
// publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
		log:  log,
	}
}

// Subscribe registers a listener. The returned cancel func unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() { h.remove(ch) }
}

// Publish fans the event out without blocking
func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	var slow []chan Event

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			slow = append(slow, ch)
		}
	}
	h.mu.RUnlock()

	for _, ch := range slow {
		h.log.Warn("Dropping slow event subscriber", zap.String("event", evt.Type))
		h.remove(ch)
	}
}

// Len returns the number of live subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects all subscribers. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) remove(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}
