// Package notify fans committed registration transitions out to interested
// subscribers. Delivery is best-effort at-most-once to currently connected
// subscribers of an event's topic; there is no durable queue and no replay.
package notify

import (
	"sync"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
)

// Change is the fact published after a committed transition: the
// registration's new status and the event's resulting approved count.
type Change struct {
	EventID        uint64                   `json:"event_id"`
	RegistrationID uint64                   `json:"registration_id"`
	ParticipantID  uint64                   `json:"participant_id"`
	Status         model.RegistrationStatus `json:"status"`
	ApprovedCount  int                      `json:"approved_count"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

// Subscription is a live membership in one event's topic. Consume changes
// from C; call Close to leave the topic. The channel is closed by Close,
// never by the hub, so ranging over C after Close terminates cleanly.
type Subscription struct {
	C chan Change

	hub     *Hub
	eventID uint64
	once    sync.Once
}

// Close removes the subscription from its topic and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.C)
	})
}

// Hub routes changes to per-event topics. Publish never blocks: a
// subscriber whose buffer is full simply misses the change, which is the
// at-most-once contract. The hub tracks no subscriber identity beyond the
// topic membership itself.
type Hub struct {
	mu     sync.RWMutex
	topics map[uint64]map[*Subscription]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[uint64]map[*Subscription]struct{})}
}

// Subscribe joins the topic for the given event. The buffer sizes the
// subscription channel; values below 1 are raised to 1 so Publish can
// always hand off at least one change to an idle subscriber.
func (h *Hub) Subscribe(eventID uint64, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{
		C:       make(chan Change, buffer),
		hub:     h,
		eventID: eventID,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[eventID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[eventID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[s.eventID]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, s.eventID)
	}
}

// Publish delivers the change to every current subscriber of its event
// topic without blocking. Slow subscribers are skipped.
func (h *Hub) Publish(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[change.EventID] {
		select {
		case sub.C <- change:
		default:
			// Buffer full: drop. Best-effort delivery only.
		}
	}
}

// SubscriberCount reports how many subscribers are attached to an event's
// topic. Used by tests and the health surface.
func (h *Hub) SubscriberCount(eventID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[eventID])
}
