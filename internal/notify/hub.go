package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is an ephemeral notification. It is never persisted; a user with no
// live subscription simply misses it.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types emitted by the handlers.
const (
	EventConnected     = "connected"
	EventMemberJoined  = "member_joined"
	EventMemberLeft    = "member_left"
	EventMemberRemoved = "member_removed"
	EventSlotTaken     = "slot_taken"
	EventSlotReleased  = "slot_released"
	EventTaskToggled   = "task_toggled"
	EventModeChanged   = "mode_changed"
)

func NewEvent(eventType, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// subscriptionBuffer bounds how far a slow consumer can lag before events
// are dropped. Delivery is best-effort at-most-once.
const subscriptionBuffer = 16

type Subscription struct {
	hub    *Hub
	userID uint
	events chan Event
	once   sync.Once
}

// Events returns the receive channel. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscription and releases its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.events)
	})
}

// Hub fans events out to every live subscription of a user.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[*Subscription]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uint]map[*Subscription]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		hub:    h,
		userID: userID,
		events: make(chan Event, subscriptionBuffer),
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, exists := h.subs[sub.userID]; exists {
		delete(subs, sub)

		if len(subs) == 0 {
			delete(h.subs, sub.userID)
		}
	}
}

// Publish delivers the event to every live subscription of the user.
// A full buffer drops the event for that subscription; no subscriber means
// the event is silently discarded.
func (h *Hub) Publish(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[userID] {
		select {
		case sub.events <- event:
		default:
			h.logger.Debug("dropping event for slow subscriber",
				zap.Uint("user_id", userID),
				zap.String("type", event.Type))
		}
	}
}

// PublishAll delivers the event to every listed user.
func (h *Hub) PublishAll(userIDs []uint, event Event) {
	for _, userID := range userIDs {
		h.Publish(userID, event)
	}
}
