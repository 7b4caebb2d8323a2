package chat

import (
	"log"
	"sync"
	"time"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
)

// Event types published on the hub.
const (
	EventMessage = "message"
	EventState   = "state"
	EventError   = "error"
)

// Event is a change in a session pushed to live subscribers.
type Event struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	Message   *chat.Message `json:"message,omitempty"`
	State     string        `json:"state,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// Hub fans out session events to subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers for events of sessionID. The returned func unsubscribes
// and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[sessionID], ch)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber of its session. Slow subscribers
// miss events rather than block the publisher.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			log.Printf("[hub] dropping %s event for slow subscriber, session=%s", ev.Type, ev.SessionID)
		}
	}
}
