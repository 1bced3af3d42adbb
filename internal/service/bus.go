package service

import "sync"

// Event represents a plan or shape change.
type Event struct {
	Resource string `json:"resource"` // "plans", "shapes" or "map"
	Action   string `json:"action"`   // "created", "deleted", a shape event type, "panning"
	Plan     string `json:"plan,omitempty"`
	ID       string `json:"id,omitempty"`
	Payload  any    `json:"payload,omitempty"`
}

// EventBus is a simple fan-out pub/sub for change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// busHost forwards a controller's panning toggle to the bus so the map UI can
// lock itself during a drag.
type busHost struct {
	bus  *EventBus
	plan string
}

func (h busHost) SetPanning(enabled bool) {
	h.bus.Publish(Event{Resource: "map", Action: "panning", Plan: h.plan, Payload: enabled})
}
