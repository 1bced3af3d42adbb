package shape

import "github.com/paulmach/orb"

// EventType names a shape notification.
type EventType string

const (
	PropertiesUpdated  EventType = "properties:updated"
	CoordinatesUpdated EventType = "coordinates:updated"
	DimensionsUpdated  EventType = "dimensions:updated"
	RotationUpdated    EventType = "rotation:updated"
)

// Event is delivered to listeners registered with Shape.On.
type Event struct {
	Type    EventType `json:"type"`
	ShapeID string    `json:"shapeId"`
	Kind    Kind      `json:"kind"`

	// Properties is set for properties:updated.
	Properties *Properties `json:"properties,omitempty"`
	// Coordinates is set for coordinates:updated (rectangle corners).
	Coordinates []orb.Point `json:"coordinates,omitempty"`
	Width       float64     `json:"width,omitempty"`
	Height      float64     `json:"height,omitempty"`
	Rotation    float64     `json:"rotation,omitempty"`
}

// Listener receives shape events synchronously.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// notifier is an explicit observer list owned by one shape.
type notifier struct {
	next    int
	entries []listenerEntry
}

func (n *notifier) on(fn Listener) func() {
	n.next++
	id := n.next
	n.entries = append(n.entries, listenerEntry{id: id, fn: fn})
	return func() {
		for i, e := range n.entries {
			if e.id == id {
				n.entries = append(n.entries[:i:i], n.entries[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier) emit(e Event) {
	// Copy so listeners may unsubscribe while being notified.
	entries := append([]listenerEntry(nil), n.entries...)
	for _, entry := range entries {
		entry.fn(e)
	}
}
