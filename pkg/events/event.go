package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ADMIN_PAUSE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete event carried by every bus.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewEvent(eventType string, data map[string]interface{}, occurredAt time.Time) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: occurredAt}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// String reads a string field from the payload
func (e BaseEvent) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// Bus is anything that can carry an event out of the process (or across it)
type Bus interface {
	Publish(ctx context.Context, event Event) error
}

// Handler processes one received event
type Handler func(ctx context.Context, event Event) error

// Subscriber delivers every event of a type to a handler on this instance
type Subscriber interface {
	Subscribe(ctx context.Context, eventType string, handler Handler) error
}

// SubjectPrefix namespaces every delivery scheduling event
const SubjectPrefix = "delivery"

// Subject is the bus address of an event type
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}
