package pubsub

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the kind of change an event reports.
type EventType string

const (
	EventAdded   EventType = "added"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) valid() bool {
	switch t {
	case EventAdded, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// Event is one change notification as sent to clients. The payload is
// encoded when the event is built, so later changes to the source entity are
// not visible to subscribers.
type Event struct {
	Type     EventType       `json:"type"`
	Resource string          `json:"resource"`
	Date     time.Time       `json:"date"`
	Payload  json.RawMessage `json:"payload"`
}

// NewEvent encodes snapshot and stamps the event with date.
func NewEvent(typ EventType, resource string, date time.Time, snapshot any) (Event, error) {
	if !typ.valid() {
		return Event{}, fmt.Errorf("unknown event type %q", typ)
	}
	if resource == "" {
		return Event{}, fmt.Errorf("event resource is required")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s snapshot: %w", resource, err)
	}
	return Event{
		Type:     typ,
		Resource: resource,
		Date:     date.UTC(),
		Payload:  payload,
	}, nil
}
