// Package sse streams committed settings events to connected UI clients.
package sse

import (
	"time"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

// EventType names an SSE event. Settings events reuse their domain kind.
type EventType string

const (
	// EventConnected is sent once when a client connects.
	EventConnected EventType = "connected"
	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
}

// NewSettingsEvent wraps a committed settings event.
func NewSettingsEvent(e domain.Event) Event {
	return Event{
		Timestamp: e.Metadata().OccurredAt,
		Type:      EventType(e.Kind()),
		Data:      e,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Timestamp: time.Now(),
		Type:      EventHeartbeat,
		Data:      struct{}{},
	}
}
