package types

import "time"

// EventType represents the type of real-time ops event
type EventType string

const (
	EventReloadTriggered  EventType = "display.reload"
	EventBroadcastStopped EventType = "broadcast.stopped"
	EventBroadcastResumed EventType = "broadcast.resumed"
	EventMediaActivated   EventType = "media.activated"
	EventMediaDeactivated EventType = "media.deactivated"
)

// Event represents a real-time event that can be sent over WebSocket to
// connected ops dashboards
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// ReloadTriggeredEvent carries the instant of a "reload all displays" command
type ReloadTriggeredEvent struct {
	ReloadTimestamp string `json:"reload_timestamp"`
}

// MediaActivatedEvent carries the media item set as a direct override
type MediaActivatedEvent struct {
	MediaID int64 `json:"media_id"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
