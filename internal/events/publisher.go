package events

import (
	"time"

	"github.com/signageops/signage-service/internal/types"
)

// Feed is the slice of the WebSocket hub the publisher needs.
type Feed interface {
	Broadcast(event *types.Event)
	ClientCount() int
}

// EventPublisher translates signal mutations into ops-feed events. When no
// dashboard is connected the event is not built at all.
type EventPublisher struct {
	feed Feed
}

func NewEventPublisher(feed Feed) *EventPublisher {
	return &EventPublisher{feed: feed}
}

// PublishReloadTriggered announces a "reload all displays" command
func (p *EventPublisher) PublishReloadTriggered(at time.Time) {
	if p.feed.ClientCount() == 0 {
		return
	}
	eventData := &types.ReloadTriggeredEvent{
		ReloadTimestamp: at.UTC().Format(time.RFC3339),
	}
	p.feed.Broadcast(types.NewEvent(types.EventReloadTriggered, eventData))
}

// PublishBroadcastStopped announces the global kill-switch being engaged
func (p *EventPublisher) PublishBroadcastStopped() {
	if p.feed.ClientCount() == 0 {
		return
	}
	p.feed.Broadcast(types.NewEvent(types.EventBroadcastStopped, nil))
}

// PublishBroadcastResumed announces broadcasting being resumed
func (p *EventPublisher) PublishBroadcastResumed() {
	if p.feed.ClientCount() == 0 {
		return
	}
	p.feed.Broadcast(types.NewEvent(types.EventBroadcastResumed, nil))
}

// PublishMediaActivated announces a direct-activation override being set
func (p *EventPublisher) PublishMediaActivated(mediaID int64) {
	if p.feed.ClientCount() == 0 {
		return
	}
	eventData := &types.MediaActivatedEvent{MediaID: mediaID}
	p.feed.Broadcast(types.NewEvent(types.EventMediaActivated, eventData))
}

// PublishMediaDeactivated announces the override being cleared
func (p *EventPublisher) PublishMediaDeactivated() {
	if p.feed.ClientCount() == 0 {
		return
	}
	p.feed.Broadcast(types.NewEvent(types.EventMediaDeactivated, nil))
}
