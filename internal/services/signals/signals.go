package signals

import (
	"context"
	"log/slog"
	"time"

	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

// Snapshotter persists state after a mutation.
type Snapshotter interface {
	Save()
}

// Publisher pushes signal changes to connected ops dashboards. Display
// devices never depend on it; they observe the same changes on their next
// poll.
type Publisher interface {
	PublishReloadTriggered(at time.Time)
	PublishBroadcastStopped()
	PublishBroadcastResumed()
	PublishMediaActivated(mediaID int64)
	PublishMediaDeactivated()
}

// Presence mirrors display heartbeats into a TTL-bounded side store for
// monitoring. Optional; a nil tracker disables mirroring.
type Presence interface {
	Touch(ctx context.Context, displayID string) error
}

// Service owns the global signal state: the reload event, the broadcast
// kill-switch, the direct-activation override, the display mode hint and
// display heartbeats.
type Service struct {
	store     *store.Store
	snapshots Snapshotter
	publisher Publisher
	presence  Presence
}

func NewService(st *store.Store, snapshots Snapshotter, publisher Publisher, presence Presence) *Service {
	return &Service{
		store:     st,
		snapshots: snapshots,
		publisher: publisher,
		presence:  presence,
	}
}

// TriggerReload records a new global reload instant. It does not target a
// specific display; every display observes it exactly once via its polls.
func (s *Service) TriggerReload() time.Time {
	now := time.Now()
	s.store.TriggerReload(now)
	s.publisher.PublishReloadTriggered(now)
	slog.Info("Reload triggered", slog.Time("reload_timestamp", now))
	return now
}

func (s *Service) StopBroadcast() {
	s.store.SetBroadcastStopped(true)
	s.snapshots.Save()
	s.publisher.PublishBroadcastStopped()
	slog.Info("Broadcast stopped")
}

func (s *Service) ResumeBroadcast() {
	s.store.SetBroadcastStopped(false)
	s.snapshots.Save()
	s.publisher.PublishBroadcastResumed()
	slog.Info("Broadcast resumed")
}

func (s *Service) IsStopped() bool {
	return s.store.BroadcastStopped()
}

// ActivateMedia sets the direct-activation override, bypassing the schedule
// table until cleared. Starting a manual override always resumes
// broadcasting. Returns false when the media id is unknown.
func (s *Service) ActivateMedia(mediaID int64) (types.MediaItem, bool) {
	media, ok := s.store.GetMedia(mediaID)
	if !ok {
		return types.MediaItem{}, false
	}

	id := mediaID
	s.store.SetActiveMedia(&id)
	s.store.SetBroadcastStopped(false)
	s.snapshots.Save()
	s.publisher.PublishMediaActivated(mediaID)

	slog.Info("Media activated", slog.Int64("media_id", mediaID))
	return media, true
}

func (s *Service) DeactivateMedia() {
	s.store.SetActiveMedia(nil)
	s.snapshots.Save()
	s.publisher.PublishMediaDeactivated()
	slog.Info("Media override cleared")
}

// RecordHeartbeat updates the heartbeat map for monitoring. The display's
// own clock and current content are kept as reported; the server clock
// stamps LastSeen. Heartbeats have no effect on content resolution.
func (s *Service) RecordHeartbeat(ctx context.Context, displayID, clientTime, currentContent string) {
	s.store.RecordHeartbeat(displayID, types.DisplayHeartbeat{
		LastSeen:       time.Now(),
		ClientTime:     clientTime,
		CurrentContent: currentContent,
	})

	if s.presence != nil {
		if err := s.presence.Touch(ctx, displayID); err != nil {
			slog.Warn("Failed to mirror heartbeat to presence store",
				slog.String("display_id", displayID),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Service) Heartbeats() map[string]types.DisplayHeartbeat {
	return s.store.Heartbeats()
}

func (s *Service) DisplayMode() string {
	return s.store.DisplayMode()
}

func (s *Service) SetDisplayMode(mode string) {
	s.store.SetDisplayMode(mode)
	s.snapshots.Save()
	slog.Info("Display mode updated", slog.String("display_mode", mode))
}
