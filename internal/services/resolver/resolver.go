package resolver

import (
	"sort"
	"time"

	"github.com/signageops/signage-service/internal/services/schedules"
	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

// URLProvider derives the byte-fetch URL for a stored object name.
type URLProvider interface {
	URL(objectName string) string
}

// Service answers "what should be shown right now" for every display poll.
// Resolution is synchronous and touches only in-memory state; it never
// fails on valid state and at worst degrades to content type "none".
type Service struct {
	store *store.Store
	urls  URLProvider
	now   func() time.Time
}

func NewService(st *store.Store, urls URLProvider) *Service {
	return &Service{
		store: st,
		urls:  urls,
		now:   time.Now,
	}
}

// Resolve computes the content descriptor for one poll, in strict priority
// order: broadcast stop, then direct override, then the schedule table, then
// fallback content. The display mode, server time and per-display reload
// flag are attached regardless of which branch produced the content; a true
// reload flag is acknowledged within this same call so the next poll from
// the same display does not reload again for the same event.
func (s *Service) Resolve(displayID string) types.ResolvedContent {
	now := s.now()

	content := s.resolveContent(now)

	content.DisplayMode = s.store.DisplayMode()
	content.ServerTime = now.Format(time.RFC3339)

	shouldReload, reloadAt := s.store.ShouldReload(displayID)
	content.ShouldReload = shouldReload
	if reloadAt != nil {
		content.ReloadTimestamp = reloadAt.Format(time.RFC3339)
	}

	return content
}

func (s *Service) resolveContent(now time.Time) types.ResolvedContent {
	if s.store.BroadcastStopped() {
		return types.ResolvedContent{ContentType: types.ContentStopped}
	}

	// Direct activation bypasses the schedule table entirely. A stale
	// override (media deleted since activation) falls through to normal
	// scheduling.
	if active := s.store.ActiveMediaID(); active != nil {
		if media, ok := s.store.GetMedia(*active); ok {
			item := s.renderSingle(media)
			return types.ResolvedContent{
				ContentType:  types.ContentImage,
				SingleMedia:  &item,
				ScheduleName: "Direct Activation",
			}
		}
	}

	if best, ok := s.matchSchedule(now); ok {
		if content, ok := s.renderSchedule(best); ok {
			return content
		}
	}

	return s.fallback()
}

// matchSchedule filters the table to active entries whose day and time
// window contain now, and picks the highest priority among them. Equal
// priorities tie-break to the lowest schedule id: the table is scanned in
// ascending id order and only a strictly higher priority displaces the
// current best.
func (s *Service) matchSchedule(now time.Time) (types.Schedule, bool) {
	minute := now.Hour()*60 + now.Minute()
	weekday := int(now.Weekday())

	var best types.Schedule
	found := false
	for _, sch := range s.store.ListSchedules() {
		if !sch.IsActive {
			continue
		}
		if sch.DayOfWeek != nil && *sch.DayOfWeek != weekday {
			continue
		}
		if !inWindow(sch.StartTime, sch.EndTime, minute) {
			continue
		}
		if !found || sch.Priority > best.Priority {
			best = sch
			found = true
		}
	}
	return best, found
}

// inWindow reports whether the minute of day falls in [start, end]. A start
// past the end means the window spans midnight: match when now >= start or
// now <= end.
func inWindow(startTime, endTime string, minute int) bool {
	start, err := schedules.ParseClock(startTime)
	if err != nil {
		return false
	}
	end, err := schedules.ParseClock(endTime)
	if err != nil {
		return false
	}

	if start <= end {
		return start <= minute && minute <= end
	}
	return minute >= start || minute <= end
}

// renderSchedule turns a matched schedule into a descriptor. It reports
// false when the schedule's content is missing or renders empty, in which
// case resolution falls back to default content.
func (s *Service) renderSchedule(sch types.Schedule) (types.ResolvedContent, bool) {
	switch sch.ContentType {
	case types.ScheduleContentPlaylist:
		if sch.PlaylistID == nil {
			return types.ResolvedContent{}, false
		}
		pl, ok := s.store.GetPlaylist(*sch.PlaylistID)
		if !ok {
			return types.ResolvedContent{}, false
		}
		items := s.renderItems(pl)
		if len(items) == 0 {
			return types.ResolvedContent{}, false
		}
		return types.ResolvedContent{
			ContentType:   types.ContentPlaylist,
			PlaylistItems: items,
			ScheduleName:  sch.Name,
		}, true

	case types.ScheduleContentSingleImage:
		if sch.MediaID == nil {
			return types.ResolvedContent{}, false
		}
		media, ok := s.store.GetMedia(*sch.MediaID)
		if !ok {
			return types.ResolvedContent{}, false
		}
		item := s.renderSingle(media)
		return types.ResolvedContent{
			ContentType:  types.ContentImage,
			SingleMedia:  &item,
			ScheduleName: sch.Name,
		}, true
	}
	return types.ResolvedContent{}, false
}

// fallback serves default content when nothing is scheduled: the first
// playlist in catalog order with renderable items, failing that the first
// media item, failing that "none".
func (s *Service) fallback() types.ResolvedContent {
	for _, pl := range s.store.ListPlaylists() {
		items := s.renderItems(pl)
		if len(items) > 0 {
			return types.ResolvedContent{
				ContentType:   types.ContentPlaylist,
				PlaylistItems: items,
			}
		}
	}

	if media := s.store.ListMedia(); len(media) > 0 {
		item := s.renderSingle(media[0])
		return types.ResolvedContent{
			ContentType: types.ContentImage,
			SingleMedia: &item,
		}
	}

	return types.ResolvedContent{ContentType: types.ContentNone}
}

// renderItems sorts playlist items by their numeric order (orders may be
// sparse after cascade deletes) and skips any item whose media id no longer
// resolves.
func (s *Service) renderItems(pl types.Playlist) []types.ResolvedItem {
	items := append([]types.PlaylistItem(nil), pl.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	out := make([]types.ResolvedItem, 0, len(items))
	for _, item := range items {
		media, ok := s.store.GetMedia(item.MediaID)
		if !ok {
			continue
		}
		out = append(out, types.ResolvedItem{
			MediaID:         media.ID,
			URL:             s.urls.URL(media.StoredName),
			Type:            media.Type,
			DurationSeconds: item.DurationSeconds,
			FileName:        media.OriginalName,
		})
	}
	return out
}

// renderSingle builds a single-media entry shown indefinitely (duration 0).
func (s *Service) renderSingle(media types.MediaItem) types.ResolvedItem {
	return types.ResolvedItem{
		MediaID:         media.ID,
		URL:             s.urls.URL(media.StoredName),
		Type:            media.Type,
		DurationSeconds: 0,
		FileName:        media.OriginalName,
	}
}
