package store

import (
	"sort"
	"sync"
	"time"

	"github.com/signageops/signage-service/internal/types"
)

// Store owns all in-memory state shared between admin requests and display
// polls: the media catalog, playlists, schedules and the global signal
// fields. It is constructed once per process and passed to the services by
// reference.
//
// Each map is guarded by its own RWMutex, so single-key operations are
// individually atomic. The only composite operation that takes more than one
// lock is the media delete cascade, which holds the media and playlist locks
// together so a concurrent poll never sees a playlist pointing at a media
// item that is already gone from the catalog.
type Store struct {
	mediaMu sync.RWMutex
	media   map[int64]types.MediaItem

	playlistMu sync.RWMutex
	playlists  map[int64]types.Playlist

	scheduleMu sync.RWMutex
	schedules  map[int64]types.Schedule

	signalMu         sync.RWMutex
	activeMediaID    *int64
	broadcastStopped bool
	displayMode      string
	reloadTimestamp  *time.Time
	displayLastSeen  map[string]time.Time
	heartbeats       map[string]types.DisplayHeartbeat

	idMu           sync.Mutex
	nextMediaID    int64
	nextPlaylistID int64
	nextScheduleID int64
}

func New() *Store {
	return &Store{
		media:           make(map[int64]types.MediaItem),
		playlists:       make(map[int64]types.Playlist),
		schedules:       make(map[int64]types.Schedule),
		displayLastSeen: make(map[string]time.Time),
		heartbeats:      make(map[string]types.DisplayHeartbeat),
		displayMode:     "standard",
		nextMediaID:     1,
		nextPlaylistID:  1,
		nextScheduleID:  1,
	}
}

// NextMediaID returns a fresh media id. Ids are strictly increasing for the
// lifetime of the process and never reused, even after deletes.
func (s *Store) NextMediaID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextMediaID
	s.nextMediaID++
	return id
}

func (s *Store) NextPlaylistID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextPlaylistID
	s.nextPlaylistID++
	return id
}

func (s *Store) NextScheduleID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextScheduleID
	s.nextScheduleID++
	return id
}

// AdvanceIDs moves the id counters past the given maxima. Called once after
// a snapshot restore so ids assigned after a restart never collide with
// persisted ones.
func (s *Store) AdvanceIDs(maxMedia, maxPlaylist, maxSchedule int64) {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	if maxMedia >= s.nextMediaID {
		s.nextMediaID = maxMedia + 1
	}
	if maxPlaylist >= s.nextPlaylistID {
		s.nextPlaylistID = maxPlaylist + 1
	}
	if maxSchedule >= s.nextScheduleID {
		s.nextScheduleID = maxSchedule + 1
	}
}

// --- media catalog ---

func (s *Store) PutMedia(item types.MediaItem) {
	s.mediaMu.Lock()
	defer s.mediaMu.Unlock()
	s.media[item.ID] = item
}

func (s *Store) GetMedia(id int64) (types.MediaItem, bool) {
	s.mediaMu.RLock()
	defer s.mediaMu.RUnlock()
	item, ok := s.media[id]
	return item, ok
}

// ListMedia returns all media items in catalog order (ascending id).
func (s *Store) ListMedia() []types.MediaItem {
	s.mediaMu.RLock()
	defer s.mediaMu.RUnlock()

	items := make([]types.MediaItem, 0, len(s.media))
	for _, item := range s.media {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// DeleteMediaCascade removes a media item and strips it from every playlist
// that references it, in one exclusive section. Remaining playlist items keep
// their original Order values, so orders may become sparse; readers sort by
// numeric order, never by contiguity.
func (s *Store) DeleteMediaCascade(id int64) (types.MediaItem, bool) {
	s.mediaMu.Lock()
	defer s.mediaMu.Unlock()
	s.playlistMu.Lock()
	defer s.playlistMu.Unlock()

	item, ok := s.media[id]
	if !ok {
		return types.MediaItem{}, false
	}
	delete(s.media, id)

	for pid, pl := range s.playlists {
		kept := pl.Items[:0:0]
		for _, it := range pl.Items {
			if it.MediaID != id {
				kept = append(kept, it)
			}
		}
		if len(kept) != len(pl.Items) {
			pl.Items = kept
			s.playlists[pid] = pl
		}
	}
	return item, true
}

// --- playlists ---

// PutPlaylist stores a playlist. Attached media objects on items are
// dropped; only the media id is durable.
func (s *Store) PutPlaylist(pl types.Playlist) {
	s.playlistMu.Lock()
	defer s.playlistMu.Unlock()
	pl.Items = copyItems(pl.Items)
	for i := range pl.Items {
		pl.Items[i].Media = nil
	}
	s.playlists[pl.ID] = pl
}

func (s *Store) GetPlaylist(id int64) (types.Playlist, bool) {
	s.playlistMu.RLock()
	defer s.playlistMu.RUnlock()
	pl, ok := s.playlists[id]
	if !ok {
		return types.Playlist{}, false
	}
	pl.Items = copyItems(pl.Items)
	return pl, true
}

func (s *Store) DeletePlaylist(id int64) bool {
	s.playlistMu.Lock()
	defer s.playlistMu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return false
	}
	delete(s.playlists, id)
	return true
}

// ListPlaylists returns all playlists in catalog order (ascending id).
func (s *Store) ListPlaylists() []types.Playlist {
	s.playlistMu.RLock()
	defer s.playlistMu.RUnlock()

	lists := make([]types.Playlist, 0, len(s.playlists))
	for _, pl := range s.playlists {
		pl.Items = copyItems(pl.Items)
		lists = append(lists, pl)
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].ID < lists[j].ID })
	return lists
}

func copyItems(items []types.PlaylistItem) []types.PlaylistItem {
	if items == nil {
		return nil
	}
	out := make([]types.PlaylistItem, len(items))
	copy(out, items)
	return out
}

// --- schedules ---

func (s *Store) PutSchedule(sch types.Schedule) {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()
	s.schedules[sch.ID] = sch
}

func (s *Store) GetSchedule(id int64) (types.Schedule, bool) {
	s.scheduleMu.RLock()
	defer s.scheduleMu.RUnlock()
	sch, ok := s.schedules[id]
	return sch, ok
}

func (s *Store) DeleteSchedule(id int64) bool {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return false
	}
	delete(s.schedules, id)
	return true
}

func (s *Store) ListSchedules() []types.Schedule {
	s.scheduleMu.RLock()
	defer s.scheduleMu.RUnlock()

	schedules := make([]types.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		schedules = append(schedules, sch)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules
}

// --- global signal state ---

func (s *Store) SetActiveMedia(id *int64) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()
	s.activeMediaID = id
}

func (s *Store) ActiveMediaID() *int64 {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()
	return s.activeMediaID
}

func (s *Store) SetBroadcastStopped(stopped bool) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()
	s.broadcastStopped = stopped
}

func (s *Store) BroadcastStopped() bool {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()
	return s.broadcastStopped
}

func (s *Store) SetDisplayMode(mode string) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()
	s.displayMode = mode
}

func (s *Store) DisplayMode() string {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()
	return s.displayMode
}

// TriggerReload records a new global reload instant. Every display observes
// it exactly once via ShouldReload.
func (s *Store) TriggerReload(at time.Time) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()
	s.reloadTimestamp = &at
}

func (s *Store) ReloadTimestamp() *time.Time {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()
	return s.reloadTimestamp
}

// ShouldReload reports whether the given display still has to act on the
// current reload event, and acknowledges it in the same call so the next
// poll from the same display does not reload again.
func (s *Store) ShouldReload(displayID string) (bool, *time.Time) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()

	ts := s.reloadTimestamp
	if ts == nil || displayID == "" {
		return false, ts
	}
	seen, ok := s.displayLastSeen[displayID]
	if ok && !ts.After(seen) {
		return false, ts
	}
	s.displayLastSeen[displayID] = *ts
	return true, ts
}

func (s *Store) RecordHeartbeat(displayID string, hb types.DisplayHeartbeat) {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()
	s.heartbeats[displayID] = hb
}

// Heartbeats returns a copy of the heartbeat map for monitoring.
func (s *Store) Heartbeats() map[string]types.DisplayHeartbeat {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()

	out := make(map[string]types.DisplayHeartbeat, len(s.heartbeats))
	for id, hb := range s.heartbeats {
		out[id] = hb
	}
	return out
}

// PruneDisplays drops heartbeat and reload-acknowledgment entries for
// displays whose last heartbeat is older than the cutoff. Displays that
// never sent a heartbeat but acknowledged a reload are left alone; they are
// pruned once their acknowledgment itself predates the cutoff. Returns the
// number of entries removed.
func (s *Store) PruneDisplays(cutoff time.Time) int {
	s.signalMu.Lock()
	defer s.signalMu.Unlock()

	removed := 0
	for id, hb := range s.heartbeats {
		if hb.LastSeen.Before(cutoff) {
			delete(s.heartbeats, id)
			delete(s.displayLastSeen, id)
			removed++
		}
	}
	for id, at := range s.displayLastSeen {
		if _, beating := s.heartbeats[id]; !beating && at.Before(cutoff) {
			delete(s.displayLastSeen, id)
			removed++
		}
	}
	return removed
}
