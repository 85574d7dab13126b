package playlists

import (
	"log/slog"
	"sort"
	"time"

	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

// Snapshotter persists state after a mutation.
type Snapshotter interface {
	Save()
}

// Service manages ordered sequences of media references with per-item
// display durations. Items referencing media that has since been deleted
// stay out of storage (the delete cascades), and any reference that goes
// stale mid-flight is skipped at render time by the resolver.
type Service struct {
	store     *store.Store
	snapshots Snapshotter
}

func NewService(st *store.Store, snapshots Snapshotter) *Service {
	return &Service{store: st, snapshots: snapshots}
}

const defaultDurationSeconds = 10

// buildItems normalizes request items: missing durations default to 10
// seconds. Explicit order values are kept only when every item carries a
// distinct one; otherwise items are renumbered densely from zero, stable in
// their given order, so a partially-ordered payload never stores colliding
// order values.
func buildItems(reqs []types.PlaylistItemRequest) []types.PlaylistItem {
	items := make([]types.PlaylistItem, 0, len(reqs))
	explicit := false
	duplicated := false
	seen := make(map[int]bool, len(reqs))
	for _, r := range reqs {
		if r.Order != 0 {
			explicit = true
		}
		if seen[r.Order] {
			duplicated = true
		}
		seen[r.Order] = true
	}

	for _, r := range reqs {
		item := types.PlaylistItem{
			MediaID:         r.MediaID,
			DurationSeconds: r.DurationSeconds,
			Order:           r.Order,
		}
		if item.DurationSeconds <= 0 {
			item.DurationSeconds = defaultDurationSeconds
		}
		items = append(items, item)
	}

	if !explicit || duplicated {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
		for i := range items {
			items[i].Order = i
		}
	}
	return items
}

func (s *Service) Create(req types.PlaylistRequest) types.Playlist {
	now := time.Now()
	pl := types.Playlist{
		ID:          s.store.NextPlaylistID(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       buildItems(req.Items),
	}

	s.store.PutPlaylist(pl)
	s.snapshots.Save()

	slog.Info("Playlist created",
		slog.Int64("playlist_id", pl.ID),
		slog.Int("items", len(pl.Items)))

	return s.attach(pl)
}

// Update replaces a playlist's name, description and items. Returns false
// when the id is unknown.
func (s *Service) Update(id int64, req types.PlaylistRequest) (types.Playlist, bool) {
	existing, ok := s.store.GetPlaylist(id)
	if !ok {
		return types.Playlist{}, false
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Items = buildItems(req.Items)
	existing.UpdatedAt = time.Now()

	s.store.PutPlaylist(existing)
	s.snapshots.Save()

	slog.Info("Playlist updated", slog.Int64("playlist_id", id))
	return s.attach(existing), true
}

func (s *Service) List() []types.Playlist {
	lists := s.store.ListPlaylists()
	for i := range lists {
		lists[i] = s.attach(lists[i])
	}
	return lists
}

func (s *Service) Get(id int64) (types.Playlist, bool) {
	pl, ok := s.store.GetPlaylist(id)
	if !ok {
		return types.Playlist{}, false
	}
	return s.attach(pl), true
}

func (s *Service) Delete(id int64) bool {
	if !s.store.DeletePlaylist(id) {
		return false
	}
	s.snapshots.Save()
	slog.Info("Playlist deleted", slog.Int64("playlist_id", id))
	return true
}

// attach resolves each item's media id against the catalog and fills the
// convenience Media field. The attachment is never authoritative; only the
// id is persisted.
func (s *Service) attach(pl types.Playlist) types.Playlist {
	for i, item := range pl.Items {
		if media, ok := s.store.GetMedia(item.MediaID); ok {
			m := media
			pl.Items[i].Media = &m
		}
	}
	return pl
}
