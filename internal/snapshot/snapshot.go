package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

const (
	mediaFile     = "media.json"
	playlistsFile = "playlists.json"
	schedulesFile = "schedules.json"
	settingsFile  = "settings.json"
)

// Service persists the full in-memory state to disk as four JSON documents,
// each rewritten wholesale after every mutation. Writes are serialized by a
// single mutex so concurrent mutations never interleave a partial write.
//
// Save failures are logged and never surfaced to the caller: the in-memory
// effect of a mutation stands even when the disk write fails, trading
// durability of the latest change for availability.
type Service struct {
	dir   string
	store *store.Store

	mu       sync.Mutex
	loadOnce sync.Once
}

// settingsDoc is the small metadata document holding the signal state that
// survives a restart.
type settingsDoc struct {
	ActiveMediaID    *int64 `json:"active_media_id,omitempty"`
	DisplayMode      string `json:"display_mode"`
	BroadcastStopped bool   `json:"broadcast_stopped"`
}

func NewService(dir string, st *store.Store) *Service {
	return &Service{dir: dir, store: st}
}

// LoadOnStartup restores persisted state into the store. It runs at most
// once per process lifetime; concurrent first callers share the same load.
func (s *Service) LoadOnStartup() error {
	var err error
	s.loadOnce.Do(func() {
		err = s.load()
	})
	return err
}

func (s *Service) load() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	var media []types.MediaItem
	if err := s.readDoc(mediaFile, &media); err != nil {
		return err
	}
	var playlists []types.Playlist
	if err := s.readDoc(playlistsFile, &playlists); err != nil {
		return err
	}
	var schedules []types.Schedule
	if err := s.readDoc(schedulesFile, &schedules); err != nil {
		return err
	}
	var settings settingsDoc
	if err := s.readDoc(settingsFile, &settings); err != nil {
		return err
	}

	var maxMedia, maxPlaylist, maxSchedule int64
	for _, item := range media {
		s.store.PutMedia(item)
		if item.ID > maxMedia {
			maxMedia = item.ID
		}
	}
	for _, pl := range playlists {
		s.store.PutPlaylist(pl)
		if pl.ID > maxPlaylist {
			maxPlaylist = pl.ID
		}
	}
	for _, sch := range schedules {
		s.store.PutSchedule(sch)
		if sch.ID > maxSchedule {
			maxSchedule = sch.ID
		}
	}
	s.store.AdvanceIDs(maxMedia, maxPlaylist, maxSchedule)

	s.store.SetActiveMedia(settings.ActiveMediaID)
	s.store.SetBroadcastStopped(settings.BroadcastStopped)
	if settings.DisplayMode != "" {
		s.store.SetDisplayMode(settings.DisplayMode)
	}

	slog.Info("Snapshot loaded",
		slog.Int("media", len(media)),
		slog.Int("playlists", len(playlists)),
		slog.Int("schedules", len(schedules)))

	return nil
}

// readDoc unmarshals one snapshot document. A missing file is an empty
// state, not an error.
func (s *Service) readDoc(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", name, err)
	}
	return nil
}

// Save dumps the full state to disk. Errors are logged, never returned.
func (s *Service) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()

	activeID := s.store.ActiveMediaID()
	settings := settingsDoc{
		ActiveMediaID:    activeID,
		DisplayMode:      s.store.DisplayMode(),
		BroadcastStopped: s.store.BroadcastStopped(),
	}

	s.writeDoc(mediaFile, s.store.ListMedia())
	s.writeDoc(playlistsFile, s.store.ListPlaylists())
	s.writeDoc(schedulesFile, s.store.ListSchedules())
	s.writeDoc(settingsFile, settings)
}

func (s *Service) writeDoc(name string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("Failed to encode snapshot document",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		slog.Error("Failed to write snapshot document",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}
