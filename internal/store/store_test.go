package store

import (
	"testing"
	"time"

	"github.com/signageops/signage-service/internal/types"
)

func TestNextMediaID_NeverReused(t *testing.T) {
	st := New()

	first := st.NextMediaID()
	second := st.NextMediaID()
	if second <= first {
		t.Fatalf("Expected strictly increasing ids, got %d then %d", first, second)
	}

	st.PutMedia(types.MediaItem{ID: second})
	if _, ok := st.DeleteMediaCascade(second); !ok {
		t.Fatal("Expected delete to succeed")
	}

	third := st.NextMediaID()
	if third <= second {
		t.Fatalf("Expected id after delete to keep increasing, got %d after %d", third, second)
	}
}

func TestAdvanceIDs(t *testing.T) {
	st := New()
	st.AdvanceIDs(10, 20, 30)

	if id := st.NextMediaID(); id != 11 {
		t.Fatalf("Expected next media id 11, got %d", id)
	}
	if id := st.NextPlaylistID(); id != 21 {
		t.Fatalf("Expected next playlist id 21, got %d", id)
	}
	if id := st.NextScheduleID(); id != 31 {
		t.Fatalf("Expected next schedule id 31, got %d", id)
	}

	// advancing backwards must not rewind the counters
	st.AdvanceIDs(5, 5, 5)
	if id := st.NextMediaID(); id != 12 {
		t.Fatalf("Expected counter not to rewind, got %d", id)
	}
}

func TestDeleteMediaCascade_StripsPlaylistItems(t *testing.T) {
	st := New()
	st.PutMedia(types.MediaItem{ID: 1})
	st.PutMedia(types.MediaItem{ID: 2})
	st.PutMedia(types.MediaItem{ID: 3})
	st.PutPlaylist(types.Playlist{ID: 1, Items: []types.PlaylistItem{
		{MediaID: 1, Order: 0},
		{MediaID: 2, Order: 1},
		{MediaID: 3, Order: 2},
	}})

	if _, ok := st.DeleteMediaCascade(2); !ok {
		t.Fatal("Expected delete to succeed")
	}

	pl, ok := st.GetPlaylist(1)
	if !ok {
		t.Fatal("Expected playlist to still exist")
	}
	if len(pl.Items) != 2 {
		t.Fatalf("Expected 2 items after cascade, got %d", len(pl.Items))
	}
	// remaining items keep their original order values; contiguity is not
	// restored
	if pl.Items[0].MediaID != 1 || pl.Items[0].Order != 0 {
		t.Fatalf("Unexpected first item: %+v", pl.Items[0])
	}
	if pl.Items[1].MediaID != 3 || pl.Items[1].Order != 2 {
		t.Fatalf("Unexpected second item: %+v", pl.Items[1])
	}
}

func TestDeleteMediaCascade_UnknownID(t *testing.T) {
	st := New()
	if _, ok := st.DeleteMediaCascade(42); ok {
		t.Fatal("Expected delete of unknown id to report false")
	}
}

func TestPutPlaylist_DropsAttachedMedia(t *testing.T) {
	st := New()
	attached := &types.MediaItem{ID: 1}
	st.PutPlaylist(types.Playlist{ID: 1, Items: []types.PlaylistItem{
		{MediaID: 1, Media: attached},
	}})

	pl, _ := st.GetPlaylist(1)
	if pl.Items[0].Media != nil {
		t.Fatal("Expected attached media to be dropped on store")
	}
}

func TestShouldReload_ExactlyOncePerDisplay(t *testing.T) {
	st := New()

	if should, _ := st.ShouldReload("tv-1"); should {
		t.Fatal("Expected no reload before any trigger")
	}

	st.TriggerReload(time.Now())

	if should, _ := st.ShouldReload("tv-1"); !should {
		t.Fatal("Expected first poll after trigger to reload")
	}
	if should, _ := st.ShouldReload("tv-1"); should {
		t.Fatal("Expected second poll from same display not to reload again")
	}
	if should, _ := st.ShouldReload("tv-2"); !should {
		t.Fatal("Expected a different display to still reload for the same event")
	}
}

func TestShouldReload_NewEventReloadsAgain(t *testing.T) {
	st := New()

	st.TriggerReload(time.Now())
	st.ShouldReload("tv-1")

	st.TriggerReload(time.Now().Add(time.Second))
	if should, _ := st.ShouldReload("tv-1"); !should {
		t.Fatal("Expected a new reload event to reach the display again")
	}
}

func TestShouldReload_EmptyDisplayID(t *testing.T) {
	st := New()
	st.TriggerReload(time.Now())

	// anonymous polls see the timestamp but are never tracked
	should, ts := st.ShouldReload("")
	if should {
		t.Fatal("Expected anonymous poll not to consume the reload event")
	}
	if ts == nil {
		t.Fatal("Expected reload timestamp to be reported")
	}
}

func TestPruneDisplays(t *testing.T) {
	st := New()
	now := time.Now()

	st.RecordHeartbeat("fresh", types.DisplayHeartbeat{LastSeen: now})
	st.RecordHeartbeat("stale", types.DisplayHeartbeat{LastSeen: now.Add(-48 * time.Hour)})
	st.TriggerReload(now.Add(-48 * time.Hour))
	st.ShouldReload("stale")
	st.ShouldReload("ack-only")

	removed := st.PruneDisplays(now.Add(-24 * time.Hour))
	if removed != 2 {
		t.Fatalf("Expected 2 entries removed, got %d", removed)
	}

	hb := st.Heartbeats()
	if _, ok := hb["stale"]; ok {
		t.Fatal("Expected stale heartbeat to be pruned")
	}
	if _, ok := hb["fresh"]; !ok {
		t.Fatal("Expected fresh heartbeat to survive")
	}
}
