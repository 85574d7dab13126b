package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/signageops/signage-service/internal/config"
	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

// fakeBlobs records uploads and removals in memory
type fakeBlobs struct {
	objects map[string][]byte
	fail    bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(ctx context.Context, objectName string, data []byte) error {
	if f.fail {
		return errors.New("blob store unavailable")
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeBlobs) Remove(ctx context.Context, objectName string) error {
	delete(f.objects, objectName)
	return nil
}

type nopSnapshots struct{ saves int }

func (n *nopSnapshots) Save() { n.saves++ }

func testConfig() config.Media {
	return config.Media{MaxImageBytes: 1024, MaxVideoBytes: 4096}
}

func setup() (*Service, *store.Store, *fakeBlobs, *nopSnapshots) {
	st := store.New()
	blobs := newFakeBlobs()
	snaps := &nopSnapshots{}
	return NewService(st, blobs, snaps, testConfig()), st, blobs, snaps
}

func TestSaveMedia_AssignsIncreasingIDs(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	first, err := svc.SaveMedia(ctx, []byte("a"), "one.jpg", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := svc.SaveMedia(ctx, []byte("b"), "two.png", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("Expected increasing ids, got %d then %d", first.ID, second.ID)
	}

	if !svc.Delete(ctx, second.ID) {
		t.Fatal("Expected delete to succeed")
	}
	third, err := svc.SaveMedia(ctx, []byte("c"), "three.jpg", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if third.ID <= second.ID {
		t.Fatalf("Expected id never to be reused, got %d after %d", third.ID, second.ID)
	}
}

func TestSaveMedia_RejectsUnknownExtension(t *testing.T) {
	svc, st, _, snaps := setup()

	_, err := svc.SaveMedia(context.Background(), []byte("x"), "malware.exe", "")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType, got %v", err)
	}
	if len(st.ListMedia()) != 0 {
		t.Fatal("Expected rejected upload to create nothing")
	}
	if snaps.saves != 0 {
		t.Fatal("Expected no snapshot for rejected upload")
	}
}

func TestSaveMedia_EnforcesTypeCeilings(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	// image over the image ceiling
	big := make([]byte, 2048)
	if _, err := svc.SaveMedia(ctx, big, "big.jpg", ""); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge for oversized image, got %v", err)
	}

	// the same payload is fine as a video, whose ceiling is higher
	if _, err := svc.SaveMedia(ctx, big, "big.mp4", ""); err != nil {
		t.Fatalf("Expected video under its ceiling to be accepted, got %v", err)
	}

	// pdf shares the video ceiling
	huge := make([]byte, 8192)
	if _, err := svc.SaveMedia(ctx, huge, "huge.pdf", ""); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge for oversized pdf, got %v", err)
	}
}

func TestSaveMedia_ClassifiesByExtension(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	item, err := svc.SaveMedia(ctx, []byte("v"), "clip.MOV", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if item.Type != types.MediaTypeVideo {
		t.Fatalf("Expected video type for .MOV, got %s", item.Type)
	}
	if item.OriginalName != "clip.MOV" {
		t.Fatalf("Expected original name preserved, got %s", item.OriginalName)
	}
}

func TestSaveMedia_StoresBytesUnderGeneratedName(t *testing.T) {
	svc, _, blobs, snaps := setup()

	item, err := svc.SaveMedia(context.Background(), []byte("pixels"), "logo.png", "front lobby")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if item.StoredName == "logo.png" {
		t.Fatal("Expected a generated storage name, not the original")
	}
	if _, ok := blobs.objects[item.StoredName]; !ok {
		t.Fatal("Expected bytes to be written to the blob store")
	}
	if item.Description != "front lobby" {
		t.Fatalf("Expected description recorded, got %q", item.Description)
	}
	if snaps.saves != 1 {
		t.Fatalf("Expected one snapshot save, got %d", snaps.saves)
	}
}

func TestSaveMedia_BlobFailureCreatesNothing(t *testing.T) {
	svc, st, blobs, _ := setup()
	blobs.fail = true

	if _, err := svc.SaveMedia(context.Background(), []byte("x"), "a.jpg", ""); err == nil {
		t.Fatal("Expected error when blob upload fails")
	}
	if len(st.ListMedia()) != 0 {
		t.Fatal("Expected no catalog entry when blob upload fails")
	}
}

func TestDelete_CascadesIntoPlaylists(t *testing.T) {
	svc, st, blobs, _ := setup()
	ctx := context.Background()

	a, _ := svc.SaveMedia(ctx, []byte("a"), "a.jpg", "")
	b, _ := svc.SaveMedia(ctx, []byte("b"), "b.jpg", "")
	st.PutPlaylist(types.Playlist{ID: st.NextPlaylistID(), Items: []types.PlaylistItem{
		{MediaID: a.ID, Order: 0},
		{MediaID: b.ID, Order: 1},
	}})

	if !svc.Delete(ctx, a.ID) {
		t.Fatal("Expected delete to succeed")
	}

	pl, _ := st.GetPlaylist(1)
	if len(pl.Items) != 1 || pl.Items[0].MediaID != b.ID {
		t.Fatalf("Expected cascade to leave only media %d, got %+v", b.ID, pl.Items)
	}
	if _, ok := blobs.objects[a.StoredName]; ok {
		t.Fatal("Expected blob to be removed on delete")
	}
}

func TestDelete_UnknownID(t *testing.T) {
	svc, _, _, snaps := setup()
	if svc.Delete(context.Background(), 99) {
		t.Fatal("Expected delete of unknown id to report false")
	}
	if snaps.saves != 0 {
		t.Fatal("Expected no snapshot for failed delete")
	}
}
