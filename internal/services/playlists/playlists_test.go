package playlists

import (
	"testing"

	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

type nopSnapshots struct{ saves int }

func (n *nopSnapshots) Save() { n.saves++ }

func setup() (*Service, *store.Store, *nopSnapshots) {
	st := store.New()
	snaps := &nopSnapshots{}
	return NewService(st, snaps), st, snaps
}

func TestCreate_DefaultsDurationAndOrder(t *testing.T) {
	svc, _, snaps := setup()

	pl := svc.Create(types.PlaylistRequest{
		Name: "Lobby loop",
		Items: []types.PlaylistItemRequest{
			{MediaID: 1},
			{MediaID: 2, DurationSeconds: 30},
		},
	})

	if pl.Items[0].DurationSeconds != 10 {
		t.Fatalf("Expected default duration 10, got %d", pl.Items[0].DurationSeconds)
	}
	if pl.Items[1].DurationSeconds != 30 {
		t.Fatalf("Expected explicit duration kept, got %d", pl.Items[1].DurationSeconds)
	}
	if pl.Items[0].Order != 0 || pl.Items[1].Order != 1 {
		t.Fatalf("Expected dense zero-based order, got %d and %d", pl.Items[0].Order, pl.Items[1].Order)
	}
	if snaps.saves != 1 {
		t.Fatalf("Expected one snapshot save, got %d", snaps.saves)
	}
}

func TestCreate_KeepsExplicitOrder(t *testing.T) {
	svc, _, _ := setup()

	pl := svc.Create(types.PlaylistRequest{
		Name: "Explicit",
		Items: []types.PlaylistItemRequest{
			{MediaID: 1, Order: 4},
			{MediaID: 2, Order: 2},
		},
	})

	if pl.Items[0].Order != 4 || pl.Items[1].Order != 2 {
		t.Fatalf("Expected explicit orders preserved, got %d and %d", pl.Items[0].Order, pl.Items[1].Order)
	}
}

func TestCreate_RenumbersCollidingOrders(t *testing.T) {
	svc, _, _ := setup()

	// partially explicit payload: two items share order 0
	pl := svc.Create(types.PlaylistRequest{
		Name: "Mixed",
		Items: []types.PlaylistItemRequest{
			{MediaID: 1, Order: 0},
			{MediaID: 2, Order: 0},
			{MediaID: 3, Order: 2},
		},
	})

	for i, item := range pl.Items {
		if item.Order != i {
			t.Fatalf("Expected dense renumbering on colliding orders, got %+v", pl.Items)
		}
	}
	if pl.Items[0].MediaID != 1 || pl.Items[1].MediaID != 2 || pl.Items[2].MediaID != 3 {
		t.Fatalf("Expected renumbering to keep the given item order, got %+v", pl.Items)
	}
}

func TestGet_AttachesLiveMedia(t *testing.T) {
	svc, st, _ := setup()
	st.PutMedia(types.MediaItem{ID: 1, OriginalName: "a.jpg", Type: types.MediaTypeImage})

	created := svc.Create(types.PlaylistRequest{
		Name: "With media",
		Items: []types.PlaylistItemRequest{
			{MediaID: 1},
			{MediaID: 99},
		},
	})

	pl, ok := svc.Get(created.ID)
	if !ok {
		t.Fatal("Expected playlist to exist")
	}
	if pl.Items[0].Media == nil || pl.Items[0].Media.OriginalName != "a.jpg" {
		t.Fatalf("Expected live media attached, got %+v", pl.Items[0].Media)
	}
	// dangling reference: no attachment, but the item itself remains
	if pl.Items[1].Media != nil {
		t.Fatal("Expected no attachment for unknown media id")
	}

	// attachment is not persisted
	raw, _ := st.GetPlaylist(created.ID)
	if raw.Items[0].Media != nil {
		t.Fatal("Expected stored items to carry only media ids")
	}
}

func TestUpdate_ReplacesItems(t *testing.T) {
	svc, _, _ := setup()

	created := svc.Create(types.PlaylistRequest{
		Name:  "Before",
		Items: []types.PlaylistItemRequest{{MediaID: 1}},
	})

	updated, ok := svc.Update(created.ID, types.PlaylistRequest{
		Name:        "After",
		Description: "changed",
		Items: []types.PlaylistItemRequest{
			{MediaID: 2},
			{MediaID: 3},
		},
	})
	if !ok {
		t.Fatal("Expected update to succeed")
	}
	if updated.Name != "After" || len(updated.Items) != 2 {
		t.Fatalf("Unexpected playlist after update: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatal("Expected UpdatedAt to advance")
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, _, _ := setup()
	if _, ok := svc.Update(42, types.PlaylistRequest{Name: "x"}); ok {
		t.Fatal("Expected update of unknown id to report false")
	}
}

func TestDelete(t *testing.T) {
	svc, _, snaps := setup()

	created := svc.Create(types.PlaylistRequest{Name: "Doomed"})
	if !svc.Delete(created.ID) {
		t.Fatal("Expected delete to succeed")
	}
	if _, ok := svc.Get(created.ID); ok {
		t.Fatal("Expected playlist to be gone")
	}
	if svc.Delete(created.ID) {
		t.Fatal("Expected second delete to report false")
	}
	if snaps.saves != 2 {
		t.Fatalf("Expected snapshots for create and delete only, got %d", snaps.saves)
	}
}
