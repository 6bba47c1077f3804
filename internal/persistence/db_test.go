package persistence_test

import (
	"path/filepath"
	"testing"

	"github.com/talgya/mini-world/internal/persistence"
	"github.com/talgya/mini-world/internal/worldstate"
)

func openTestDB(t *testing.T) *persistence.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldsim_test.db")
	db, err := persistence.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Round-trip law: snapshotting a world and loading it back under the same
// seed reproduces every actor's position, stats, and gold exactly.
func TestSnapshotAndLoadRoundTripsActors(t *testing.T) {
	db := openTestDB(t)

	w := worldstate.New(99)
	fighter := worldstate.NewActor("f1", "Fighter", worldstate.RoleFighter)
	fighter.Position = worldstate.Position{X: 123.5, Y: 67.25}
	fighter.Gold = 42
	worldstate.InventoryAdd(fighter, "log", 3)
	w.AddActor(fighter)

	if err := db.SnapshotWorld(w, 10); err != nil {
		t.Fatalf("SnapshotWorld: %v", err)
	}

	loaded, tick, found, err := db.LoadWorldSnapshot(99)
	if err != nil {
		t.Fatalf("LoadWorldSnapshot: %v", err)
	}
	if !found {
		t.Fatal("expected a snapshot to be found")
	}
	if tick != 10 {
		t.Fatalf("tick = %d, want 10", tick)
	}

	restored, ok := loaded.Actors["f1"]
	if !ok {
		t.Fatal("restored world missing actor f1")
	}
	if restored.Position != fighter.Position {
		t.Fatalf("Position = %+v, want %+v", restored.Position, fighter.Position)
	}
	if restored.Gold != 42 {
		t.Fatalf("Gold = %d, want 42", restored.Gold)
	}
	if len(restored.Inventory) != 1 || restored.Inventory[0].ItemID != "log" || restored.Inventory[0].Quantity != 3 {
		t.Fatalf("Inventory = %+v, want [log x3]", restored.Inventory)
	}
}

func TestLoadWorldSnapshotReportsNotFoundForUnknownSeed(t *testing.T) {
	db := openTestDB(t)

	_, _, found, err := db.LoadWorldSnapshot(12345)
	if err != nil {
		t.Fatalf("LoadWorldSnapshot: %v", err)
	}
	if found {
		t.Fatal("expected found=false when nothing has ever been snapshotted")
	}
}

func TestSnapshotWorldRoundTripsResourceState(t *testing.T) {
	db := openTestDB(t)

	w := worldstate.New(7)
	w.AddResource(&worldstate.Resource{
		ID: "vein1", Type: worldstate.ResourceGoldVein, Position: worldstate.Position{X: 1, Y: 2},
		Remaining: 50, MaxCapacity: 100, State: worldstate.ResourceBeingGathered,
	})

	if err := db.SnapshotWorld(w, 3); err != nil {
		t.Fatalf("SnapshotWorld: %v", err)
	}

	loaded, _, found, err := db.LoadWorldSnapshot(7)
	if err != nil {
		t.Fatalf("LoadWorldSnapshot: %v", err)
	}
	if !found {
		t.Fatal("expected a snapshot to be found")
	}
	r, ok := loaded.Resources["vein1"]
	if !ok {
		t.Fatal("restored world missing resource vein1")
	}
	if r.Remaining != 50 || r.MaxCapacity != 100 {
		t.Fatalf("Remaining/MaxCapacity = %d/%d, want 50/100", r.Remaining, r.MaxCapacity)
	}
}
