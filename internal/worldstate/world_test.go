package worldstate

import "testing"

func TestInventoryAddRemoveCount(t *testing.T) {
	a := NewActor("a1", "Alice", RoleMerchant)

	InventoryAdd(a, "wood", 3)
	InventoryAdd(a, "wood", 2)
	if got := InventoryCount(a, "wood"); got != 5 {
		t.Fatalf("InventoryCount(wood) = %d, want 5", got)
	}

	InventoryAdd(a, "gold_ore", 1)
	if len(a.Inventory) != 2 {
		t.Fatalf("len(Inventory) = %d, want 2", len(a.Inventory))
	}

	if ok := InventoryRemove(a, "wood", 10); ok {
		t.Fatalf("InventoryRemove(wood, 10) = true, want false (insufficient)")
	}
	if ok := InventoryRemove(a, "wood", 5); !ok {
		t.Fatalf("InventoryRemove(wood, 5) = false, want true")
	}
	if got := InventoryCount(a, "wood"); got != 0 {
		t.Fatalf("InventoryCount(wood) after full removal = %d, want 0", got)
	}
	if len(a.Inventory) != 1 {
		t.Fatalf("len(Inventory) after wood fully removed = %d, want 1 (gold_ore remains)", len(a.Inventory))
	}
}

func TestInventoryRemoveZeroQuantityOnMissingItem(t *testing.T) {
	a := NewActor("a1", "Alice", RoleMerchant)
	if ok := InventoryRemove(a, "nonexistent", 0); !ok {
		t.Fatalf("removing zero of an absent item should succeed trivially")
	}
}

func TestCombatPairDedup(t *testing.T) {
	w := New(1)
	w.AddCombatPair(&CombatPair{AttackerID: "x", TargetID: "y", Active: true})

	if p := w.FindCombatPair("x", "y"); p == nil {
		t.Fatalf("expected to find existing active pair (x, y)")
	}
	if p := w.FindCombatPair("y", "x"); p != nil {
		t.Fatalf("pair lookup must be direction-sensitive: (y, x) should not match (x, y)")
	}

	w.CombatPairs[0].Active = false
	if p := w.FindCombatPair("x", "y"); p != nil {
		t.Fatalf("deactivated pair must not be returned by FindCombatPair")
	}
}

func TestCompactCombatPairsPreservesOrder(t *testing.T) {
	w := New(1)
	w.AddCombatPair(&CombatPair{AttackerID: "a", TargetID: "1", Active: true})
	w.AddCombatPair(&CombatPair{AttackerID: "b", TargetID: "2", Active: false})
	w.AddCombatPair(&CombatPair{AttackerID: "c", TargetID: "3", Active: true})

	w.CompactCombatPairs()

	if len(w.CombatPairs) != 2 {
		t.Fatalf("len(CombatPairs) after compaction = %d, want 2", len(w.CombatPairs))
	}
	if w.CombatPairs[0].AttackerID != "a" || w.CombatPairs[1].AttackerID != "c" {
		t.Fatalf("compaction must preserve attachment order, got %q then %q",
			w.CombatPairs[0].AttackerID, w.CombatPairs[1].AttackerID)
	}
}

func TestSortedActorIDsDeterministic(t *testing.T) {
	w := New(1)
	w.AddActor(NewActor("zeta", "Zeta", RoleFighter))
	w.AddActor(NewActor("alpha", "Alpha", RoleMerchant))
	w.AddActor(NewActor("mid", "Mid", RoleMonster))

	got := w.SortedActorIDs()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("len(SortedActorIDs()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedActorIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddActorIndexesPosition(t *testing.T) {
	w := New(1)
	a := NewActor("a1", "Alice", RoleFighter)
	w.AddActor(a)

	pos, ok := w.Index.Position("a1")
	if !ok {
		t.Fatalf("expected actor to be indexed after AddActor")
	}
	if pos != a.Position {
		t.Fatalf("indexed position = %+v, want %+v", pos, a.Position)
	}

	w.MoveActor(a, Position{X: a.Position.X + 50, Y: a.Position.Y})
	pos, _ = w.Index.Position("a1")
	if pos != a.Position {
		t.Fatalf("index not updated after MoveActor: indexed %+v, actor at %+v", pos, a.Position)
	}
}
