package spatial

import "testing"

func TestInRadiusFindsNearbyAcrossCellBoundaries(t *testing.T) {
	idx := New()
	idx.Add("near", Point{X: 10, Y: 10})
	idx.Add("far", Point{X: 500, Y: 500})
	// Placed just across a cell boundary from "near" (CellSize = 32).
	idx.Add("adjacent-cell", Point{X: 40, Y: 10})

	got := idx.InRadius(Point{X: 10, Y: 10}, 35)

	found := make(map[string]bool)
	for _, id := range got {
		found[id] = true
	}
	if !found["near"] {
		t.Fatalf("expected 'near' within radius 35 of its own position")
	}
	if !found["adjacent-cell"] {
		t.Fatalf("expected 'adjacent-cell' (distance 30, across a cell boundary) within radius 35")
	}
	if found["far"] {
		t.Fatalf("'far' should not be within radius 35")
	}
}

func TestMoveUpdatesPositionAndCell(t *testing.T) {
	idx := New()
	idx.Add("e1", Point{X: 0, Y: 0})

	idx.Move("e1", Point{X: 0, Y: 0}, Point{X: 1000, Y: 1000})

	pos, ok := idx.Position("e1")
	if !ok {
		t.Fatalf("expected e1 still tracked after Move")
	}
	if pos != (Point{X: 1000, Y: 1000}) {
		t.Fatalf("Position(e1) = %+v, want {1000 1000}", pos)
	}

	nearOld := idx.InRadius(Point{X: 0, Y: 0}, 5)
	for _, id := range nearOld {
		if id == "e1" {
			t.Fatalf("e1 should no longer be found near its old position after Move")
		}
	}
}

func TestRemoveDropsEntity(t *testing.T) {
	idx := New()
	idx.Add("e1", Point{X: 5, Y: 5})
	idx.Remove("e1", Point{X: 5, Y: 5})

	if _, ok := idx.Position("e1"); ok {
		t.Fatalf("expected e1 untracked after Remove")
	}
	if got := idx.InRadius(Point{X: 5, Y: 5}, 10); len(got) != 0 {
		t.Fatalf("InRadius after Remove = %v, want empty", got)
	}
}

func TestInRadiusNegativeRadius(t *testing.T) {
	idx := New()
	idx.Add("e1", Point{X: 0, Y: 0})
	if got := idx.InRadius(Point{X: 0, Y: 0}, -1); got != nil {
		t.Fatalf("InRadius with negative radius = %v, want nil", got)
	}
}

func TestDistance(t *testing.T) {
	d := Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if d != 5 {
		t.Fatalf("Distance((0,0),(3,4)) = %v, want 5", d)
	}
}
