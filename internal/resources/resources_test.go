package resources_test

import (
	"testing"

	"github.com/talgya/mini-world/internal/resources"
	"github.com/talgya/mini-world/internal/worldstate"
)

func TestTickGrowsSaplingOnceTimerElapses(t *testing.T) {
	w := worldstate.New(1)
	w.AddResource(&worldstate.Resource{
		ID: "sap1", Type: worldstate.ResourceSapling, State: worldstate.ResourceGrowing,
		GrowthStartTick: 10, GrowthCompleteTick: 20,
	})

	resources.Tick(w, 19)
	if r := w.Resources["sap1"]; r.Type != worldstate.ResourceSapling || r.State != worldstate.ResourceGrowing {
		t.Fatalf("sapling matured early at tick 19: %+v", r)
	}

	resources.Tick(w, 20)
	r := w.Resources["sap1"]
	if r.Type != worldstate.ResourceTree {
		t.Fatalf("Type = %v, want ResourceTree once growth timer elapses", r.Type)
	}
	if r.State != worldstate.ResourceAvailable {
		t.Fatalf("State = %v, want ResourceAvailable", r.State)
	}
	if r.Remaining != r.MaxCapacity {
		t.Fatalf("Remaining = %d, want MaxCapacity %d", r.Remaining, r.MaxCapacity)
	}
	if r.GrowthStartTick != 0 || r.GrowthCompleteTick != 0 {
		t.Fatalf("growth timers not cleared after maturing: start=%d complete=%d", r.GrowthStartTick, r.GrowthCompleteTick)
	}

	found := false
	for _, e := range w.TickEvents {
		if e.Type == "tree_grown" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a tree_grown event to be emitted")
	}
}

func TestTickLeavesNonSaplingGrowingResourcesAlone(t *testing.T) {
	w := worldstate.New(1)
	w.AddResource(&worldstate.Resource{
		ID: "vein1", Type: worldstate.ResourceGoldVein, State: worldstate.ResourceBeingGathered,
	})

	resources.Tick(w, 100)

	r := w.Resources["vein1"]
	if r.Type != worldstate.ResourceGoldVein || r.State != worldstate.ResourceBeingGathered {
		t.Fatalf("non-sapling resource mutated by Tick: %+v", r)
	}
}

func TestTickReconcilesStaleGatherAttachment(t *testing.T) {
	w := worldstate.New(1)
	actor := worldstate.NewActor("gatherer1", "Gatherer", worldstate.RoleFighter)
	actor.Status = worldstate.StatusGathering
	actor.GatherTargetID = "vein1"
	w.AddActor(actor)
	// The resource itself vanished (e.g. depleted and removed) leaving a
	// dangling attachment.

	resources.Tick(w, 1)

	if actor.Status != worldstate.StatusIdle {
		t.Fatalf("Status = %v, want StatusIdle after reconciling a dangling gather attachment", actor.Status)
	}
	if actor.GatherTargetID != "" {
		t.Fatalf("GatherTargetID = %q, want cleared", actor.GatherTargetID)
	}
}

func TestTickReconcilesAttachmentWhenResourceReassigned(t *testing.T) {
	w := worldstate.New(1)
	actor := worldstate.NewActor("gatherer2", "Gatherer", worldstate.RoleFighter)
	actor.Status = worldstate.StatusGathering
	actor.GatherTargetID = "vein1"
	w.AddActor(actor)
	w.AddResource(&worldstate.Resource{
		ID: "vein1", Type: worldstate.ResourceGoldVein, State: worldstate.ResourceBeingGathered,
		GatheredByID: "someone-else",
	})

	resources.Tick(w, 1)

	if actor.Status != worldstate.StatusIdle {
		t.Fatalf("Status = %v, want StatusIdle when the resource is attached to a different actor", actor.Status)
	}
}

func TestTickKeepsLiveGatherAttachmentIntact(t *testing.T) {
	w := worldstate.New(1)
	actor := worldstate.NewActor("gatherer3", "Gatherer", worldstate.RoleFighter)
	actor.Status = worldstate.StatusGathering
	actor.GatherTargetID = "vein1"
	w.AddActor(actor)
	w.AddResource(&worldstate.Resource{
		ID: "vein1", Type: worldstate.ResourceGoldVein, State: worldstate.ResourceBeingGathered,
		GatheredByID: "gatherer3",
	})

	resources.Tick(w, 1)

	if actor.Status != worldstate.StatusGathering || actor.GatherTargetID != "vein1" {
		t.Fatalf("a live gather attachment was reconciled away: status=%v target=%q", actor.Status, actor.GatherTargetID)
	}
}
