// Package resources advances sapling growth and reconciles stale gather
// attachments each tick. See design doc §4.6.
package resources

import "github.com/talgya/mini-world/internal/worldstate"

// Tick transforms any sapling whose growth timer has elapsed into a mature
// tree, and cancels gather attachments whose target became unavailable or
// whose actor status no longer matches gathering (§4.6).
func Tick(w *worldstate.World, tick uint64) {
	growSaplings(w, tick)
	reconcileGatherAttachments(w)
}

func growSaplings(w *worldstate.World, tick uint64) {
	for _, id := range w.SortedResourceIDs() {
		r := w.Resources[id]
		if r.State != worldstate.ResourceGrowing || r.Type != worldstate.ResourceSapling {
			continue
		}
		if tick < r.GrowthCompleteTick {
			continue
		}
		r.Type = worldstate.ResourceTree
		r.Remaining = r.MaxCapacity
		r.State = worldstate.ResourceAvailable
		r.GrowthStartTick = 0
		r.GrowthCompleteTick = 0
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "tree_grown",
			Data: map[string]any{"resourceId": r.ID, "position": r.Position},
			EntityIDs: []string{r.ID},
		})
	}
}

func reconcileGatherAttachments(w *worldstate.World) {
	for _, id := range w.SortedActorIDs() {
		actor := w.Actors[id]
		if actor.Status != worldstate.StatusGathering || actor.GatherTargetID == "" {
			continue
		}
		res, ok := w.Resources[actor.GatherTargetID]
		if !ok || res.State != worldstate.ResourceBeingGathered || res.GatheredByID != actor.ID {
			actor.Status = worldstate.StatusIdle
			actor.GatherTargetID = ""
			continue
		}
	}
}
