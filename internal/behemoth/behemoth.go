// Package behemoth drives the large-creature lifecycle: roaming along a
// fixed route, feed accumulation toward ore growth, combat knockout into the
// unconscious/climbing window, and waking with a throw-off of any remaining climbers. See
// design doc §4.9.
package behemoth

import (
	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/worldstate"
)

// ThrowOff describes one climber thrown from a waking behemoth, handed to
// the executor's throw-off damage application.
type ThrowOff struct {
	BehemothID string
	ClimberIDs []string
}

// Tick advances every behemoth's lifecycle by one step. Returns the set of
// throw-offs produced by any behemoth waking this tick, for the caller to
// feed into executor.ApplyThrowOffs alongside the combat death hook.
func Tick(w *worldstate.World, tick uint64) []ThrowOff {
	var throwOffs []ThrowOff
	for _, id := range w.SortedBehemothIDs() {
		b := w.Behemoths[id]
		switch b.Status {
		case worldstate.BehemothRoaming:
			tickRoam(w, b, tick)
		case worldstate.BehemothUnconscious:
			if to := tickUnconscious(w, b, tick); to != nil {
				throwOffs = append(throwOffs, *to)
			}
		}
		tickOreGrowth(w, b, tick)
	}
	return throwOffs
}

// tickRoam advances a behemoth one step along its fixed route at
// BehemothSpeed, looping back to the first waypoint on completion. Combat
// damage (from fighters and monsters; merchants can never attack) reducing
// health to 0 knocks the behemoth unconscious here, not via feeding —
// feeding only governs the ore-growth timer (§4.9).
func tickRoam(w *worldstate.World, b *worldstate.Behemoth, tick uint64) {
	if b.Health <= 0 {
		b.Status = worldstate.BehemothUnconscious
		b.UnconsciousUntilTick = tick + worldstate.BehemothUnconsciousTicks
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "behemoth_knockout",
			Data: map[string]any{"behemothId": b.ID, "wakeAtTick": b.UnconsciousUntilTick},
			EntityIDs: []string{b.ID},
		})
		return
	}
	if len(b.Route) == 0 {
		return
	}
	target := b.Route[b.CurrentWaypoint]
	dist := spatial.Distance(b.Position, target)
	if dist <= worldstate.BehemothSpeed {
		w.MoveBehemoth(b, target)
		b.CurrentWaypoint = (b.CurrentWaypoint + 1) % len(b.Route)
		return
	}
	dx := target.X - b.Position.X
	dy := target.Y - b.Position.Y
	step := worldstate.BehemothSpeed / dist
	w.MoveBehemoth(b, worldstate.Position{
		X: b.Position.X + dx*step,
		Y: b.Position.Y + dy*step,
	})
}

// tickUnconscious counts down the knockout window and resolves the wake in
// the same tick the window expires: every remaining climber is thrown off,
// the behemoth's feed counter resets, and it resumes roaming (§8 Concrete
// Scenario 3 — the wake is a single-tick event, not a two-tick handoff).
func tickUnconscious(w *worldstate.World, b *worldstate.Behemoth, tick uint64) *ThrowOff {
	if tick < b.UnconsciousUntilTick {
		return nil
	}
	return resolveWake(w, b, tick)
}

// resolveWake performs the waking transition described above.
func resolveWake(w *worldstate.World, b *worldstate.Behemoth, tick uint64) *ThrowOff {
	var climbers []string
	for actorID := range b.Climbers {
		climbers = append(climbers, actorID)
	}
	for _, actorID := range climbers {
		if actor, ok := w.Actors[actorID]; ok {
			actor.Status = worldstate.StatusIdle
			actor.ClimbingBehemothID = ""
		}
	}
	b.Climbers = make(map[string]struct{})
	b.FedAmount = 0
	b.Health = b.MaxHealth
	b.OreAmount = 0
	b.UnconsciousUntilTick = 0
	b.Status = worldstate.BehemothRoaming

	w.EmitEvent(worldstate.Event{
		Tick: tick, Type: "behemoth_wake",
		Data: map[string]any{"behemothId": b.ID, "climbersThrown": climbers},
		EntityIDs: append([]string{b.ID}, climbers...),
	})

	if len(climbers) == 0 {
		return nil
	}
	return &ThrowOff{BehemothID: b.ID, ClimberIDs: climbers}
}

// tickOreGrowth completes the ore-growth timer armed by Feed: once tick
// reaches OreGrowthCompleteTick, OreAmount is set to 5 + (FedAmount/10)*5,
// capped at OreMax, and the timer is cleared (§9 open question: yield uses
// FedAmount at growth-complete time, not at threshold-reach time).
func tickOreGrowth(w *worldstate.World, b *worldstate.Behemoth, tick uint64) {
	if b.OreGrowthCompleteTick == 0 {
		return
	}
	if tick < b.OreGrowthCompleteTick {
		return
	}
	yield := 5 + (b.FedAmount/10)*5
	if yield > b.OreMax {
		yield = b.OreMax
	}
	b.OreAmount = yield
	b.OreGrowthCompleteTick = 0
	w.EmitEvent(worldstate.Event{
		Tick: tick, Type: "behemoth_ore_ready",
		Data: map[string]any{"behemothId": b.ID, "oreAmount": b.OreAmount},
		EntityIDs: []string{b.ID},
	})
}

// Feed implements executor.FeedBehemothFn: consumes one food item from the
// feeder's inventory and credits the behemoth's fed counter. On first
// reaching the feed threshold, arms the ore-growth timer; feeding beyond
// threshold does not re-arm it (§4.9). Feeding never knocks a behemoth
// unconscious on its own — only combat damage reducing health to 0 does.
func Feed(w *worldstate.World, actorID, behemothID, itemID string, tick uint64) {
	actor, ok := w.Actors[actorID]
	if !ok {
		return
	}
	b, ok := w.Behemoths[behemothID]
	if !ok {
		return
	}
	if !worldstate.InventoryRemove(actor, itemID, 1) {
		return
	}
	alreadyArmed := b.FedAmount >= worldstate.BehemothFeedThreshold
	b.FedAmount++
	actor.Status = worldstate.StatusIdle

	w.EmitEvent(worldstate.Event{
		Tick: tick, Type: "behemoth_fed",
		Data: map[string]any{"behemothId": behemothID, "actorId": actorID, "fedAmount": b.FedAmount},
		EntityIDs: []string{behemothID, actorID},
	})

	if !alreadyArmed && b.FedAmount >= worldstate.BehemothFeedThreshold {
		b.OreGrowthCompleteTick = tick + worldstate.BehemothOreGrowthTicks
	}
}

// Climb implements executor.ClimbBehemothFn: attaches the actor as a
// climber of an unconscious behemoth.
func Climb(w *worldstate.World, actorID, behemothID string) {
	actor, ok := w.Actors[actorID]
	if !ok {
		return
	}
	b, ok := w.Behemoths[behemothID]
	if !ok || b.Status != worldstate.BehemothUnconscious {
		return
	}
	if b.Climbers == nil {
		b.Climbers = make(map[string]struct{})
	}
	b.Climbers[actorID] = struct{}{}
	actor.Status = worldstate.StatusClimbing
	actor.ClimbingBehemothID = behemothID
}
