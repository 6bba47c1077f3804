// Package validator rule-checks a proposed action against world state
// without mutating it. Rejection reason strings are part of the external
// wire contract (§6, §7) and must match verbatim. See design doc §4.3.
package validator

import (
	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/worldstate"
)

// Verdict is the outcome of validating one action.
type Verdict struct {
	Approved bool
	Reason   string // only set when !Approved
}

func approved() Verdict       { return Verdict{Approved: true} }
func rejected(reason string) Verdict { return Verdict{Approved: false, Reason: reason} }

// Validate checks a single action against current world state. It performs
// no mutation — Validate may be called concurrently with itself (but never
// with a mutating tick phase) since it only reads.
func Validate(w *worldstate.World, a actionqueue.Action, tick uint64) Verdict {
	actor, ok := w.Actors[a.ActorID]
	if !ok {
		return rejected("Agent not found")
	}
	if !actor.IsAlive || actor.Status == worldstate.StatusDead {
		return rejected("Agent is dead")
	}
	if tick < actor.ActionCooldownUntilTick {
		return rejected("On cooldown")
	}

	switch a.Kind {
	case actionqueue.ActionMove:
		return validateMove(a)
	case actionqueue.ActionGather:
		return validateGather(w, actor, a)
	case actionqueue.ActionAttack:
		return validateAttack(w, actor, a)
	case actionqueue.ActionCraft:
		return validateCraft(actor)
	case actionqueue.ActionTalk:
		return validateTalk(w, a)
	case actionqueue.ActionTrade:
		return validateTrade(w, actor, a)
	case actionqueue.ActionPlant:
		return validatePlantSeed(actor, a)
	case actionqueue.ActionWater:
		return validateWater(w, actor, a)
	case actionqueue.ActionFeed:
		return validateFeed(w, actor, a)
	case actionqueue.ActionClimb:
		return validateClimb(w, actor, a)
	case actionqueue.ActionFormAlliance:
		return validateFormAlliance(w, actor, a)
	case actionqueue.ActionJoinAlliance:
		return validateJoinAlliance(w, actor, a)
	case actionqueue.ActionLeaveAlliance:
		return validateLeaveAlliance(actor)
	case actionqueue.ActionInspect, actionqueue.ActionIdle:
		return approved()
	default:
		return approved()
	}
}

func validateMove(a actionqueue.Action) Verdict {
	if a.X < 0 || a.X >= worldstate.Width || a.Y < 0 || a.Y >= worldstate.Height {
		return rejected("Destination out of bounds")
	}
	return approved()
}

func validateGather(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	res, ok := w.Resources[a.TargetID]
	if !ok {
		return rejected("Resource not found")
	}
	if spatial.Distance(actor.Position, res.Position) > worldstate.GatherRange {
		return rejected("Too far")
	}
	if res.State != worldstate.ResourceAvailable {
		return rejected("Resource unavailable")
	}
	switch actor.Role {
	case worldstate.RoleMonster:
		return rejected("Monsters cannot gather")
	case worldstate.RoleFighter:
		if res.Type != worldstate.ResourceGoldVein {
			return rejected("Fighters can only mine gold")
		}
	case worldstate.RoleMerchant:
		if res.Type == worldstate.ResourceGoldVein {
			return rejected("Merchants cannot mine gold")
		}
	}
	return approved()
}

// targetPosition resolves the position of any attackable/interactable
// entity kind (actor, NPC, or behemoth) by id.
func targetPosition(w *worldstate.World, id string) (worldstate.Position, bool) {
	if a, ok := w.Actors[id]; ok {
		return a.Position, true
	}
	if n, ok := w.NPCs[id]; ok {
		return n.Position, true
	}
	if b, ok := w.Behemoths[id]; ok {
		return b.Position, true
	}
	return worldstate.Position{}, false
}

func validateAttack(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if a.TargetID == actor.ID {
		return rejected("Cannot attack yourself")
	}
	pos, ok := targetPosition(w, a.TargetID)
	if !ok {
		return rejected("Target not found")
	}
	if spatial.Distance(actor.Position, pos) > worldstate.AttackRange {
		return rejected("Too far")
	}

	switch actor.Role {
	case worldstate.RoleMerchant:
		return rejected("Merchants cannot attack")
	case worldstate.RoleFighter:
		if target, ok := w.Actors[a.TargetID]; ok {
			if target.Role == worldstate.RoleFighter {
				return rejected("Fighters cannot attack other fighters")
			}
			if target.Role == worldstate.RoleMerchant {
				return rejected("Fighters cannot attack merchants")
			}
		}
	case worldstate.RoleMonster:
		// Monsters may target any non-monster: behemoth, NPC, fighter,
		// merchant. No additional restriction.
	}
	return approved()
}

func validateCraft(actor *worldstate.Actor) Verdict {
	if actor.Role != worldstate.RoleMerchant {
		return rejected("Only merchants can craft")
	}
	return approved()
}

func validateTalk(w *worldstate.World, a actionqueue.Action) Verdict {
	if a.Content == "" {
		return rejected("Message cannot be empty")
	}
	if a.Mode == worldstate.ChatWhisper.String() {
		if _, ok := w.Actors[a.TargetID]; !ok {
			return rejected("Whisper target not found")
		}
	}
	return approved()
}

func validateTrade(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if a.TargetID == actor.ID {
		return rejected("Cannot trade with yourself")
	}
	target, ok := w.Actors[a.TargetID]
	if !ok {
		return rejected("Target not found")
	}
	if spatial.Distance(actor.Position, target.Position) > worldstate.TradeRange {
		return rejected("Too far")
	}
	if a.OfferGold > actor.Gold {
		return rejected("Insufficient items for trade offer")
	}
	for itemID, qty := range a.OfferItems {
		if worldstate.InventoryCount(actor, itemID) < qty {
			return rejected("Insufficient items for trade offer")
		}
	}
	return approved()
}

func validatePlant(actor *worldstate.Actor) Verdict {
	if actor.Role != worldstate.RoleMerchant {
		return rejected("Only merchants can plant")
	}
	return approved()
}

func validatePlantSeed(actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if v := validatePlant(actor); !v.Approved {
		return v
	}
	if worldstate.InventoryCount(actor, a.SeedID) < 1 {
		return rejected("No seed in inventory")
	}
	return approved()
}

func validateWater(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if actor.Role != worldstate.RoleMerchant {
		return rejected("Only merchants can water")
	}
	for _, id := range w.SortedResourceIDs() {
		r := w.Resources[id]
		if r.Type == worldstate.ResourceSapling && r.Position.X == a.X && r.Position.Y == a.Y {
			return approved()
		}
	}
	return rejected("No sapling at position")
}

func validateFeed(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	b, ok := w.Behemoths[a.TargetID]
	if !ok {
		return rejected("Target not found")
	}
	if spatial.Distance(actor.Position, b.Position) > worldstate.TradeRange {
		return rejected("Too far")
	}
	if worldstate.InventoryCount(actor, a.ItemID) < 1 {
		return rejected("No food item in inventory")
	}
	return approved()
}

func validateClimb(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if actor.Role != worldstate.RoleMerchant {
		return rejected("Only merchants can climb behemoths")
	}
	b, ok := w.Behemoths[a.TargetID]
	if !ok {
		return rejected("Target not found")
	}
	if b.Status != worldstate.BehemothUnconscious {
		return rejected("Behemoth is not unconscious")
	}
	if spatial.Distance(actor.Position, b.Position) > worldstate.ClimbRange {
		return rejected("Too far")
	}
	return approved()
}

func validateFormAlliance(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if actor.Alliance != "" {
		return rejected("Already in an alliance")
	}
	if _, taken := w.Alliances[a.Name]; taken {
		return rejected("Alliance name already taken")
	}
	return approved()
}

func validateJoinAlliance(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) Verdict {
	if _, ok := w.Alliances[a.Name]; !ok {
		return rejected("Alliance not found")
	}
	if actor.Alliance != "" {
		return rejected("Already in an alliance")
	}
	return approved()
}

func validateLeaveAlliance(actor *worldstate.Actor) Verdict {
	if actor.Alliance == "" {
		return rejected("Not in an alliance")
	}
	return approved()
}
