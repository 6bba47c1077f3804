// Package combat resolves per-tick damage over active combat pairs and
// implements the shared death protocol invoked both by combat resolution
// and by behemoth throw-offs. See design doc §4.5, §4.7.
package combat

import (
	"math"

	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/worldstate"
)

// Hooks lets the combat/death protocol reach into the monster-evolution
// system without combat importing monsters (monsters imports combat's
// death helpers instead — kept one-directional).
type Hooks struct {
	// OnMonsterKill fires whenever a role=monster actor kills anything,
	// after combat has already incremented the killer's Kills; it handles
	// monster-eat and the evolution-stage check (§4.8).
	OnMonsterKill func(w *worldstate.World, killerActorID string, ateHealth, ateAttack, ateDefense float64, tick uint64)
}

type combatant struct {
	id       string
	position worldstate.Position
	health   *float64
	maxHealth float64
	attack   float64
	defense  float64
	isActor  bool
	isNPC    bool
	isBehemoth bool
	role     worldstate.Role
}

func lookup(w *worldstate.World, id string) (combatant, bool) {
	if a, ok := w.Actors[id]; ok {
		return combatant{
			id: id, position: a.Position, health: &a.Stats.Health,
			maxHealth: a.Stats.MaxHealth, attack: a.Stats.EffectiveAttack(),
			defense: a.Stats.EffectiveDefense(), isActor: true, role: a.Role,
		}, true
	}
	if n, ok := w.NPCs[id]; ok {
		return combatant{
			id: id, position: n.Position, health: &n.Stats.Health,
			maxHealth: n.Stats.MaxHealth, attack: n.Stats.EffectiveAttack(),
			defense: n.Stats.EffectiveDefense(), isNPC: true,
		}, true
	}
	if b, ok := w.Behemoths[id]; ok {
		return combatant{
			id: id, position: b.Position, health: &b.Health,
			maxHealth: b.MaxHealth, attack: b.Attack, defense: b.Defense,
			isBehemoth: true,
		}, true
	}
	return combatant{}, false
}

func isDead(w *worldstate.World, c combatant) bool {
	if c.isActor {
		a := w.Actors[c.id]
		return !a.IsAlive || a.Status == worldstate.StatusDead
	}
	if c.isNPC {
		_, ok := w.NPCs[c.id]
		return !ok
	}
	return false // behemoths never count as "dead" here; knockout is a status, not removal
}

func returnToIdle(w *worldstate.World, c combatant) {
	if !c.isActor {
		return
	}
	a := w.Actors[c.id]
	if a.IsAlive && a.Status == worldstate.StatusFighting {
		a.Status = worldstate.StatusIdle
	}
}

// Resolve advances every active combat pair by one tick: range/validity
// checks, attacker-hit, defender death check, counter-attack. Deactivated
// pairs are compacted out by the caller afterward (§4.5).
func Resolve(w *worldstate.World, tick uint64, hooks Hooks) {
	for _, pair := range w.CombatPairs {
		if !pair.Active {
			continue
		}

		attacker, ok := lookup(w, pair.AttackerID)
		if !ok || isDead(w, attacker) {
			pair.Active = false
			if ok {
				returnToIdle(w, attacker)
			}
			continue
		}
		defender, ok := lookup(w, pair.TargetID)
		if !ok || isDead(w, defender) {
			pair.Active = false
			returnToIdle(w, attacker)
			continue
		}

		if spatial.Distance(attacker.position, defender.position) > worldstate.AttackRange {
			pair.Active = false
			returnToIdle(w, attacker)
			returnToIdle(w, defender)
			continue
		}

		dmg := math.Max(1, attacker.attack-defender.defense)
		*defender.health -= dmg
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "combat_hit",
			Data: map[string]any{"attackerId": attacker.id, "targetId": defender.id, "damage": dmg, "targetHealth": *defender.health},
			EntityIDs: []string{attacker.id, defender.id},
		})

		if *defender.health <= 0 && !defender.isBehemoth {
			HandleDeath(w, defender, attacker.id, tick, hooks)
			pair.Active = false
			returnToIdle(w, attacker)
			continue
		}

		// Counter-attack: fighters and NPC monsters counter; merchants and
		// behemoths never do (behemoths are handled by the behemoth
		// processor's own knockout transition).
		countersBack := (defender.isActor && w.Actors[defender.id].Role == worldstate.RoleFighter) || defender.isNPC
		if countersBack && !defender.isBehemoth {
			counterDmg := math.Max(1, defender.attack-attacker.defense)
			*attacker.health -= counterDmg
			w.EmitEvent(worldstate.Event{
				Tick: tick, Type: "combat_hit",
				Data: map[string]any{"attackerId": defender.id, "targetId": attacker.id, "damage": counterDmg, "targetHealth": *attacker.health},
				EntityIDs: []string{attacker.id, defender.id},
			})
			if *attacker.health <= 0 {
				HandleDeath(w, attacker, defender.id, tick, hooks)
				pair.Active = false
			}
		}
	}
}

// HandleDeath implements the shared death protocol (§4.7) for either an
// actor or an NPC monster victim. killerID may be empty (e.g. a thrown-off
// climber with no attacker of record).
func HandleDeath(w *worldstate.World, victim combatant, killerID string, tick uint64, hooks Hooks) {
	if victim.isNPC {
		handleNPCDeath(w, victim.id, killerID, tick, hooks)
		return
	}
	if victim.isActor {
		handleActorDeath(w, victim.id, killerID, tick, hooks)
	}
}

// HandleDeathByID resolves victim/killer by id and dispatches to
// HandleDeath — used by callers (executor throw-offs) that only have ids.
func HandleDeathByID(w *worldstate.World, victimID, killerID string, tick uint64, hooks Hooks) {
	c, ok := lookup(w, victimID)
	if !ok {
		return
	}
	HandleDeath(w, c, killerID, tick, hooks)
}

func killerIsMonster(w *worldstate.World, killerID string) bool {
	a, ok := w.Actors[killerID]
	return ok && a.Role == worldstate.RoleMonster
}

func handleNPCDeath(w *worldstate.World, npcID, killerID string, tick uint64, hooks Hooks) {
	npc, ok := w.NPCs[npcID]
	if !ok {
		return
	}
	droppedGold := npc.GoldDrop
	if killer, ok := w.Actors[killerID]; ok {
		killer.Gold += droppedGold
	}
	w.EmitEvent(worldstate.Event{
		Tick: tick, Type: "death",
		Data: map[string]any{"victimId": npcID, "killerId": killerID, "droppedGold": droppedGold, "droppedItems": []string{}},
		EntityIDs: []string{npcID, killerID},
	})
	w.RemoveNPC(npcID)

	if killerIsMonster(w, killerID) {
		killer := w.Actors[killerID]
		killer.Kills++
		if hooks.OnMonsterKill != nil {
			hooks.OnMonsterKill(w, killerID, npc.Stats.MaxHealth, npc.Stats.Attack, npc.Stats.Defense, tick)
		}
	}
}

func handleActorDeath(w *worldstate.World, victimID, killerID string, tick uint64, hooks Hooks) {
	victim, ok := w.Actors[victimID]
	if !ok || !victim.IsAlive {
		return
	}

	if victim.Role == worldstate.RoleMonster {
		// Permadeath: no respawn, ever.
		victim.Status = worldstate.StatusDead
		victim.IsAlive = false
		victim.Stats.Health = 0
		droppedGold := victim.Gold
		if killer, ok := w.Actors[killerID]; ok {
			killer.Gold += droppedGold
		}
		victim.Gold = 0
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "death",
			Data: map[string]any{"victimId": victimID, "killerId": killerID, "droppedGold": droppedGold},
			EntityIDs: []string{victimID, killerID},
		})
	} else {
		// Merchant/fighter: partial loss + scheduled respawn.
		droppedGold := int64(math.Floor(float64(victim.Gold) * worldstate.DeathLossPercent))
		victim.Gold -= droppedGold
		var droppedItems []worldstate.ItemStack
		for i := range victim.Inventory {
			lost := int(math.Floor(float64(victim.Inventory[i].Quantity) * worldstate.DeathLossPercent))
			if lost > 0 {
				victim.Inventory[i].Quantity -= lost
				droppedItems = append(droppedItems, worldstate.ItemStack{ItemID: victim.Inventory[i].ItemID, Quantity: lost})
			}
		}
		if killer, ok := w.Actors[killerID]; ok {
			killer.Gold += droppedGold
			for _, item := range droppedItems {
				worldstate.InventoryAdd(killer, item.ItemID, item.Quantity)
			}
		}
		victim.Status = worldstate.StatusDead
		victim.IsAlive = false
		victim.RespawnTick = tick + worldstate.RespawnTicks
		w.MoveActor(victim, worldstate.Position{X: worldstate.SpawnX, Y: worldstate.SpawnY})
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "death",
			Data: map[string]any{"victimId": victimID, "killerId": killerID, "droppedGold": droppedGold, "droppedItems": droppedItems},
			EntityIDs: []string{victimID, killerID},
		})
	}

	if killerIsMonster(w, killerID) {
		killer := w.Actors[killerID]
		killer.Kills++
		if hooks.OnMonsterKill != nil {
			hooks.OnMonsterKill(w, killerID, victim.Stats.MaxHealth, victim.Stats.Attack, victim.Stats.Defense, tick)
		}
	}
}
