package combat_test

import (
	"testing"

	"github.com/talgya/mini-world/internal/combat"
	"github.com/talgya/mini-world/internal/worldstate"
)

// Reproduces the worked fighter-versus-NPC scenario: fighter (ATK 15, DEF
// 10, HP 100) at (100,100) attacks an NPC (ATK 10, DEF 8, HP 30, goldDrop
// 10) at (103,100). Each tick the NPC should take 7 damage and the fighter
// 1 damage (counter), until the NPC dies on tick 5.
func TestFighterVsNPCWorkedScenario(t *testing.T) {
	w := worldstate.New(1)

	fighter := worldstate.NewActor("fighter1", "Fighter", worldstate.RoleFighter)
	fighter.Position = worldstate.Position{X: 100, Y: 100}
	fighter.Status = worldstate.StatusFighting
	w.AddActor(fighter)

	npc := &worldstate.NPCMonster{
		ID:       "npc1",
		Position: worldstate.Position{X: 103, Y: 100},
		Stats: worldstate.CombatStats{
			Health: 30, MaxHealth: 30, Attack: 10, Defense: 8,
		},
		GoldDrop: 10,
	}
	w.AddNPC(npc)

	w.AddCombatPair(&worldstate.CombatPair{AttackerID: fighter.ID, TargetID: npc.ID, Active: true})

	for tick := uint64(1); tick <= 4; tick++ {
		combat.Resolve(w, tick, combat.Hooks{})
		w.CompactCombatPairs()

		if npc.Stats.Health != 30-7*float64(tick) {
			t.Fatalf("tick %d: NPC health = %v, want %v", tick, npc.Stats.Health, 30-7*float64(tick))
		}
		if fighter.Stats.Health != 100-1*float64(tick) {
			t.Fatalf("tick %d: fighter health = %v, want %v", tick, fighter.Stats.Health, 100-1*float64(tick))
		}
		if _, alive := w.NPCs[npc.ID]; !alive {
			t.Fatalf("tick %d: NPC removed too early", tick)
		}
	}

	combat.Resolve(w, 5, combat.Hooks{})
	w.CompactCombatPairs()

	if _, alive := w.NPCs[npc.ID]; alive {
		t.Fatalf("tick 5: NPC should be removed on death")
	}
	if fighter.Gold != 10 {
		t.Fatalf("fighter gold = %d, want 10 (NPC goldDrop)", fighter.Gold)
	}
	if fighter.Stats.Health != 96 {
		t.Fatalf("fighter health on tick 5 = %v, want 96 (no counter from a dead NPC)", fighter.Stats.Health)
	}
	if fighter.Status != worldstate.StatusIdle {
		t.Fatalf("fighter status = %v, want idle after its target died", fighter.Status)
	}
	if len(w.CombatPairs) != 0 {
		t.Fatalf("expected the combat pair to be compacted out after the NPC's death")
	}
}

func TestHandleDeathByIDMonsterPermadeath(t *testing.T) {
	w := worldstate.New(1)
	victim := worldstate.NewActor("m1", "Mon", worldstate.RoleMonster)
	victim.Gold = 50
	w.AddActor(victim)

	combat.HandleDeathByID(w, "m1", "", 10, combat.Hooks{})

	if victim.IsAlive {
		t.Fatalf("monster-role victim should be marked not alive")
	}
	if victim.Status != worldstate.StatusDead {
		t.Fatalf("monster-role victim status = %v, want dead", victim.Status)
	}
	if victim.Gold != 0 {
		t.Fatalf("monster-role victim gold after death = %d, want 0 (all dropped)", victim.Gold)
	}
	if victim.RespawnTick != 0 {
		t.Fatalf("monster-role (permadeath) victim must never have a respawnTick set, got %d", victim.RespawnTick)
	}
}

func TestHandleDeathByIDFighterRespawnSchedule(t *testing.T) {
	w := worldstate.New(1)
	victim := worldstate.NewActor("f1", "Fig", worldstate.RoleFighter)
	w.AddActor(victim)

	combat.HandleDeathByID(w, "f1", "", 10, combat.Hooks{})

	if victim.IsAlive {
		t.Fatalf("fighter victim should be marked not alive immediately after death")
	}
	if victim.RespawnTick != 10+worldstate.RespawnTicks {
		t.Fatalf("fighter respawnTick = %d, want %d", victim.RespawnTick, 10+worldstate.RespawnTicks)
	}
	if victim.Position != (worldstate.Position{X: worldstate.SpawnX, Y: worldstate.SpawnY}) {
		t.Fatalf("fighter should be moved to spawn on death, got %+v", victim.Position)
	}
}
