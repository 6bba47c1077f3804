// Package monsters drives the NPC AI state machine, the population-control
// spawner, and monster-actor evolution thresholds. See design doc §4.8.
package monsters

import (
	"fmt"
	"math"

	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/worldstate"
)

// Tick advances every NPC's AI state machine by one step (§4.8).
func Tick(w *worldstate.World, tick uint64) {
	for _, id := range w.SortedNPCIDs() {
		npc := w.NPCs[id]
		switch npc.Behavior {
		case worldstate.NPCPatrol:
			tickPatrol(w, npc)
		case worldstate.NPCChase:
			tickChase(w, npc)
		case worldstate.NPCAttack:
			tickAttack(w, npc)
		}
	}
}

func aliveHumanActor(w *worldstate.World, id string) (*worldstate.Actor, bool) {
	a, ok := w.Actors[id]
	if !ok || !a.IsAlive || a.Role == worldstate.RoleMonster {
		return nil, false
	}
	return a, true
}

func tickPatrol(w *worldstate.World, npc *worldstate.NPCMonster) {
	// Random-walk bounded by patrolRadius around patrolOrigin.
	angle := w.RNG.Float64() * 2 * math.Pi
	step := npc.Stats.Speed
	candidate := worldstate.Position{
		X: npc.Position.X + math.Cos(angle)*step,
		Y: npc.Position.Y + math.Sin(angle)*step,
	}
	if spatial.Distance(npc.PatrolOrigin, candidate) <= npc.PatrolRadius {
		w.MoveNPC(npc, clampToWorld(candidate))
	}

	// Aggro check: any alive human-role actor within range becomes a target.
	for _, id := range w.Index.InRadius(npc.Position, worldstate.NPCAggroRange) {
		if _, ok := aliveHumanActor(w, id); ok {
			npc.Behavior = worldstate.NPCChase
			npc.TargetID = id
			npc.Status = worldstate.StatusFighting
			return
		}
	}
}

func tickChase(w *worldstate.World, npc *worldstate.NPCMonster) {
	target, ok := aliveHumanActor(w, npc.TargetID)
	if !ok {
		npc.Behavior = worldstate.NPCPatrol
		npc.TargetID = ""
		npc.Status = worldstate.StatusIdle
		return
	}
	dist := spatial.Distance(npc.Position, target.Position)
	if dist > worldstate.NPCChaseRange {
		npc.Behavior = worldstate.NPCPatrol
		npc.TargetID = ""
		npc.Status = worldstate.StatusIdle
		return
	}
	if dist <= worldstate.AttackRange {
		npc.Behavior = worldstate.NPCAttack
		return
	}
	dx := target.Position.X - npc.Position.X
	dy := target.Position.Y - npc.Position.Y
	step := npc.Stats.Speed / dist
	w.MoveNPC(npc, worldstate.Position{
		X: npc.Position.X + dx*step,
		Y: npc.Position.Y + dy*step,
	})
}

func tickAttack(w *worldstate.World, npc *worldstate.NPCMonster) {
	target, ok := aliveHumanActor(w, npc.TargetID)
	if !ok {
		npc.Behavior = worldstate.NPCPatrol
		npc.TargetID = ""
		npc.Status = worldstate.StatusIdle
		return
	}
	dist := spatial.Distance(npc.Position, target.Position)
	if dist > worldstate.AttackRange {
		npc.Behavior = worldstate.NPCChase
		return
	}
	// Damage is resolved by the combat resolver observing a pair formed
	// here, registered idempotently each tick this NPC stays in range.
	if w.FindCombatPair(npc.ID, target.ID) == nil {
		w.AddCombatPair(&worldstate.CombatPair{AttackerID: npc.ID, TargetID: target.ID, Active: true})
	}
}

func clampToWorld(p worldstate.Position) worldstate.Position {
	if p.X < 0 {
		p.X = 0
	}
	if p.X >= worldstate.Width {
		p.X = worldstate.Width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y >= worldstate.Height {
		p.Y = worldstate.Height - 1
	}
	return p
}

// Templates defines the base stats new NPCs spawn with. Kept small and
// deterministic-friendly; a production deployment would load these from
// content data rather than a literal table.
type Template struct {
	Name      string
	Health    float64
	Attack    float64
	Defense   float64
	Speed     float64
	GoldDrop  int64
	PatrolRadius float64
}

var DefaultTemplates = []Template{
	{Name: "wolf", Health: 30, Attack: 10, Defense: 8, Speed: 3, GoldDrop: 10, PatrolRadius: 40},
	{Name: "bandit", Health: 40, Attack: 12, Defense: 6, Speed: 2, GoldDrop: 15, PatrolRadius: 50},
}

// SpawnPopulationCheck runs the §4.8 population-control rule: every 60
// ticks, if alive NPCs fall below floor(H * 1.5) where H is alive connected
// human-role actors, spawn up to 3 new NPCs in "dangerous zones"
// (deterministically chosen, away from the safe-zone spawn point).
func SpawnPopulationCheck(w *worldstate.World, tick uint64) {
	if tick%worldstate.NPCSpawnCheckTicks != 0 {
		return
	}
	humans := 0
	for _, a := range w.Actors {
		if a.Connected && a.IsAlive && a.Role != worldstate.RoleMonster {
			humans++
		}
	}
	targetCount := int(math.Floor(float64(humans) * worldstate.NPCSpawnRatio))
	current := len(w.NPCs)
	if current >= targetCount {
		return
	}
	toSpawn := targetCount - current
	if toSpawn > worldstate.NPCSpawnMaxPerCheck {
		toSpawn = worldstate.NPCSpawnMaxPerCheck
	}
	for i := 0; i < toSpawn; i++ {
		tmpl := DefaultTemplates[w.RNG.Intn(len(DefaultTemplates))]
		pos := dangerousZonePosition(w)
		npc := &worldstate.NPCMonster{
			ID:       fmt.Sprintf("npc-%d-%d", tick, i),
			Template: tmpl.Name,
			Position: pos,
			Stats: worldstate.CombatStats{
				Health: tmpl.Health, MaxHealth: tmpl.Health,
				Attack: tmpl.Attack, Defense: tmpl.Defense, Speed: tmpl.Speed,
			},
			Status:       worldstate.StatusIdle,
			Behavior:     worldstate.NPCPatrol,
			PatrolOrigin: pos,
			PatrolRadius: tmpl.PatrolRadius,
			GoldDrop:     tmpl.GoldDrop,
		}
		w.AddNPC(npc)
		w.EmitEvent(worldstate.Event{
			Tick: tick, Type: "npc_spawn",
			Data: map[string]any{"npcId": npc.ID, "template": tmpl.Name, "position": pos},
			EntityIDs: []string{npc.ID},
		})
	}
}

// dangerousZonePosition picks a deterministic position outside the
// spawn-point safe zone.
func dangerousZonePosition(w *worldstate.World) worldstate.Position {
	for {
		x := w.RNG.Float64() * worldstate.Width
		y := w.RNG.Float64() * worldstate.Height
		p := worldstate.Position{X: x, Y: y}
		if spatial.Distance(p, worldstate.Position{X: worldstate.SpawnX, Y: worldstate.SpawnY}) > worldstate.SafeZoneRadius {
			return p
		}
	}
}

// evolutionThreshold describes one stage's promotion requirements and stat
// multipliers (§4.8 table).
type evolutionThreshold struct {
	stage         int
	minKills      int
	minEats       int
	attackMul     float64
	healthMul     float64
}

var thresholds = []evolutionThreshold{
	{stage: 4, minKills: 30, minEats: 20, attackMul: 3.0, healthMul: 2.0},
	{stage: 3, minKills: 15, minEats: 10, attackMul: 2.0, healthMul: 1.5},
	{stage: 2, minKills: 5, minEats: 3, attackMul: 1.5, healthMul: 1.25},
}

// stageMultiplier returns the attack/health multiplier a stage applies over
// an unevolved (stage 1) monster. Stage 1 itself carries no multiplier.
func stageMultiplier(stage int) (attackMul, healthMul float64) {
	for _, th := range thresholds {
		if th.stage == stage {
			return th.attackMul, th.healthMul
		}
	}
	return 1.0, 1.0
}

// EvaluateEvolution applies the highest qualifying stage transition (at
// most one per call). Per §4.8, evolution scales from the previous stage's
// multipliers rather than a frozen stage-1 snapshot, so any eat-accrued
// bonuses already folded into the actor's current stats carry forward
// (scaled along with the rest) instead of being discarded. Heals to the new
// max and emits an evolution event. Called after any kill or eat increment.
func EvaluateEvolution(w *worldstate.World, actorID string, tick uint64) {
	actor, ok := w.Actors[actorID]
	if !ok || actor.Role != worldstate.RoleMonster {
		return
	}

	for _, th := range thresholds {
		if th.stage <= actor.EvolutionStage {
			continue
		}
		if actor.Kills >= th.minKills || actor.MonsterEats >= th.minEats {
			prevStage := actor.EvolutionStage
			prevAttackMul, prevHealthMul := stageMultiplier(prevStage)
			actor.EvolutionStage = th.stage
			actor.Stats.Attack = math.Floor(actor.Stats.Attack / prevAttackMul * th.attackMul)
			actor.Stats.MaxHealth = math.Floor(actor.Stats.MaxHealth / prevHealthMul * th.healthMul)
			actor.Stats.Health = actor.Stats.MaxHealth
			w.EmitEvent(worldstate.Event{
				Tick: tick, Type: "evolution",
				Data: map[string]any{"actorId": actorID, "fromStage": prevStage, "toStage": th.stage},
				EntityIDs: []string{actorID},
			})
			return // at most one transition per evaluation
		}
	}
}

// ApplyEat implements the §4.8 monster-eat mechanic: the eater gains
// floor(10%) of the eaten's maxHealth/attack/defense, healed by the same
// health delta (no overheal), monsterEats increments, and an event fires.
func ApplyEat(w *worldstate.World, eaterID string, eatenMaxHealth, eatenAttack, eatenDefense float64, tick uint64) {
	eater, ok := w.Actors[eaterID]
	if !ok {
		return
	}
	healthGain := math.Floor(eatenMaxHealth * 0.10)
	attackGain := math.Floor(eatenAttack * 0.10)
	defenseGain := math.Floor(eatenDefense * 0.10)

	eater.Stats.MaxHealth += healthGain
	eater.Stats.Attack += attackGain
	eater.Stats.Defense += defenseGain
	eater.Stats.Health += healthGain
	if eater.Stats.Health > eater.Stats.MaxHealth {
		eater.Stats.Health = eater.Stats.MaxHealth
	}
	eater.MonsterEats++

	w.EmitEvent(worldstate.Event{
		Tick: tick, Type: "monster_eat",
		Data: map[string]any{"actorId": eaterID, "healthGain": healthGain, "attackGain": attackGain, "defenseGain": defenseGain},
		EntityIDs: []string{eaterID},
	})

	EvaluateEvolution(w, eaterID, tick)
}

// OnMonsterKill is the combat.Hooks callback wiring: invoked whenever a
// role=monster actor kills anything. Applies the eat bonus and evolution
// check, per §4.7/§4.8.
func OnMonsterKill(w *worldstate.World, killerID string, ateHealth, ateAttack, ateDefense float64, tick uint64) {
	ApplyEat(w, killerID, ateHealth, ateAttack, ateDefense, tick)
}
