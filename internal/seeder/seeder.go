// Package seeder places the initial world contents — resources, NPC
// monsters, and behemoths — deterministically from the world seed. Density
// is derived from layered simplex noise the way the teacher derives terrain
// from elevation/rainfall/temperature noise, adapted here to decide where
// trees and gold veins spring up across the flat world plane. See design
// doc §4 (World State / Seeder) and §4.9 (behemoth route).
package seeder

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/mini-world/internal/monsters"
	"github.com/talgya/mini-world/internal/worldstate"
)

// Config controls initial content density. Zero-value Config yields a
// reasonable small world; DefaultConfig exists for readability at call
// sites.
type Config struct {
	TreeThreshold     float64 // noise ≥ this ⇒ tree
	GoldVeinThreshold float64 // noise ≥ this ⇒ gold vein (checked after tree)
	GridStep          float64 // spacing between candidate resource cells
	NPCCount          int
	BehemothCount     int
}

// DefaultConfig matches the density used across the example scenarios in
// the testable-properties section: sparse enough that a 1000x1000 world
// isn't saturated, dense enough that gathering is always reachable.
func DefaultConfig() Config {
	return Config{
		TreeThreshold:     0.62,
		GoldVeinThreshold: 0.85,
		GridStep:          20,
		NPCCount:          12,
		BehemothCount:     2,
	}
}

// Seed populates an empty world's resources, NPCs, and behemoths. Calling
// it twice on two worlds constructed with the same seed produces identical
// placements, since both the noise field and the NPC/behemoth placement
// draw from the world's own seeded rng.Source.
func Seed(w *worldstate.World, cfg Config) {
	seedResources(w, cfg)
	seedNPCs(w, cfg)
	seedBehemoths(w, cfg)
}

func seedResources(w *worldstate.World, cfg Config) {
	elevNoise := opensimplex.NewNormalized(w.Seed)
	veinNoise := opensimplex.NewNormalized(w.Seed + 1)

	idx := 0
	for x := cfg.GridStep / 2; x < worldstate.Width; x += cfg.GridStep {
		for y := cfg.GridStep / 2; y < worldstate.Height; y += cfg.GridStep {
			pos := worldstate.Position{X: x, Y: y}
			if withinSafeZone(pos) {
				continue
			}
			n := elevNoise.Eval2(x*0.01, y*0.01)
			if n < cfg.TreeThreshold {
				continue
			}
			idx++
			vn := veinNoise.Eval2(x*0.01, y*0.01)
			if vn >= cfg.GoldVeinThreshold {
				w.AddResource(&worldstate.Resource{
					ID:          fmt.Sprintf("res-gold-%d", idx),
					Type:        worldstate.ResourceGoldVein,
					Position:    pos,
					Remaining:   worldstate.DefaultGoldVeinCapacity,
					MaxCapacity: worldstate.DefaultGoldVeinCapacity,
					State:       worldstate.ResourceAvailable,
				})
				continue
			}
			w.AddResource(&worldstate.Resource{
				ID:          fmt.Sprintf("res-tree-%d", idx),
				Type:        worldstate.ResourceTree,
				Position:    pos,
				Remaining:   worldstate.DefaultTreeCapacity,
				MaxCapacity: worldstate.DefaultTreeCapacity,
				State:       worldstate.ResourceAvailable,
			})
		}
	}
}

func withinSafeZone(p worldstate.Position) bool {
	dx := p.X - worldstate.SpawnX
	dy := p.Y - worldstate.SpawnY
	return dx*dx+dy*dy <= worldstate.SafeZoneRadius*worldstate.SafeZoneRadius
}

func seedNPCs(w *worldstate.World, cfg Config) {
	for i := 0; i < cfg.NPCCount; i++ {
		tmpl := monsters.DefaultTemplates[w.RNG.Intn(len(monsters.DefaultTemplates))]
		pos := randomOutsideSafeZone(w)
		npc := &worldstate.NPCMonster{
			ID:       fmt.Sprintf("npc-seed-%d", i),
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
	}
}

// behemothTypes names the ore each behemoth kind carries, mirrored onto the
// item id minted when a fed behemoth's ore is eventually traded/crafted
// with.
var behemothTypes = []string{"iron", "crystal"}

func seedBehemoths(w *worldstate.World, cfg Config) {
	for i := 0; i < cfg.BehemothCount; i++ {
		route := generateRoute(w)
		start := route[0]
		kind := behemothTypes[i%len(behemothTypes)]
		b := &worldstate.Behemoth{
			ID:        fmt.Sprintf("behemoth-%d", i),
			Type:      kind,
			Position:  start,
			Health:    500,
			MaxHealth: 500,
			Attack:    30,
			Defense:   15,
			Status:    worldstate.BehemothRoaming,
			OreMax:    30,
			Route:     route,
			Climbers:  make(map[string]struct{}),
		}
		w.AddBehemoth(b)
	}
}

// generateRoute picks four waypoints outside the safe zone for a behemoth
// to patrol between, deterministically from the world's seeded rng.
func generateRoute(w *worldstate.World) []worldstate.Position {
	route := make([]worldstate.Position, 4)
	for i := range route {
		route[i] = randomOutsideSafeZone(w)
	}
	return route
}

func randomOutsideSafeZone(w *worldstate.World) worldstate.Position {
	for {
		p := worldstate.Position{
			X: w.RNG.Float64() * worldstate.Width,
			Y: w.RNG.Float64() * worldstate.Height,
		}
		if !withinSafeZone(p) {
			return p
		}
	}
}
