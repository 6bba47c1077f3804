// Package engine drives the single fixed-rate tick loop that advances the
// world: drain queued actions, validate and apply them, run continuous
// effects, resolve combat, step the NPC/behemoth/resource/economy
// processors, assemble per-actor broadcasts, and persist. Exactly one
// goroutine ever calls step — the concurrency boundary is actionqueue.Queue
// upstream of it. See design doc §4.10.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/behemoth"
	"github.com/talgya/mini-world/internal/broadcast"
	"github.com/talgya/mini-world/internal/combat"
	"github.com/talgya/mini-world/internal/economy"
	"github.com/talgya/mini-world/internal/executor"
	"github.com/talgya/mini-world/internal/monsters"
	"github.com/talgya/mini-world/internal/network"
	"github.com/talgya/mini-world/internal/persistence"
	"github.com/talgya/mini-world/internal/resources"
	"github.com/talgya/mini-world/internal/worldstate"
)

// slowTickThreshold logs a warning whenever a tick's wall-clock work exceeds
// this fixed duration, a sign the simulation is falling
// behind real time.
const slowTickThreshold = 500 * time.Millisecond

// Engine owns the world and drives it forward one tick at a time.
type Engine struct {
	World    *worldstate.World
	Queue    *actionqueue.Queue
	DB       *persistence.DB
	Hub      *network.Hub
	Interval time.Duration

	hooks       combat.Hooks
	currentTick uint64

	// OnBroadcast is called with the assembled per-actor updates at the end
	// of every tick — wired to the network layer at construction time.
	OnBroadcast func(tick uint64, updates map[string]broadcast.TickUpdate)
}

// New constructs an engine around an already-seeded world and wires the
// cross-package hooks (behemoth feed/climb into the executor, monster-kill
// evolution tracking into combat) that would otherwise require an import
// cycle.
func New(w *worldstate.World, q *actionqueue.Queue, db *persistence.DB, hub *network.Hub) *Engine {
	executor.SetBehemothHooks(behemoth.Feed, behemoth.Climb)
	e := &Engine{
		World:    w,
		Queue:    q,
		DB:       db,
		Hub:      hub,
		Interval: time.Second,
		hooks:    combat.Hooks{OnMonsterKill: monsters.OnMonsterKill},
	}
	if hub != nil {
		e.OnBroadcast = hub.Broadcast
	}
	return e
}

// Run blocks, advancing the world once per Interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	slog.Info("tick engine started", "interval", e.Interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("tick engine stopping", "tick", e.currentTick)
			return
		case <-ticker.C:
			start := time.Now()
			e.Step()
			if elapsed := time.Since(start); elapsed > slowTickThreshold {
				slog.Warn("slow tick", "tick", e.currentTick, "elapsed", elapsed)
			}
		}
	}
}

// Step advances the world by exactly one tick. Exported so a driver (tests,
// or a deterministic replay harness) can call it directly instead of going
// through Run's ticker.
func (e *Engine) Step() {
	e.currentTick++
	tick := e.currentTick
	w := e.World

	if e.Hub != nil {
		e.Hub.ProcessPending(w, tick)
	}

	actions := e.Queue.Drain()
	batch := executor.RunBatch(w, actions, tick)
	executor.RunContinuous(w, tick)

	combat.Resolve(w, tick, e.hooks)
	w.CompactCombatPairs()

	monsters.Tick(w, tick)
	monsters.SpawnPopulationCheck(w, tick)

	resources.Tick(w, tick)

	throwOffs := behemoth.Tick(w, tick)
	for _, to := range throwOffs {
		b, ok := w.Behemoths[to.BehemothID]
		if !ok {
			continue
		}
		executor.ApplyThrowOffs(w, to.ClimberIDs, b.MaxHealth, tick, e.handleDeath)
	}

	econ := economy.Tick(w, tick)
	executor.ApplyTradeExpiry(w, econ.ExpiredTradeIDs)
	executor.ApplyCraftCompletion(w, econ.CompletedJobIDs, tick)

	updates := broadcast.BuildAll(w, tick, batch.Rejected)
	if e.OnBroadcast != nil {
		e.OnBroadcast(tick, updates)
	}

	if e.DB != nil {
		if err := e.DB.PersistTickChanges(tick, w.TickEvents); err != nil {
			slog.Error("persist tick changes failed", "tick", tick, "error", err)
		}
		if tick%worldstate.SnapshotCadenceTicks == 0 {
			if err := e.DB.SnapshotWorld(w, tick); err != nil {
				slog.Error("world snapshot failed", "tick", tick, "error", err)
			}
			e.logSummary(tick)
		}
	}

	w.ClearTickBuffers()
}

// logSummary emits a snapshot-cadence population/economy summary, the
// per-N-tick analogue of the teacher's daily Simulation.TickDay logging —
// gold totals are humanize-formatted for readability the way the teacher
// formats its own economy figures.
func (e *Engine) logSummary(tick uint64) {
	w := e.World
	var totalGold int64
	connected := 0
	for _, a := range w.Actors {
		totalGold += a.Gold
		if a.Connected {
			connected++
		}
	}
	slog.Info("world summary",
		"tick", tick,
		"actors", len(w.Actors),
		"connected", connected,
		"npcs", len(w.NPCs),
		"behemoths", len(w.Behemoths),
		"totalGold", humanize.Comma(totalGold),
	)
}

// handleDeath adapts combat's (w, victim, killer, tick, hooks) death
// protocol to executor.DeathFn's narrower (w, victim, killer, tick)
// signature, closing over the engine's hooks so a thrown-off climber's
// death still drives monster-kill evolution bookkeeping.
func (e *Engine) handleDeath(w *worldstate.World, victimID, killerID string, tick uint64) {
	combat.HandleDeathByID(w, victimID, killerID, tick, e.hooks)
}

// CurrentTick exposes the engine's tick counter for callers that need it
// (e.g. an admin status endpoint).
func (e *Engine) CurrentTick() uint64 { return e.currentTick }

// ResumeFrom sets the tick counter to a snapshot's tick, so a reloaded
// world continues numbering ticks forward instead of restarting at zero.
func (e *Engine) ResumeFrom(tick uint64) { e.currentTick = tick }
