// Package executor is the engine's sole mutation surface for validated
// actions and continuous (non-action-triggered) effects: movement,
// gathering progress, respawns, and the results handed back by the
// economy and behemoth processors. See design doc §4.4.
package executor

import (
	"math"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/rng"
	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/validator"
	"github.com/talgya/mini-world/internal/worldstate"
)

// sortedKeys returns a map's keys in deterministic order, so iterating
// per-actor keyed containers (offer/request item sets) during a tick never
// depends on Go's randomized map order.
func sortedKeys(m map[string]int) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Rejected pairs a rejected action with its actor, for the broadcaster's
// action_rejected envelope (§4.11).
type Rejected struct {
	ActorID string
	Kind    actionqueue.ActionKind
	Reason  string
}

// BatchResult summarizes what the batch phase did this tick.
type BatchResult struct {
	Executed []actionqueue.Action
	Rejected []Rejected
}

// RunBatch validates and applies every drained action in order, building
// the tick's executed/rejected lists. Actions are already sorted by actorID
// by the caller (actionqueue.Drain).
func RunBatch(w *worldstate.World, actions []actionqueue.Action, tick uint64) BatchResult {
	var result BatchResult
	for _, a := range actions {
		v := validator.Validate(w, a, tick)
		if !v.Approved {
			result.Rejected = append(result.Rejected, Rejected{ActorID: a.ActorID, Kind: a.Kind, Reason: v.Reason})
			continue
		}
		apply(w, a, tick)
		result.Executed = append(result.Executed, a)
	}
	return result
}

func apply(w *worldstate.World, a actionqueue.Action, tick uint64) {
	actor := w.Actors[a.ActorID]
	actor.LastActionTick = tick

	switch a.Kind {
	case actionqueue.ActionMove:
		applyMove(actor, a)
	case actionqueue.ActionGather:
		applyGather(w, actor, a, tick)
	case actionqueue.ActionAttack:
		applyAttack(w, actor, a, tick)
	case actionqueue.ActionTalk:
		applyTalk(w, actor, a, tick)
	case actionqueue.ActionTrade:
		applyTrade(w, actor, a, tick)
	case actionqueue.ActionPlant:
		applyPlant(w, actor, a, tick)
	case actionqueue.ActionWater:
		applyWater(w, a, tick)
	case actionqueue.ActionFeed:
		applyFeed(w, actor, a, tick)
	case actionqueue.ActionClimb:
		applyClimb(w, actor, a)
	case actionqueue.ActionCraft:
		applyCraft(w, actor, a, tick)
	case actionqueue.ActionFormAlliance:
		applyFormAlliance(w, actor, a, tick)
	case actionqueue.ActionJoinAlliance:
		applyJoinAlliance(w, actor, a)
	case actionqueue.ActionLeaveAlliance:
		applyLeaveAlliance(w, actor)
	case actionqueue.ActionIdle, actionqueue.ActionInspect:
		// no mutation
	}
}

func applyMove(actor *worldstate.Actor, a actionqueue.Action) {
	dest := worldstate.Position{X: a.X, Y: a.Y}
	actor.Destination = &dest
	actor.Status = worldstate.StatusMoving
}

func applyGather(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	res := w.Resources[a.TargetID]
	res.State = worldstate.ResourceBeingGathered
	res.GatheredByID = actor.ID
	actor.Status = worldstate.StatusGathering
	actor.GatherTargetID = res.ID
	actor.GatherStartTick = tick
}

func applyAttack(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	if existing := w.FindCombatPair(actor.ID, a.TargetID); existing != nil {
		return
	}
	w.AddCombatPair(&worldstate.CombatPair{
		AttackerID: actor.ID,
		TargetID:   a.TargetID,
		StartTick:  tick,
		Active:     true,
	})
	actor.Status = worldstate.StatusFighting
}

func applyTalk(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	msg := worldstate.ChatMessage{
		ID:             uuid.NewString(),
		Tick:           tick,
		SenderID:       actor.ID,
		SenderName:     actor.Name,
		Content:        a.Content,
		TargetID:       a.TargetID,
		SenderPosition: actor.Position,
		Recipients:     make(map[string]struct{}),
	}
	switch a.Mode {
	case worldstate.ChatLocal.String():
		msg.Mode = worldstate.ChatLocal
		for _, id := range w.SortedActorIDs() {
			other := w.Actors[id]
			if spatial.Distance(actor.Position, other.Position) <= worldstate.LocalChatRadius {
				msg.Recipients[id] = struct{}{}
			}
		}
	case worldstate.ChatBroadcast.String():
		msg.Mode = worldstate.ChatBroadcast
		msg.Recipients[worldstate.AllRecipients] = struct{}{}
	default:
		msg.Mode = worldstate.ChatWhisper
		msg.Recipients[actor.ID] = struct{}{}
		msg.Recipients[a.TargetID] = struct{}{}
	}
	w.EmitMessage(msg)
}

func applyTrade(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	offered := make([]worldstate.ItemStack, 0, len(a.OfferItems))
	for _, itemID := range sortedKeys(a.OfferItems) {
		offered = append(offered, worldstate.ItemStack{ItemID: itemID, Quantity: a.OfferItems[itemID]})
	}
	requested := make([]worldstate.ItemStack, 0, len(a.RequestItems))
	for _, itemID := range sortedKeys(a.RequestItems) {
		requested = append(requested, worldstate.ItemStack{ItemID: itemID, Quantity: a.RequestItems[itemID]})
	}
	trade := &worldstate.Trade{
		ID:            uuid.NewString(),
		BuyerID:       actor.ID,
		SellerID:      a.TargetID,
		Offered:       offered,
		Requested:     requested,
		Status:        worldstate.TradePending,
		CreatedAtTick: tick,
	}
	w.Trades[trade.ID] = trade
}

func applyPlant(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	worldstate.InventoryRemove(actor, a.SeedID, 1)
	sapling := &worldstate.Resource{
		ID:                 uuid.NewString(),
		Type:               worldstate.ResourceSapling,
		Position:           worldstate.Position{X: a.X, Y: a.Y},
		MaxCapacity:        worldstate.DefaultTreeCapacity,
		State:              worldstate.ResourceGrowing,
		GrowthStartTick:    tick,
		GrowthCompleteTick: tick + worldstate.SaplingGrowthTicks,
	}
	w.AddResource(sapling)
}

func applyWater(w *worldstate.World, a actionqueue.Action, tick uint64) {
	for _, id := range w.SortedResourceIDs() {
		r := w.Resources[id]
		if r.Type == worldstate.ResourceSapling && r.Position.X == a.X && r.Position.Y == a.Y {
			newComplete := r.GrowthCompleteTick - worldstate.WaterBonusTicks
			if newComplete < tick+1 {
				newComplete = tick + 1
			}
			r.GrowthCompleteTick = newComplete
			return
		}
	}
}

// FeedBehemothFn delegates to the behemoth processor's feed handler,
// injected by the engine at wiring time to avoid an import cycle between
// executor and behemoth (behemoth reads executor's action types nowhere,
// but both sit under the same tick package and this keeps the dependency
// one-directional: engine -> executor, engine -> behemoth).
type FeedBehemothFn func(w *worldstate.World, actorID, behemothID, itemID string, tick uint64)

// ClimbBehemothFn delegates climber registration to the behemoth processor.
type ClimbBehemothFn func(w *worldstate.World, actorID, behemothID string)

var feedHook FeedBehemothFn
var climbHook ClimbBehemothFn

// SetBehemothHooks wires the behemoth package's feed/climb-registration
// functions into the executor. Called once during engine construction.
func SetBehemothHooks(feed FeedBehemothFn, climb ClimbBehemothFn) {
	feedHook = feed
	climbHook = climb
}

func applyFeed(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	if feedHook != nil {
		feedHook(w, actor.ID, a.TargetID, a.ItemID, tick)
	}
}

func applyClimb(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) {
	actor.Status = worldstate.StatusClimbing
	actor.ClimbingBehemothID = a.TargetID
	if climbHook != nil {
		climbHook(w, actor.ID, a.TargetID)
	}
}

// Recipe describes a craftable item.
type Recipe struct {
	ID           string
	OutputItemID string
	OutputQty    int
	DurationTicks uint64
}

// Recipes is the static crafting table, keyed by recipe id.
var Recipes = map[string]Recipe{
	"tool_basic":   {ID: "tool_basic", OutputItemID: "tool_basic", OutputQty: 1, DurationTicks: 10},
	"weapon_basic": {ID: "weapon_basic", OutputItemID: "weapon_basic", OutputQty: 1, DurationTicks: 20},
	"armor_basic":  {ID: "armor_basic", OutputItemID: "armor_basic", OutputQty: 1, DurationTicks: 20},
}

func applyCraft(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	recipe, ok := Recipes[a.RecipeID]
	if !ok {
		return
	}
	job := &worldstate.CraftingJob{
		ID:           uuid.NewString(),
		ActorID:      actor.ID,
		RecipeID:     recipe.ID,
		StartTick:    tick,
		CompleteTick: tick + recipe.DurationTicks,
	}
	w.CraftJobs[job.ID] = job
	actor.Status = worldstate.StatusCrafting
}

func applyFormAlliance(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action, tick uint64) {
	all := &worldstate.Alliance{
		Name:          a.Name,
		FounderID:     actor.ID,
		Members:       map[string]struct{}{actor.ID: {}},
		CreatedAtTick: tick,
	}
	w.Alliances[all.Name] = all
	actor.Alliance = all.Name
}

func applyJoinAlliance(w *worldstate.World, actor *worldstate.Actor, a actionqueue.Action) {
	all := w.Alliances[a.Name]
	all.Members[actor.ID] = struct{}{}
	actor.Alliance = all.Name
}

func applyLeaveAlliance(w *worldstate.World, actor *worldstate.Actor) {
	name := actor.Alliance
	all, ok := w.Alliances[name]
	if !ok {
		actor.Alliance = ""
		return
	}
	delete(all.Members, actor.ID)
	actor.Alliance = ""
	if len(all.Members) == 0 {
		delete(w.Alliances, name)
	}
}

// RunContinuous advances movement, gathering progress, and respawns — the
// time-based effects not triggered by a fresh action this tick (§4.4).
func RunContinuous(w *worldstate.World, tick uint64) {
	for _, id := range w.SortedActorIDs() {
		actor := w.Actors[id]
		if !actor.IsAlive {
			continue
		}
		advanceMovement(w, actor)
		advanceGathering(w, actor, tick)
	}
	applyRespawns(w, tick)
}

func advanceMovement(w *worldstate.World, actor *worldstate.Actor) {
	if actor.Status != worldstate.StatusMoving || actor.Destination == nil {
		return
	}
	dest := *actor.Destination
	dx := dest.X - actor.Position.X
	dy := dest.Y - actor.Position.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist <= actor.Stats.Speed || dist == 0 {
		w.MoveActor(actor, dest)
		actor.Destination = nil
		actor.Status = worldstate.StatusIdle
		return
	}
	step := actor.Stats.Speed / dist
	newPos := worldstate.Position{
		X: actor.Position.X + dx*step,
		Y: actor.Position.Y + dy*step,
	}
	w.MoveActor(actor, newPos)
}

func advanceGathering(w *worldstate.World, actor *worldstate.Actor, tick uint64) {
	if actor.Status != worldstate.StatusGathering {
		return
	}
	res, ok := w.Resources[actor.GatherTargetID]
	if !ok || res.State != worldstate.ResourceBeingGathered {
		actor.Status = worldstate.StatusIdle
		actor.GatherTargetID = ""
		return
	}

	var interval uint64
	var amount int
	var itemID string
	switch res.Type {
	case worldstate.ResourceTree:
		interval = worldstate.TreeGatherTicks
		amount = 1
		itemID = "log"
	case worldstate.ResourceGoldVein:
		interval = worldstate.GoldGatherTicks
		amount = worldstate.GoldGatherAmount
		if amount > res.Remaining {
			amount = res.Remaining
		}
		itemID = "" // gold credited directly
	default:
		return
	}

	elapsed := tick - actor.GatherStartTick
	if elapsed == 0 || elapsed%interval != 0 {
		return
	}

	if amount > res.Remaining {
		amount = res.Remaining
	}
	res.Remaining -= amount
	if itemID == "" {
		actor.Gold += int64(amount)
	} else {
		worldstate.InventoryAdd(actor, itemID, amount)
	}
	w.EmitEvent(worldstate.Event{
		Tick: tick,
		Type: "resource_gathered",
		Data: map[string]any{"actorId": actor.ID, "resourceId": res.ID, "amount": amount},
		EntityIDs: []string{actor.ID, res.ID},
	})

	if res.Remaining <= 0 {
		res.Remaining = 0
		res.State = worldstate.ResourceDepleted
		res.GatheredByID = ""
		actor.Status = worldstate.StatusIdle
		actor.GatherTargetID = ""
		w.EmitEvent(worldstate.Event{
			Tick: tick,
			Type: "resource_depleted",
			Data: map[string]any{"resourceId": res.ID},
			EntityIDs: []string{res.ID},
		})

		if res.Type == worldstate.ResourceTree {
			roll := rng.Keyed(w.Seed, keyFor(res.ID, tick))
			if roll.Bool(worldstate.SeedDropChance) {
				worldstate.InventoryAdd(actor, "tree_seed", 1)
			}
		}
	}
}

// keyFor mixes a resource id string and tick into a uint64 key for
// rng.Keyed, so seed-drop rolls are reproducible per (resourceId, tick).
func keyFor(resourceID string, tick uint64) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	for i := 0; i < len(resourceID); i++ {
		h ^= uint64(resourceID[i])
		h *= 1099511628211
	}
	return h ^ tick
}

func applyRespawns(w *worldstate.World, tick uint64) {
	for _, id := range w.SortedActorIDs() {
		actor := w.Actors[id]
		if actor.RespawnTick == 0 || tick < actor.RespawnTick {
			continue
		}
		actor.Stats.Health = actor.Stats.MaxHealth
		w.MoveActor(actor, worldstate.Position{X: worldstate.SpawnX, Y: worldstate.SpawnY})
		actor.Status = worldstate.StatusIdle
		actor.IsAlive = true
		actor.RespawnTick = 0
		w.EmitEvent(worldstate.Event{
			Tick: tick,
			Type: "respawn",
			Data: map[string]any{"actorId": actor.ID},
			EntityIDs: []string{actor.ID},
		})
	}
}

// ApplyTradeExpiry returns offered items unchanged (the offer was never
// withdrawn) and removes the trade from pending — called with the economy
// processor's expired-trade list (§4.9).
func ApplyTradeExpiry(w *worldstate.World, tradeIDs []string) {
	for _, id := range tradeIDs {
		t, ok := w.Trades[id]
		if !ok {
			continue
		}
		t.Status = worldstate.TradeExpired
		delete(w.Trades, id)
	}
}

// ApplyCraftCompletion adds outputs to the crafter's inventory, returns the
// crafter to idle, and emits craft_complete (§4.9).
func ApplyCraftCompletion(w *worldstate.World, jobIDs []string, tick uint64) {
	for _, id := range jobIDs {
		job, ok := w.CraftJobs[id]
		if !ok {
			continue
		}
		recipe, ok := Recipes[job.RecipeID]
		if ok {
			if actor, ok := w.Actors[job.ActorID]; ok {
				worldstate.InventoryAdd(actor, recipe.OutputItemID, recipe.OutputQty)
				if actor.Status == worldstate.StatusCrafting {
					actor.Status = worldstate.StatusIdle
				}
				w.EmitEvent(worldstate.Event{
					Tick: tick,
					Type: "craft_complete",
					Data: map[string]any{"actorId": actor.ID, "recipeId": job.RecipeID},
					EntityIDs: []string{actor.ID},
				})
			}
		}
		delete(w.CraftJobs, id)
	}
}

// ApplyThrowOffs deals half-maxHealth damage to each thrown climber,
// clamped at 0, and routes lethal throws to the death protocol (§4.4, §4.8).
// DeathFn is injected by the engine to avoid an import cycle with combat
// (which owns the death protocol).
type DeathFn func(w *worldstate.World, victimID, killerID string, tick uint64)

func ApplyThrowOffs(w *worldstate.World, climberIDs []string, maxHealth float64, tick uint64, death DeathFn) {
	dmg := math.Floor(maxHealth * worldstate.BehemothThrowOffFrac)
	for _, id := range climberIDs {
		actor, ok := w.Actors[id]
		if !ok {
			continue
		}
		actor.Stats.Health -= dmg
		if actor.Stats.Health < 0 {
			actor.Stats.Health = 0
		}
		if actor.Status == worldstate.StatusClimbing {
			actor.Status = worldstate.StatusIdle
			actor.ClimbingBehemothID = ""
		}
		w.EmitEvent(worldstate.Event{
			Tick: tick,
			Type: "thrown_off",
			Data: map[string]any{"actorId": actor.ID, "damage": dmg},
			EntityIDs: []string{actor.ID},
		})
		if actor.Stats.Health <= 0 && death != nil {
			death(w, actor.ID, "", tick)
		}
	}
}
