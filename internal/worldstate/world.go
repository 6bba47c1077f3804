package worldstate

import (
	"sort"

	"github.com/talgya/mini-world/internal/rng"
	"github.com/talgya/mini-world/internal/spatial"
)

// World is the single owned authoritative state object. Exactly one
// goroutine (the tick loop) mutates it per tick; all entity maps and the
// spatial index are exclusive to this struct. See design doc §3, §9.
type World struct {
	Seed int64
	RNG  *rng.Source

	Actors     map[string]*Actor
	Resources  map[string]*Resource
	NPCs       map[string]*NPCMonster
	Behemoths  map[string]*Behemoth
	Structures map[string]*Structure
	Alliances  map[string]*Alliance
	Trades     map[string]*Trade
	CraftJobs  map[string]*CraftingJob

	// CombatPairs is attachment-ordered: index 0 is the oldest active pair.
	CombatPairs []*CombatPair

	// Index covers actors, NPCs, and behemoths — every entity relevant to
	// range checks and fog-of-war queries. Resources are immobile and are
	// looked up by id directly; they do not need index churn.
	Index *spatial.Index

	// Tick-scoped buffers, cleared at the end of every tick (§3).
	TickMessages []ChatMessage
	TickEvents   []Event
}

// New creates an empty world seeded from seed.
func New(seed int64) *World {
	return &World{
		Seed:       seed,
		RNG:        rng.New(seed),
		Actors:     make(map[string]*Actor),
		Resources:  make(map[string]*Resource),
		NPCs:       make(map[string]*NPCMonster),
		Behemoths:  make(map[string]*Behemoth),
		Structures: make(map[string]*Structure),
		Alliances:  make(map[string]*Alliance),
		Trades:     make(map[string]*Trade),
		CraftJobs:  make(map[string]*CraftingJob),
		Index:      spatial.New(),
	}
}

// AddActor registers a new actor and indexes its position.
func (w *World) AddActor(a *Actor) {
	w.Actors[a.ID] = a
	w.Index.Add(a.ID, a.Position)
}

// MoveActor repositions an actor and keeps the spatial index in sync.
func (w *World) MoveActor(a *Actor, newPos Position) {
	w.Index.Move(a.ID, a.Position, newPos)
	a.Position = newPos
}

// AddNPC registers a new NPC monster and indexes its position.
func (w *World) AddNPC(n *NPCMonster) {
	w.NPCs[n.ID] = n
	w.Index.Add(n.ID, n.Position)
}

// RemoveNPC deletes an NPC and its index entry (permanent — NPC death).
func (w *World) RemoveNPC(id string) {
	if n, ok := w.NPCs[id]; ok {
		w.Index.Remove(id, n.Position)
		delete(w.NPCs, id)
	}
}

// MoveNPC repositions an NPC and keeps the spatial index in sync.
func (w *World) MoveNPC(n *NPCMonster, newPos Position) {
	w.Index.Move(n.ID, n.Position, newPos)
	n.Position = newPos
}

// AddBehemoth registers a new behemoth and indexes its position.
func (w *World) AddBehemoth(b *Behemoth) {
	if b.Climbers == nil {
		b.Climbers = make(map[string]struct{})
	}
	w.Behemoths[b.ID] = b
	w.Index.Add(b.ID, b.Position)
}

// MoveBehemoth repositions a behemoth and keeps the spatial index in sync.
func (w *World) MoveBehemoth(b *Behemoth, newPos Position) {
	w.Index.Move(b.ID, b.Position, newPos)
	b.Position = newPos
}

// AddResource registers a new resource. Resources never move once placed.
func (w *World) AddResource(r *Resource) {
	w.Resources[r.ID] = r
}

// RemoveResource deletes a resource entirely (not used by depletion, which
// keeps the record with State == ResourceDepleted; used when a sapling
// transforms into a tracked tree record in place instead of being removed).
func (w *World) RemoveResource(id string) {
	delete(w.Resources, id)
}

// FindCombatPair returns the active pair for (attacker, target) if one
// exists, per the dedup rule in spec.md §9 (open question resolved:
// deduplicate).
func (w *World) FindCombatPair(attackerID, targetID string) *CombatPair {
	for _, p := range w.CombatPairs {
		if p.Active && p.AttackerID == attackerID && p.TargetID == targetID {
			return p
		}
	}
	return nil
}

// AddCombatPair appends a new pair in attachment order.
func (w *World) AddCombatPair(p *CombatPair) {
	w.CombatPairs = append(w.CombatPairs, p)
}

// CompactCombatPairs drops deactivated pairs from the slice, preserving
// attachment order of the remaining ones.
func (w *World) CompactCombatPairs() {
	kept := w.CombatPairs[:0]
	for _, p := range w.CombatPairs {
		if p.Active {
			kept = append(kept, p)
		}
	}
	w.CombatPairs = kept
}

// EmitEvent appends a tick-scoped event.
func (w *World) EmitEvent(e Event) {
	w.TickEvents = append(w.TickEvents, e)
}

// EmitMessage appends a tick-scoped chat message.
func (w *World) EmitMessage(m ChatMessage) {
	w.TickMessages = append(w.TickMessages, m)
}

// ClearTickBuffers empties the tick-scoped message/event buffers. Called at
// the end of every tick by the engine.
func (w *World) ClearTickBuffers() {
	w.TickMessages = nil
	w.TickEvents = nil
}

// SortedActorIDs returns every actor id in deterministic sorted order — used
// wherever a tick must iterate actors in a stable order (§5, §9).
func (w *World) SortedActorIDs() []string {
	ids := make([]string, 0, len(w.Actors))
	for id := range w.Actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedNPCIDs returns every NPC id in deterministic sorted order.
func (w *World) SortedNPCIDs() []string {
	ids := make([]string, 0, len(w.NPCs))
	for id := range w.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedBehemothIDs returns every behemoth id in deterministic sorted order.
func (w *World) SortedBehemothIDs() []string {
	ids := make([]string, 0, len(w.Behemoths))
	for id := range w.Behemoths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedResourceIDs returns every resource id in deterministic sorted order.
func (w *World) SortedResourceIDs() []string {
	ids := make([]string, 0, len(w.Resources))
	for id := range w.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedTradeIDs returns every trade id in deterministic sorted order.
func (w *World) SortedTradeIDs() []string {
	ids := make([]string, 0, len(w.Trades))
	for id := range w.Trades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedCraftJobIDs returns every crafting job id in deterministic sorted order.
func (w *World) SortedCraftJobIDs() []string {
	ids := make([]string, 0, len(w.CraftJobs))
	for id := range w.CraftJobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedStructureIDs returns every structure id in deterministic sorted order.
func (w *World) SortedStructureIDs() []string {
	ids := make([]string, 0, len(w.Structures))
	for id := range w.Structures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InventoryAdd increments (or inserts) an item stack on an actor's
// inventory, keeping the ordered-slice representation the spec calls for
// (§3: "ordered list of {itemId, quantity}").
func InventoryAdd(a *Actor, itemID string, qty int) {
	if qty == 0 {
		return
	}
	for i := range a.Inventory {
		if a.Inventory[i].ItemID == itemID {
			a.Inventory[i].Quantity += qty
			return
		}
	}
	a.Inventory = append(a.Inventory, ItemStack{ItemID: itemID, Quantity: qty})
}

// InventoryRemove decrements an item stack, removing it entirely if it
// reaches zero. Returns false if the actor doesn't have enough.
func InventoryRemove(a *Actor, itemID string, qty int) bool {
	for i := range a.Inventory {
		if a.Inventory[i].ItemID == itemID {
			if a.Inventory[i].Quantity < qty {
				return false
			}
			a.Inventory[i].Quantity -= qty
			if a.Inventory[i].Quantity == 0 {
				a.Inventory = append(a.Inventory[:i], a.Inventory[i+1:]...)
			}
			return true
		}
	}
	return qty == 0
}

// InventoryCount returns how many of itemID an actor holds.
func InventoryCount(a *Actor, itemID string) int {
	for _, stack := range a.Inventory {
		if stack.ItemID == itemID {
			return stack.Quantity
		}
	}
	return 0
}
