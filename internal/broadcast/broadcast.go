// Package broadcast assembles the per-actor TickUpdate: a self view, a
// fog-of-war-filtered nearby view, tick-scoped chat messages addressed to
// the actor, vision-filtered events, and any action_rejected envelopes for
// actions that actor submitted this tick. See design doc §4.11.
package broadcast

import (
	"github.com/talgya/mini-world/internal/executor"
	"github.com/talgya/mini-world/internal/spatial"
	"github.com/talgya/mini-world/internal/worldstate"
)

// SelfView is the actor's full private view of itself.
type SelfView struct {
	ID                  string                  `json:"id"`
	Name                string                  `json:"name"`
	Role                string                  `json:"role"`
	Position            worldstate.Position     `json:"position"`
	Status              string                  `json:"status"`
	Stats               worldstate.CombatStats  `json:"stats"`
	Gold                int64                   `json:"gold"`
	Inventory           []worldstate.ItemStack  `json:"inventory"`
	Equipment           worldstate.Equipment    `json:"equipment"`
	Alliance            string                  `json:"alliance,omitempty"`
	Kills               int                     `json:"kills"`
	EvolutionStage      int                     `json:"evolutionStage"`
	ActionCooldownTicks uint64                  `json:"actionCooldownTicks"`
}

// PublicActorView is what OTHER actors see of this actor — never gold,
// inventory, or equipment (§4.11).
type PublicActorView struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Role           string              `json:"role"`
	Position       worldstate.Position `json:"position"`
	Status         string              `json:"status"`
	Health         float64             `json:"health"`
	MaxHealth      float64             `json:"maxHealth"`
	Alliance       string              `json:"alliance,omitempty"`
	EvolutionStage int                 `json:"evolutionStage"`
}

// NPCView is a visible NPC monster.
type NPCView struct {
	ID        string              `json:"id"`
	IsNPC     bool                `json:"isNpc"`
	Template  string              `json:"template"`
	Position  worldstate.Position `json:"position"`
	Status    string              `json:"status"`
	Health    float64             `json:"health"`
	MaxHealth float64             `json:"maxHealth"`
}

// BehemothView is a visible behemoth, with the two derived fields the wire
// contract requires beyond the raw entity.
type BehemothView struct {
	ID                       string              `json:"id"`
	Type                     string              `json:"type"`
	Position                 worldstate.Position `json:"position"`
	Health                   float64             `json:"health"`
	MaxHealth                float64             `json:"maxHealth"`
	Status                   string              `json:"status"`
	UnconsciousTicksRemaining uint64             `json:"unconsciousTicksRemaining"`
	OreAvailable             bool                `json:"oreAvailable"`
}

// ResourceView is a visible resource.
type ResourceView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Position  worldstate.Position `json:"position"`
	Remaining int    `json:"remaining"`
	MaxCapacity int  `json:"maxCapacity"`
	State     string `json:"state"`
}

// StructureView is a visible structure.
type StructureView struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Position worldstate.Position `json:"position"`
	Owner    string              `json:"owner"`
	Alliance string              `json:"alliance,omitempty"`
}

// Nearby partitions everything within an actor's vision radius.
type Nearby struct {
	Actors     []PublicActorView `json:"actors"`
	Resources  []ResourceView    `json:"resources"`
	NPCs       []NPCView         `json:"npcs"`
	Behemoths  []BehemothView    `json:"behemoths"`
	Structures []StructureView   `json:"structures"`
}

// MessageView is a chat message as delivered to one recipient.
type MessageView struct {
	ID         string              `json:"id"`
	SenderID   string              `json:"senderId"`
	SenderName string              `json:"senderName"`
	Mode       string              `json:"mode"`
	Content    string              `json:"content"`
}

// RejectedView is the action_rejected envelope.
type RejectedView struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// TickUpdate is the full personalized payload for one connected actor.
type TickUpdate struct {
	Tick      uint64         `json:"tick"`
	Self      SelfView       `json:"self"`
	Nearby    Nearby         `json:"nearby"`
	Messages  []MessageView  `json:"messages"`
	Events    []worldstate.Event `json:"events"`
	Rejected  []RejectedView `json:"rejected,omitempty"`
}

// BuildAll assembles one TickUpdate per connected actor.
func BuildAll(w *worldstate.World, tick uint64, rejected []executor.Rejected) map[string]TickUpdate {
	out := make(map[string]TickUpdate, len(w.Actors))
	for _, id := range w.SortedActorIDs() {
		actor := w.Actors[id]
		if !actor.Connected {
			continue
		}
		out[id] = buildOne(w, actor, tick, rejected)
	}
	return out
}

func buildOne(w *worldstate.World, actor *worldstate.Actor, tick uint64, rejected []executor.Rejected) TickUpdate {
	var cooldown uint64
	if actor.ActionCooldownUntilTick > tick {
		cooldown = actor.ActionCooldownUntilTick - tick
	}
	update := TickUpdate{
		Tick: tick,
		Self: SelfView{
			ID: actor.ID, Name: actor.Name, Role: actor.Role.String(),
			Position: actor.Position, Status: actor.Status.String(), Stats: actor.Stats,
			Gold: actor.Gold, Inventory: actor.Inventory, Equipment: actor.Equipment,
			Alliance: actor.Alliance, Kills: actor.Kills, EvolutionStage: actor.EvolutionStage,
			ActionCooldownTicks: cooldown,
		},
		Nearby: buildNearby(w, actor, tick),
	}

	for _, m := range w.TickMessages {
		if m.IsRecipient(actor.ID) {
			update.Messages = append(update.Messages, MessageView{
				ID: m.ID, SenderID: m.SenderID, SenderName: m.SenderName,
				Mode: m.Mode.String(), Content: m.Content,
			})
		}
	}

	for _, e := range w.TickEvents {
		if eventTouchesActor(w, e, actor) {
			update.Events = append(update.Events, e)
		}
	}

	for _, r := range rejected {
		if r.ActorID == actor.ID {
			update.Rejected = append(update.Rejected, RejectedView{Kind: string(r.Kind), Reason: r.Reason})
		}
	}

	return update
}

// eventTouchesActor implements the §9 open-question resolution: an event is
// delivered if the actor is a subject/object of it, or if any entity it
// names is currently within the actor's vision radius.
func eventTouchesActor(w *worldstate.World, e worldstate.Event, actor *worldstate.Actor) bool {
	for _, id := range e.EntityIDs {
		if id == actor.ID {
			return true
		}
	}
	for _, id := range e.EntityIDs {
		pos, ok := entityPosition(w, id)
		if !ok {
			continue
		}
		if spatial.Distance(actor.Position, pos) <= actor.Stats.VisionRadius {
			return true
		}
	}
	return false
}

func entityPosition(w *worldstate.World, id string) (worldstate.Position, bool) {
	if a, ok := w.Actors[id]; ok {
		return a.Position, true
	}
	if n, ok := w.NPCs[id]; ok {
		return n.Position, true
	}
	if b, ok := w.Behemoths[id]; ok {
		return b.Position, true
	}
	if r, ok := w.Resources[id]; ok {
		return r.Position, true
	}
	return worldstate.Position{}, false
}

func buildNearby(w *worldstate.World, actor *worldstate.Actor, tick uint64) Nearby {
	var n Nearby
	for _, id := range w.Index.InRadius(actor.Position, actor.Stats.VisionRadius) {
		if id == actor.ID {
			continue
		}
		if other, ok := w.Actors[id]; ok {
			n.Actors = append(n.Actors, PublicActorView{
				ID: other.ID, Name: other.Name, Role: other.Role.String(),
				Position: other.Position, Status: other.Status.String(),
				Health: other.Stats.Health, MaxHealth: other.Stats.MaxHealth,
				Alliance: other.Alliance, EvolutionStage: other.EvolutionStage,
			})
			continue
		}
		if npc, ok := w.NPCs[id]; ok {
			n.NPCs = append(n.NPCs, NPCView{
				ID: npc.ID, IsNPC: true, Template: npc.Template, Position: npc.Position,
				Status: npc.Status.String(), Health: npc.Stats.Health, MaxHealth: npc.Stats.MaxHealth,
			})
			continue
		}
		if b, ok := w.Behemoths[id]; ok {
			var remaining uint64
			if b.UnconsciousUntilTick > tick {
				remaining = b.UnconsciousUntilTick - tick
			}
			n.Behemoths = append(n.Behemoths, BehemothView{
				ID: b.ID, Type: b.Type, Position: b.Position, Health: b.Health, MaxHealth: b.MaxHealth,
				Status: behemothStatusString(b.Status), UnconsciousTicksRemaining: remaining,
				OreAvailable: b.OreAmount > 0,
			})
		}
	}

	for _, id := range w.SortedResourceIDs() {
		r := w.Resources[id]
		if spatial.Distance(actor.Position, r.Position) <= actor.Stats.VisionRadius {
			n.Resources = append(n.Resources, ResourceView{
				ID: r.ID, Type: r.Type.String(), Position: r.Position,
				Remaining: r.Remaining, MaxCapacity: r.MaxCapacity, State: resourceStateString(r.State),
			})
		}
	}

	for _, id := range w.SortedStructureIDs() {
		s := w.Structures[id]
		if spatial.Distance(actor.Position, s.Position) <= actor.Stats.VisionRadius {
			n.Structures = append(n.Structures, StructureView{
				ID: s.ID, Type: s.Type, Position: s.Position, Owner: s.Owner, Alliance: s.Alliance,
			})
		}
	}

	return n
}

func behemothStatusString(s worldstate.BehemothStatus) string {
	switch s {
	case worldstate.BehemothRoaming:
		return "roaming"
	case worldstate.BehemothUnconscious:
		return "unconscious"
	case worldstate.BehemothWaking:
		return "waking"
	default:
		return "unknown"
	}
}

func resourceStateString(s worldstate.ResourceState) string {
	switch s {
	case worldstate.ResourceAvailable:
		return "available"
	case worldstate.ResourceBeingGathered:
		return "being_gathered"
	case worldstate.ResourceDepleted:
		return "depleted"
	case worldstate.ResourceGrowing:
		return "growing"
	default:
		return "unknown"
	}
}
