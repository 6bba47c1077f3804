// Package network is the websocket transport that carries the wire
// protocol of §6: per-actor auth, role selection, action ingress, and
// tick_update/action_rejected/pong egress. Grounded on
// niceyeti-tabular/tabular/server/fastview/client.go's ping/pong and
// serialized read/write pump pattern, generalized here from that example's
// unidirectional publish-only client into a genuinely bidirectional
// connection. See design doc §6.
package network

import (
	"encoding/json"

	"github.com/talgya/mini-world/internal/actionqueue"
)

// envelope is the minimal shape every inbound message carries, read first
// to dispatch on Type before decoding the rest.
type envelope struct {
	Type string `json:"type"`
}

type authMsg struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type selectRoleMsg struct {
	Role string `json:"role"`
}

type actionMsg struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
	Tick   uint64          `json:"tick"`
}

// actionParams is the union of every action kind's parameter schema (§4.3).
// Only the fields relevant to the action's kind are populated on the wire;
// the rest decode to their zero value.
type actionParams struct {
	X            float64        `json:"x,omitempty"`
	Y            float64        `json:"y,omitempty"`
	TargetID     string         `json:"targetId,omitempty"`
	RecipeID     string         `json:"recipeId,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Content      string         `json:"content,omitempty"`
	OfferItems   map[string]int `json:"offerItems,omitempty"`
	RequestItems map[string]int `json:"requestItems,omitempty"`
	OfferGold    int64          `json:"offerGold,omitempty"`
	SeedID       string         `json:"seedId,omitempty"`
	ItemID       string         `json:"itemId,omitempty"`
	Name         string         `json:"name,omitempty"`
}

// decodeAction turns a raw action_msg into an actionqueue.Action scoped to
// actorID. Malformed params (bad JSON) cause a false return; the caller
// drops the message silently per §7's "malformed ingress" rule.
func decodeAction(actorID string, m actionMsg) (actionqueue.Action, bool) {
	kind := actionqueue.ActionKind(m.Action)
	switch kind {
	case actionqueue.ActionMove, actionqueue.ActionGather, actionqueue.ActionCraft,
		actionqueue.ActionAttack, actionqueue.ActionTalk, actionqueue.ActionInspect,
		actionqueue.ActionTrade, actionqueue.ActionPlant, actionqueue.ActionWater,
		actionqueue.ActionFeed, actionqueue.ActionClimb, actionqueue.ActionFormAlliance,
		actionqueue.ActionJoinAlliance, actionqueue.ActionLeaveAlliance, actionqueue.ActionIdle:
	default:
		return actionqueue.Action{}, false
	}

	var p actionParams
	if len(m.Params) > 0 {
		if err := json.Unmarshal(m.Params, &p); err != nil {
			return actionqueue.Action{}, false
		}
	}

	return actionqueue.Action{
		ActorID:      actorID,
		Kind:         kind,
		Tick:         m.Tick,
		X:            p.X,
		Y:            p.Y,
		TargetID:     p.TargetID,
		RecipeID:     p.RecipeID,
		Mode:         p.Mode,
		Content:      p.Content,
		OfferItems:   p.OfferItems,
		RequestItems: p.RequestItems,
		OfferGold:    p.OfferGold,
		SeedID:       p.SeedID,
		ItemID:       p.ItemID,
		Name:         p.Name,
	}, true
}

// Outbound envelope constructors — one function per server→client message
// kind named in §6.

func authPrompt() any { return map[string]string{"type": "auth_prompt"} }

func authSuccess(agentID string) any {
	return map[string]string{"type": "auth_success", "agentId": agentID}
}

func authError(reason string) any {
	return map[string]string{"type": "auth_error", "reason": reason}
}

func rolePrompt(roles []string) any {
	return map[string]any{"type": "role_prompt", "availableRoles": roles}
}

func roleConfirmed(role, agentID string, spawn any) any {
	return map[string]any{
		"type": "role_confirmed", "role": role, "agentId": agentID, "spawnPosition": spawn,
	}
}

func pong(serverTick uint64) any {
	return map[string]any{"type": "pong", "serverTick": serverTick}
}

func tickUpdateMsg(data any) any {
	return map[string]any{"type": "tick_update", "data": data}
}
