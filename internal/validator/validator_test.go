package validator_test

import (
	"testing"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/validator"
	"github.com/talgya/mini-world/internal/worldstate"
)

func TestValidateRejectionReasons(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(w *worldstate.World) actionqueue.Action
		reason string
	}{
		{
			name: "agent not found",
			setup: func(w *worldstate.World) actionqueue.Action {
				return actionqueue.Action{ActorID: "ghost", Kind: actionqueue.ActionIdle}
			},
			reason: "Agent not found",
		},
		{
			name: "agent is dead",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("dead1", "Dead", worldstate.RoleFighter)
				a.IsAlive = false
				a.Status = worldstate.StatusDead
				w.AddActor(a)
				return actionqueue.Action{ActorID: "dead1", Kind: actionqueue.ActionIdle}
			},
			reason: "Agent is dead",
		},
		{
			name: "on cooldown",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("cd1", "CD", worldstate.RoleFighter)
				a.ActionCooldownUntilTick = 100
				w.AddActor(a)
				return actionqueue.Action{ActorID: "cd1", Kind: actionqueue.ActionIdle}
			},
			reason: "On cooldown",
		},
		{
			name: "destination out of bounds",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("mv1", "Mover", worldstate.RoleFighter)
				w.AddActor(a)
				return actionqueue.Action{ActorID: "mv1", Kind: actionqueue.ActionMove, X: -5, Y: 0}
			},
			reason: "Destination out of bounds",
		},
		{
			name: "monsters cannot gather",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("mon1", "Mon", worldstate.RoleMonster)
				w.AddActor(a)
				w.AddResource(&worldstate.Resource{ID: "r1", Position: a.Position, State: worldstate.ResourceAvailable})
				return actionqueue.Action{ActorID: "mon1", Kind: actionqueue.ActionGather, TargetID: "r1"}
			},
			reason: "Monsters cannot gather",
		},
		{
			name: "fighters can only mine gold",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("fig1", "Fig", worldstate.RoleFighter)
				w.AddActor(a)
				w.AddResource(&worldstate.Resource{ID: "r1", Type: worldstate.ResourceTree, Position: a.Position, State: worldstate.ResourceAvailable})
				return actionqueue.Action{ActorID: "fig1", Kind: actionqueue.ActionGather, TargetID: "r1"}
			},
			reason: "Fighters can only mine gold",
		},
		{
			name: "merchants cannot mine gold",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("merch1", "Merch", worldstate.RoleMerchant)
				w.AddActor(a)
				w.AddResource(&worldstate.Resource{ID: "r1", Type: worldstate.ResourceGoldVein, Position: a.Position, State: worldstate.ResourceAvailable})
				return actionqueue.Action{ActorID: "merch1", Kind: actionqueue.ActionGather, TargetID: "r1"}
			},
			reason: "Merchants cannot mine gold",
		},
		{
			name: "cannot attack yourself",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("self1", "Self", worldstate.RoleFighter)
				w.AddActor(a)
				return actionqueue.Action{ActorID: "self1", Kind: actionqueue.ActionAttack, TargetID: "self1"}
			},
			reason: "Cannot attack yourself",
		},
		{
			name: "merchants cannot attack",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("merch2", "Merch", worldstate.RoleMerchant)
				w.AddActor(a)
				target := worldstate.NewActor("t1", "Target", worldstate.RoleFighter)
				target.Position = a.Position
				w.AddActor(target)
				return actionqueue.Action{ActorID: "merch2", Kind: actionqueue.ActionAttack, TargetID: "t1"}
			},
			reason: "Merchants cannot attack",
		},
		{
			name: "fighters cannot attack other fighters",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("fig2", "Fig", worldstate.RoleFighter)
				w.AddActor(a)
				target := worldstate.NewActor("fig3", "Fig2", worldstate.RoleFighter)
				target.Position = a.Position
				w.AddActor(target)
				return actionqueue.Action{ActorID: "fig2", Kind: actionqueue.ActionAttack, TargetID: "fig3"}
			},
			reason: "Fighters cannot attack other fighters",
		},
		{
			name: "only merchants can craft",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("fig4", "Fig", worldstate.RoleFighter)
				w.AddActor(a)
				return actionqueue.Action{ActorID: "fig4", Kind: actionqueue.ActionCraft}
			},
			reason: "Only merchants can craft",
		},
		{
			name: "message cannot be empty",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("talk1", "Talker", worldstate.RoleMerchant)
				w.AddActor(a)
				return actionqueue.Action{ActorID: "talk1", Kind: actionqueue.ActionTalk, Content: ""}
			},
			reason: "Message cannot be empty",
		},
		{
			name: "cannot trade with yourself",
			setup: func(w *worldstate.World) actionqueue.Action {
				a := worldstate.NewActor("trader1", "Trader", worldstate.RoleMerchant)
				w.AddActor(a)
				return actionqueue.Action{ActorID: "trader1", Kind: actionqueue.ActionTrade, TargetID: "trader1"}
			},
			reason: "Cannot trade with yourself",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := worldstate.New(1)
			action := tc.setup(w)
			verdict := validator.Validate(w, action, 0)
			if verdict.Approved {
				t.Fatalf("expected rejection %q, got approved", tc.reason)
			}
			if verdict.Reason != tc.reason {
				t.Fatalf("rejection reason = %q, want %q", verdict.Reason, tc.reason)
			}
		})
	}
}

func TestValidateApprovesWithinRules(t *testing.T) {
	w := worldstate.New(1)
	a := worldstate.NewActor("ok1", "OK", worldstate.RoleFighter)
	w.AddActor(a)
	w.AddResource(&worldstate.Resource{ID: "vein1", Type: worldstate.ResourceGoldVein, Position: a.Position, State: worldstate.ResourceAvailable})

	verdict := validator.Validate(w, actionqueue.Action{ActorID: "ok1", Kind: actionqueue.ActionGather, TargetID: "vein1"}, 0)
	if !verdict.Approved {
		t.Fatalf("expected approval for a fighter gathering an in-range gold vein, got rejection %q", verdict.Reason)
	}
}
