package executor_test

import (
	"testing"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/executor"
	"github.com/talgya/mini-world/internal/worldstate"
)

func TestRunBatchRejectsAndAppliesInOneBatch(t *testing.T) {
	w := worldstate.New(1)
	fighter := worldstate.NewActor("f1", "Fighter", worldstate.RoleFighter)
	w.AddActor(fighter)

	actions := []actionqueue.Action{
		{ActorID: "f1", Kind: actionqueue.ActionMove, X: 10, Y: 10},
		{ActorID: "ghost", Kind: actionqueue.ActionIdle},
	}

	result := executor.RunBatch(w, actions, 1)
	if len(result.Executed) != 1 || result.Executed[0].ActorID != "f1" {
		t.Fatalf("Executed = %+v, want exactly the move action", result.Executed)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Reason != "Agent not found" {
		t.Fatalf("Rejected = %+v, want [Agent not found]", result.Rejected)
	}
	if fighter.Status != worldstate.StatusMoving {
		t.Fatalf("Status = %v, want StatusMoving after an applied move", fighter.Status)
	}
}

func TestAdvanceMovementArrivesWhenWithinOneStep(t *testing.T) {
	w := worldstate.New(1)
	fighter := worldstate.NewActor("f2", "Fighter", worldstate.RoleFighter)
	fighter.Status = worldstate.StatusMoving
	dest := worldstate.Position{X: fighter.Position.X + 1, Y: fighter.Position.Y}
	fighter.Destination = &dest
	w.AddActor(fighter)

	executor.RunContinuous(w, 1)

	if fighter.Position != dest {
		t.Fatalf("Position = %+v, want arrival at %+v (destination within one step)", fighter.Position, dest)
	}
	if fighter.Status != worldstate.StatusIdle {
		t.Fatalf("Status = %v, want StatusIdle on arrival", fighter.Status)
	}
	if fighter.Destination != nil {
		t.Fatal("Destination should be cleared on arrival")
	}
}

func TestAdvanceGatheringCreditsGoldOnInterval(t *testing.T) {
	w := worldstate.New(1)
	fighter := worldstate.NewActor("f3", "Fighter", worldstate.RoleFighter)
	fighter.Status = worldstate.StatusGathering
	fighter.GatherTargetID = "vein1"
	fighter.GatherStartTick = 0
	w.AddActor(fighter)
	w.AddResource(&worldstate.Resource{
		ID: "vein1", Type: worldstate.ResourceGoldVein, State: worldstate.ResourceBeingGathered,
		GatheredByID: "f3", Remaining: 100, MaxCapacity: 100,
	})

	executor.RunContinuous(w, worldstate.GoldGatherTicks)

	if fighter.Gold != worldstate.GoldGatherAmount {
		t.Fatalf("Gold = %d, want %d after one gather interval", fighter.Gold, worldstate.GoldGatherAmount)
	}
	if w.Resources["vein1"].Remaining != 100-worldstate.GoldGatherAmount {
		t.Fatalf("Remaining = %d, want %d", w.Resources["vein1"].Remaining, 100-worldstate.GoldGatherAmount)
	}
}

func TestAdvanceGatheringDepletesAndStopsActor(t *testing.T) {
	w := worldstate.New(1)
	fighter := worldstate.NewActor("f4", "Fighter", worldstate.RoleFighter)
	fighter.Status = worldstate.StatusGathering
	fighter.GatherTargetID = "vein2"
	fighter.GatherStartTick = 0
	w.AddActor(fighter)
	w.AddResource(&worldstate.Resource{
		ID: "vein2", Type: worldstate.ResourceGoldVein, State: worldstate.ResourceBeingGathered,
		GatheredByID: "f4", Remaining: worldstate.GoldGatherAmount, MaxCapacity: worldstate.GoldGatherAmount,
	})

	executor.RunContinuous(w, worldstate.GoldGatherTicks)

	res := w.Resources["vein2"]
	if res.State != worldstate.ResourceDepleted || res.Remaining != 0 {
		t.Fatalf("resource = %+v, want fully depleted", res)
	}
	if fighter.Status != worldstate.StatusIdle || fighter.GatherTargetID != "" {
		t.Fatalf("actor did not stop gathering on depletion: status=%v target=%q", fighter.Status, fighter.GatherTargetID)
	}
}

func TestApplyRespawnsRestoresHealthAndPosition(t *testing.T) {
	w := worldstate.New(1)
	fighter := worldstate.NewActor("dead-f1", "Fighter", worldstate.RoleFighter)
	fighter.IsAlive = false
	fighter.Status = worldstate.StatusDead
	fighter.Stats.Health = 0
	fighter.RespawnTick = 5
	fighter.Position = worldstate.Position{X: 999, Y: 999}
	w.AddActor(fighter)

	executor.RunContinuous(w, 4)
	if fighter.IsAlive {
		t.Fatal("respawn fired before RespawnTick")
	}

	executor.RunContinuous(w, 5)
	if !fighter.IsAlive {
		t.Fatal("actor did not respawn once tick reached RespawnTick")
	}
	if fighter.Stats.Health != fighter.Stats.MaxHealth {
		t.Fatalf("Health = %v, want fully healed to %v", fighter.Stats.Health, fighter.Stats.MaxHealth)
	}
	if fighter.Position.X != worldstate.SpawnX || fighter.Position.Y != worldstate.SpawnY {
		t.Fatalf("Position = %+v, want spawn point", fighter.Position)
	}
	if fighter.RespawnTick != 0 {
		t.Fatalf("RespawnTick = %d, want cleared to 0", fighter.RespawnTick)
	}
}

func TestApplyTradeExpiryRemovesPendingTrade(t *testing.T) {
	w := worldstate.New(1)
	w.Trades["t1"] = &worldstate.Trade{ID: "t1", Status: worldstate.TradePending}

	executor.ApplyTradeExpiry(w, []string{"t1"})

	if _, ok := w.Trades["t1"]; ok {
		t.Fatal("expired trade should be removed from w.Trades")
	}
}

func TestApplyCraftCompletionAddsOutputAndReturnsToIdle(t *testing.T) {
	w := worldstate.New(1)
	merchant := worldstate.NewActor("m1", "Merchant", worldstate.RoleMerchant)
	merchant.Status = worldstate.StatusCrafting
	w.AddActor(merchant)
	w.CraftJobs["j1"] = &worldstate.CraftingJob{ID: "j1", ActorID: "m1", RecipeID: "tool_basic", CompleteTick: 10}

	executor.ApplyCraftCompletion(w, []string{"j1"}, 10)

	found := false
	for _, item := range merchant.Inventory {
		if item.ItemID == "tool_basic" && item.Quantity == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tool_basic x1 added to inventory, got %+v", merchant.Inventory)
	}
	if merchant.Status != worldstate.StatusIdle {
		t.Fatalf("Status = %v, want StatusIdle after craft completion", merchant.Status)
	}
	if _, ok := w.CraftJobs["j1"]; ok {
		t.Fatal("completed craft job should be removed from w.CraftJobs")
	}
}

func TestApplyThrowOffsDealsHalfMaxHealthAndRoutesDeath(t *testing.T) {
	w := worldstate.New(1)
	merchant := worldstate.NewActor("climber1", "Merchant", worldstate.RoleMerchant)
	merchant.Status = worldstate.StatusClimbing
	merchant.ClimbingBehemothID = "beh1"
	merchant.Stats.Health = 10
	w.AddActor(merchant)

	var diedID string
	death := func(w *worldstate.World, victimID, killerID string, tick uint64) {
		diedID = victimID
	}

	executor.ApplyThrowOffs(w, []string{"climber1"}, 50, 1, death)

	if merchant.Stats.Health != 0 {
		t.Fatalf("Health = %v, want clamped to 0 (10 - 25 damage)", merchant.Stats.Health)
	}
	if merchant.Status != worldstate.StatusIdle || merchant.ClimbingBehemothID != "" {
		t.Fatalf("thrown-off actor should stop climbing: status=%v climbing=%q", merchant.Status, merchant.ClimbingBehemothID)
	}
	if diedID != "climber1" {
		t.Fatalf("death hook called with victimID=%q, want climber1", diedID)
	}
}

func TestApplyTalkWhisperReachesOnlySenderAndTarget(t *testing.T) {
	w := worldstate.New(1)
	sender := worldstate.NewActor("s1", "Sender", worldstate.RoleFighter)
	target := worldstate.NewActor("t1", "Target", worldstate.RoleFighter)
	bystander := worldstate.NewActor("b1", "Bystander", worldstate.RoleFighter)
	w.AddActor(sender)
	w.AddActor(target)
	w.AddActor(bystander)

	result := executor.RunBatch(w, []actionqueue.Action{
		{ActorID: "s1", Kind: actionqueue.ActionTalk, TargetID: "t1", Content: "hi", Mode: worldstate.ChatWhisper.String()},
	}, 1)
	if len(result.Rejected) != 0 {
		t.Fatalf("unexpected rejection: %+v", result.Rejected)
	}

	if len(w.TickMessages) != 1 {
		t.Fatalf("len(TickMessages) = %d, want 1", len(w.TickMessages))
	}
	msg := w.TickMessages[0]
	if !msg.IsRecipient("s1") || !msg.IsRecipient("t1") {
		t.Fatal("whisper should reach both sender and target")
	}
	if msg.IsRecipient("b1") {
		t.Fatal("whisper must not reach a bystander")
	}
}
