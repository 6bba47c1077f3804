package economy_test

import (
	"testing"

	"github.com/talgya/mini-world/internal/economy"
	"github.com/talgya/mini-world/internal/worldstate"
)

func TestTickReportsExpiredTrades(t *testing.T) {
	w := worldstate.New(1)
	w.Trades["t1"] = &worldstate.Trade{ID: "t1", Status: worldstate.TradePending, CreatedAtTick: 0}
	w.Trades["t2"] = &worldstate.Trade{ID: "t2", Status: worldstate.TradePending, CreatedAtTick: 100}
	w.Trades["t3"] = &worldstate.Trade{ID: "t3", Status: worldstate.TradeAccepted, CreatedAtTick: 0}

	res := economy.Tick(w, worldstate.TradeExpireTicks)

	if len(res.ExpiredTradeIDs) != 1 || res.ExpiredTradeIDs[0] != "t1" {
		t.Fatalf("ExpiredTradeIDs = %v, want [t1] (only the pending trade past expiry)", res.ExpiredTradeIDs)
	}
}

func TestTickReportsCompletedCraftJobs(t *testing.T) {
	w := worldstate.New(1)
	w.CraftJobs["j1"] = &worldstate.CraftingJob{ID: "j1", CompleteTick: 50}
	w.CraftJobs["j2"] = &worldstate.CraftingJob{ID: "j2", CompleteTick: 200}

	res := economy.Tick(w, 50)

	if len(res.CompletedJobIDs) != 1 || res.CompletedJobIDs[0] != "j1" {
		t.Fatalf("CompletedJobIDs = %v, want [j1]", res.CompletedJobIDs)
	}
}

func TestTickDeterministicOrdering(t *testing.T) {
	w := worldstate.New(1)
	w.Trades["zeta"] = &worldstate.Trade{ID: "zeta", Status: worldstate.TradePending, CreatedAtTick: 0}
	w.Trades["alpha"] = &worldstate.Trade{ID: "alpha", Status: worldstate.TradePending, CreatedAtTick: 0}

	res := economy.Tick(w, worldstate.TradeExpireTicks)

	if len(res.ExpiredTradeIDs) != 2 {
		t.Fatalf("len(ExpiredTradeIDs) = %d, want 2", len(res.ExpiredTradeIDs))
	}
	if res.ExpiredTradeIDs[0] != "alpha" || res.ExpiredTradeIDs[1] != "zeta" {
		t.Fatalf("ExpiredTradeIDs = %v, want sorted [alpha zeta]", res.ExpiredTradeIDs)
	}
}
