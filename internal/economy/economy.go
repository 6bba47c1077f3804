// Package economy scans pending trades and crafting jobs each tick and
// reports which have expired or completed, for the executor to apply. See
// design doc §4.9.
package economy

import "github.com/talgya/mini-world/internal/worldstate"

// Results lists what the executor should do with this tick's economy scan.
type Results struct {
	ExpiredTradeIDs    []string
	CompletedJobIDs    []string
}

// Tick returns every pending trade past its expiry tick and every crafting
// job past its completion tick, in deterministic (sorted id) order.
func Tick(w *worldstate.World, tick uint64) Results {
	var res Results
	for _, id := range w.SortedTradeIDs() {
		t := w.Trades[id]
		if t.Status == worldstate.TradePending && t.ExpiresAtTick() <= tick {
			res.ExpiredTradeIDs = append(res.ExpiredTradeIDs, id)
		}
	}
	for _, id := range w.SortedCraftJobIDs() {
		job := w.CraftJobs[id]
		if job.CompleteTick <= tick {
			res.CompletedJobIDs = append(res.CompletedJobIDs, id)
		}
	}
	return res
}
