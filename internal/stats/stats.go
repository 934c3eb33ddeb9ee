package stats

import (
	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/types"
)

// Compute derives the counters from scratch. It has no side effects, so
// calling it twice on the same input yields the same result.
func Compute(items []types.QueueItem, plans []types.ServerPlan, history []types.HistoryRecord) types.Stats {
	var s types.Stats
	for _, item := range items {
		if item.Status == state.StatusRunning {
			s.ActiveQueues++
		}
	}
	s.TotalServers = len(plans)
	for _, p := range plans {
		if p.HasStock() {
			s.AvailableServers++
		}
	}
	for _, h := range history {
		switch h.Status {
		case state.OutcomeSuccess:
			s.PurchaseSuccess++
		case state.OutcomeFailed:
			s.PurchaseFailed++
		}
	}
	return s
}
