package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
}

func TestUpsert_AppendsThenOverwrites(t *testing.T) {
	ids := sequentialIDs()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	item := types.QueueItem{ID: "task-1", PlanCode: "24sk202", Datacenter: "rbx", Options: []string{"ram-64g"}, RetryCount: 1}

	records, rec := Upsert(nil, item, types.PurchaseOutcome{Err: errors.New("currently out of stock")}, now, ids)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, state.OutcomeFailed, rec.Status)
	assert.Nil(t, rec.OrderID)
	assert.Nil(t, rec.OrderURL)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "currently out of stock", *rec.ErrorMessage)
	assert.Equal(t, 1, rec.AttemptCount)

	item.RetryCount = 2
	later := now.Add(30 * time.Second)
	records, rec = Upsert(records, item, types.PurchaseOutcome{Result: &types.PurchaseResult{OrderID: "123", OrderURL: "https://o/123"}}, later, ids)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, state.OutcomeSuccess, rec.Status)
	assert.Equal(t, "123", *rec.OrderID)
	assert.Equal(t, "https://o/123", *rec.OrderURL)
	assert.Nil(t, rec.ErrorMessage)
	assert.Equal(t, 2, rec.AttemptCount)
	assert.Equal(t, later, rec.PurchaseTime)
	assert.Equal(t, records[0], rec)
}

func TestUpsert_AtMostOneRecordPerTask(t *testing.T) {
	ids := sequentialIDs()
	var records []types.HistoryRecord
	fail := types.PurchaseOutcome{Err: errors.New("x")}
	for i := 0; i < 5; i++ {
		for _, id := range []string{"a", "b", "c"} {
			records, _ = Upsert(records, types.QueueItem{ID: id, RetryCount: i + 1}, fail, time.Now(), ids)
		}
	}
	require.Len(t, records, 3)
	seen := map[string]bool{}
	for _, r := range records {
		assert.False(t, seen[r.TaskID])
		seen[r.TaskID] = true
		assert.Equal(t, 5, r.AttemptCount)
	}
}

func TestUpsert_NilErrorFailure(t *testing.T) {
	_, rec := Upsert(nil, types.QueueItem{ID: "t"}, types.PurchaseOutcome{}, time.Now(), sequentialIDs())
	assert.Equal(t, state.OutcomeFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
}

func TestFind(t *testing.T) {
	records := []types.HistoryRecord{{TaskID: "a"}, {TaskID: "b"}}
	assert.Equal(t, 1, Find(records, "b"))
	assert.Equal(t, -1, Find(records, "z"))
}
