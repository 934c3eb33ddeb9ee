package ledger

import (
	"time"

	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/types"
)

// IDFunc generates ids for new records.
type IDFunc func() string

// Upsert records the outcome of the attempt that just finished for item.
// The record for item.ID is overwritten in place if present, otherwise a new
// record is appended. The returned slice may share backing storage with
// records.
func Upsert(records []types.HistoryRecord, item types.QueueItem, outcome types.PurchaseOutcome, now time.Time, newID IDFunc) ([]types.HistoryRecord, types.HistoryRecord) {
	idx := Find(records, item.ID)
	var rec types.HistoryRecord
	if idx >= 0 {
		rec = records[idx]
	} else {
		rec = types.HistoryRecord{ID: newID(), TaskID: item.ID}
	}

	rec.PlanCode = item.PlanCode
	rec.Datacenter = item.Datacenter
	rec.Options = append([]string(nil), item.Options...)
	rec.AttemptCount = item.RetryCount
	rec.PurchaseTime = now

	if outcome.Succeeded() {
		orderID, orderURL := outcome.Result.OrderID, outcome.Result.OrderURL
		rec.Status = state.OutcomeSuccess
		rec.OrderID = &orderID
		rec.OrderURL = &orderURL
		rec.ErrorMessage = nil
	} else {
		msg := "unknown error"
		if outcome.Err != nil {
			msg = outcome.Err.Error()
		}
		rec.Status = state.OutcomeFailed
		rec.OrderID = nil
		rec.OrderURL = nil
		rec.ErrorMessage = &msg
	}

	if idx >= 0 {
		records[idx] = rec
	} else {
		records = append(records, rec)
	}
	return records, rec
}

// Find returns the index of the record for taskID, or -1.
func Find(records []types.HistoryRecord, taskID string) int {
	for i := range records {
		if records[i].TaskID == taskID {
			return i
		}
	}
	return -1
}
