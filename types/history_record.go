package types

import (
	"time"

	"github.com/lwhx/OVH/internal/state"
)

// HistoryRecord is the latest terminal outcome of one queue item.
// OrderID and OrderURL are set only on success, ErrorMessage only on failure.
type HistoryRecord struct {
	ID           string              `json:"id"`
	TaskID       string              `json:"taskId"`
	PlanCode     string              `json:"planCode"`
	Datacenter   string              `json:"datacenter"`
	Options      []string            `json:"options"`
	Status       state.OutcomeStatus `json:"status"`
	OrderID      *string             `json:"orderId"`
	OrderURL     *string             `json:"orderUrl"`
	ErrorMessage *string             `json:"errorMessage"`
	AttemptCount int                 `json:"attemptCount"`
	PurchaseTime time.Time           `json:"purchaseTime"`
}

func (h HistoryRecord) Clone() HistoryRecord {
	if h.Options != nil {
		h.Options = append([]string(nil), h.Options...)
	}
	h.OrderID = cloneString(h.OrderID)
	h.OrderURL = cloneString(h.OrderURL)
	h.ErrorMessage = cloneString(h.ErrorMessage)
	return h
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
