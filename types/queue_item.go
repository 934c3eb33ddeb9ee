package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/lwhx/OVH/internal/state"
)

// QueueItem is one watched purchase intent: buy PlanCode in Datacenter as soon
// as it is in stock, checking every RetryInterval seconds.
type QueueItem struct {
	ID            string            `json:"id"`
	PlanCode      string            `json:"planCode"`
	Datacenter    string            `json:"datacenter"`
	Options       []string          `json:"options"`
	Status        state.QueueStatus `json:"status"`
	RetryInterval int               `json:"retryInterval"`
	RetryCount    int               `json:"retryCount"`
	LastCheckTime int64             `json:"lastCheckTime"` // unix seconds, 0 = never attempted
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsDue reports whether a running item should be attempted at now.
func (q QueueItem) IsDue(now time.Time) bool {
	if q.Status != state.StatusRunning {
		return false
	}
	if q.LastCheckTime == 0 {
		return true
	}
	return now.Unix()-q.LastCheckTime >= int64(q.RetryInterval)
}

// Clone returns a copy that shares no memory with q.
func (q QueueItem) Clone() QueueItem {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// QueueItemRequest is what the operator submits to start watching a server.
type QueueItemRequest struct {
	PlanCode      string   `json:"planCode"`
	Datacenter    string   `json:"datacenter"`
	Options       []string `json:"options"`
	RetryInterval int      `json:"retryInterval"`
}

// Normalize trims the identifiers and drops blank options.
func (r *QueueItemRequest) Normalize() {
	r.PlanCode = strings.TrimSpace(r.PlanCode)
	r.Datacenter = strings.TrimSpace(r.Datacenter)
	options := make([]string, 0, len(r.Options))
	for _, o := range r.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	r.Options = options
}

func (r QueueItemRequest) Validate() []error {
	var errs []error
	if r.PlanCode == "" {
		errs = append(errs, fmt.Errorf("planCode is required"))
	}
	if r.Datacenter == "" {
		errs = append(errs, fmt.Errorf("datacenter is required"))
	}
	if r.RetryInterval < 0 {
		errs = append(errs, fmt.Errorf("retryInterval must not be negative"))
	}
	return errs
}
