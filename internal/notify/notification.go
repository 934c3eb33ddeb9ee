package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lwhx/OVH/types"
)

type Kind string

const (
	KindPurchaseSuccess Kind = "purchase.success"
	KindTest            Kind = "notify.test"
)

// Notification is a best-effort message to the operator. Purchase is set
// for purchase events so structured sinks can forward the details.
type Notification struct {
	Kind     Kind           `json:"kind"`
	Text     string         `json:"text"`
	Purchase *PurchaseEvent `json:"purchase,omitempty"`
	SentAt   time.Time      `json:"sentAt"`
}

type PurchaseEvent struct {
	TaskID       string   `json:"taskId"`
	PlanCode     string   `json:"planCode"`
	Datacenter   string   `json:"datacenter"`
	OrderID      string   `json:"orderId"`
	OrderURL     string   `json:"orderUrl"`
	Options      []string `json:"options"`
	AttemptCount int      `json:"attemptCount"`
}

// Notifier delivers a notification. Send reports whether delivery worked;
// a failure never affects the caller's outcome.
type Notifier interface {
	Send(ctx context.Context, n Notification) bool
}

// PurchaseSucceeded builds the message sent when an order was placed.
func PurchaseSucceeded(item types.QueueItem, result types.PurchaseResult, now time.Time) Notification {
	var b strings.Builder
	b.WriteString("OVH server purchase succeeded!\n\n")
	fmt.Fprintf(&b, "Plan code: %s\n", item.PlanCode)
	fmt.Fprintf(&b, "Datacenter: %s\n", item.Datacenter)
	fmt.Fprintf(&b, "Order ID: %s\n", result.OrderID)
	fmt.Fprintf(&b, "Order URL: %s\n", result.OrderURL)
	if len(result.Options) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(result.Options, ", "))
	}
	fmt.Fprintf(&b, "\nTask ID: %s", item.ID)

	return Notification{
		Kind: KindPurchaseSuccess,
		Text: b.String(),
		Purchase: &PurchaseEvent{
			TaskID:       item.ID,
			PlanCode:     item.PlanCode,
			Datacenter:   item.Datacenter,
			OrderID:      result.OrderID,
			OrderURL:     result.OrderURL,
			Options:      append([]string(nil), result.Options...),
			AttemptCount: item.RetryCount,
		},
		SentAt: now,
	}
}

// TestMessage confirms a newly configured Telegram target.
func TestMessage(now time.Time) Notification {
	return Notification{
		Kind:   KindTest,
		Text:   "OVH sniper: Telegram notifications are configured.",
		SentAt: now,
	}
}

// Multi fans a notification out to every sink. It succeeds if any sink did.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, n Notification) bool {
	ok := false
	for _, sink := range m {
		if sink.Send(ctx, n) {
			ok = true
		}
	}
	return ok
}
