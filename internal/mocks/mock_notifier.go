package mocks

import (
	"context"
	"sync"

	"github.com/lwhx/OVH/internal/notify"
)

// MockNotifier records every notification it is asked to send.
type MockNotifier struct {
	SendFunc func(ctx context.Context, n notify.Notification) bool

	mu   sync.Mutex
	sent []notify.Notification
}

func (m *MockNotifier) Send(ctx context.Context, n notify.Notification) bool {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, n)
	}
	return true
}

func (m *MockNotifier) Sent() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Notification(nil), m.sent...)
}
