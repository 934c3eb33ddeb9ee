package mocks

import (
	"context"
	"sync"
)

// MockPublisher is a mock implementation of message_broker.Publisher for testing.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, message []byte) error
	CloseFunc   func() error

	mu       sync.Mutex
	messages [][]byte
}

func (m *MockPublisher) Publish(ctx context.Context, message []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, message); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockPublisher) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.messages...)
}
