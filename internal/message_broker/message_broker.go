package message_broker

import "context"

// Publisher delivers event payloads to a broker.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
	Close() error
}
