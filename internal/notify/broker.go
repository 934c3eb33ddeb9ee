package notify

import (
	"context"
	"encoding/json"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/message_broker"
)

// BrokerSink publishes notifications as JSON events.
type BrokerSink struct {
	publisher message_broker.Publisher
	logger    *logging.Logger
}

func NewBrokerSink(publisher message_broker.Publisher, logger *logging.Logger) *BrokerSink {
	return &BrokerSink{publisher: publisher, logger: logger}
}

func (b *BrokerSink) Send(ctx context.Context, n Notification) bool {
	log := b.logger.Source("notify").WithField("kind", n.Kind)
	body, err := json.Marshal(n)
	if err != nil {
		log.WithError(err).Error("could not encode event")
		return false
	}
	if err := b.publisher.Publish(ctx, body); err != nil {
		log.WithError(err).Error("could not publish event")
		return false
	}
	return true
}
