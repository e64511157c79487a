package audit

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/link-clicks/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers returns one consumer per lifecycle topic, all writing to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicLinkUpdated, store.SaveLinkUpdated, logger),
		messaging.NewConsumer(subscriber, TopicLinkDeleted, store.SaveLinkDeleted, logger),
	}
}
