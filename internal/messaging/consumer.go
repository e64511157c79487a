package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

var errForeignTopic = errors.New("message published to another topic")

// Consumer decodes the messages of one topic into T and hands them to a Handler. A message is
// acked once the handler returns nil and nacked otherwise, so the subscriber redelivers it.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger

	stop    context.CancelFunc
	stopped chan struct{}
}

// NewConsumer creates a consumer for one topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		stopped:    make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx ends or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	c.stop = stop

	msgs, err := c.subscriber.Subscribe(runCtx, c.topic)
	if err != nil {
		stop()
		close(c.stopped)

		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}

	go c.run(runCtx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.stopped)

	for {
		var (
			msg *message.Message
			ok  bool
		)

		select {
		case <-ctx.Done():
			return
		case msg, ok = <-msgs:
		}

		if !ok {
			return
		}

		c.settle(msg, c.process(ctx, msg))
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) error {
	if published := msg.Metadata.Get(MetadataTopic); published != "" && published != c.topic {
		return fmt.Errorf("%w: %s", errForeignTopic, published)
	}

	event := new(T)
	if err := json.Unmarshal(msg.Payload, event); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	return c.handler(ctx, event)
}

// settle acks or nacks msg. Messages of another topic are acked and dropped.
func (c *Consumer[T]) settle(msg *message.Message, err error) {
	logger := c.logger.With(zap.String("messageId", msg.UUID))

	switch {
	case err == nil:
		msg.Ack()
		logger.Debug("processed event", zap.String("publishedAt", msg.Metadata.Get(MetadataPublishedAt)))
	case errors.Is(err, errForeignTopic):
		msg.Ack()
		logger.Warn("dropping message", zap.Error(err))
	default:
		msg.Nack()
		logger.Error("failed to process event", zap.Error(err))
	}
}

// Shutdown stops the consumer and waits for the in-flight message to complete.
func (c *Consumer[T]) Shutdown() error {
	if c.stop == nil {
		return nil
	}

	c.stop()
	<-c.stopped

	return nil
}
