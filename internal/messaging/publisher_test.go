package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/link-clicks/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type publishTestEvent struct {
	LinkID string `json:"linkId"`
	URL    string `json:"url"`
}

type ctxKey struct{}

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes event with metadata", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[publishTestEvent](mock, "link.created")

		err := publish(context.Background(), &publishTestEvent{LinkID: "abc", URL: "https://example.com"})

		require.NoError(t, err)
		assert.Equal(t, "link.created", mock.topic)
		require.Len(t, mock.messages, 1)

		msg := mock.messages[0]
		assert.JSONEq(t, `{"linkId":"abc","url":"https://example.com"}`, string(msg.Payload))
		assert.Equal(t, "link.created", msg.Metadata.Get(messaging.MetadataTopic))
		assert.NotEmpty(t, msg.Metadata.Get(messaging.MetadataPublishedAt))
		assert.NotEmpty(t, msg.UUID)
	})

	t.Run("attaches the caller context", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[publishTestEvent](mock, "link.created")
		ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")

		require.NoError(t, publish(ctx, &publishTestEvent{LinkID: "abc"}))

		assert.Equal(t, "request-1", mock.messages[0].Context().Value(ctxKey{}))
	})

	t.Run("returns error when publish fails", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[publishTestEvent](mock, "link.created")

		err := publish(context.Background(), &publishTestEvent{LinkID: "abc"})

		assert.Error(t, err)
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("returns underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("closes publisher on shutdown", func(t *testing.T) {
		group := messaging.NewPublisherGroup(&mockPublisher{})

		require.NoError(t, group.Shutdown())
	})

	t.Run("returns error when close fails", func(t *testing.T) {
		group := messaging.NewPublisherGroup(&mockPublisher{closeErr: errors.New("close error")})

		assert.Error(t, group.Shutdown())
	})
}
