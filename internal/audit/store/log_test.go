package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/link-clicks/internal/audit"
	"github.com/serroba/link-clicks/internal/audit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLog() (*store.Log, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)

	return store.NewLog(zap.New(core)), logs
}

func TestLog_SaveLinkCreated(t *testing.T) {
	log, logs := newObservedLog()

	err := log.SaveLinkCreated(context.Background(), &audit.LinkCreatedEvent{
		LinkID:          "abc123",
		OwnerID:         "owner-1",
		OriginalURL:     "https://example.com",
		TargetParamName: "src",
		CreatedAt:       time.Now(),
		ClientIP:        "127.0.0.1",
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "link created", entry.Message)
	assert.Equal(t, "audit", entry.LoggerName)
	assert.Equal(t, "abc123", entry.ContextMap()["linkId"])
	assert.Equal(t, "owner-1", entry.ContextMap()["userId"])
}

func TestLog_SaveLinkUpdated(t *testing.T) {
	log, logs := newObservedLog()

	err := log.SaveLinkUpdated(context.Background(), &audit.LinkUpdatedEvent{
		LinkID:    "abc123",
		Fields:    []string{"originalUrl"},
		UpdatedAt: time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("link updated").Len())
}

func TestLog_SaveLinkDeleted(t *testing.T) {
	log, logs := newObservedLog()

	err := log.SaveLinkDeleted(context.Background(), &audit.LinkDeletedEvent{
		LinkID:    "abc123",
		DeletedAt: time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterField(zap.String("linkId", "abc123")).Len())
}
