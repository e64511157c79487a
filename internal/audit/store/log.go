package store

import (
	"context"

	"github.com/serroba/link-clicks/internal/audit"
	"go.uber.org/zap"
)

// Log is an audit.Store that writes every event to the structured log.
type Log struct {
	logger *zap.Logger
}

var _ audit.Store = (*Log)(nil)

// NewLog creates a log-backed audit store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("audit")}
}

func (l *Log) SaveLinkCreated(_ context.Context, event *audit.LinkCreatedEvent) error {
	l.logger.Info("link created",
		zap.String("linkId", event.LinkID),
		zap.String("userId", event.OwnerID),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("targetParamName", event.TargetParamName),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (l *Log) SaveLinkUpdated(_ context.Context, event *audit.LinkUpdatedEvent) error {
	l.logger.Info("link updated",
		zap.String("linkId", event.LinkID),
		zap.Strings("fields", event.Fields),
		zap.Time("updatedAt", event.UpdatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (l *Log) SaveLinkDeleted(_ context.Context, event *audit.LinkDeletedEvent) error {
	l.logger.Info("link deleted",
		zap.String("linkId", event.LinkID),
		zap.Time("deletedAt", event.DeletedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}
