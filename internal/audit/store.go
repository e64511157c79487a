package audit

import "context"

// Store persists link lifecycle events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkUpdated(ctx context.Context, event *LinkUpdatedEvent) error
	SaveLinkDeleted(ctx context.Context, event *LinkDeletedEvent) error
}
