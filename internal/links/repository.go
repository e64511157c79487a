package links

import "context"

// Repository stores link attributes. Implementations return ErrLinkNotFound for unknown ids
// and ErrOwnerNotFound when a link references an unregistered owner.
type Repository interface {
	Create(ctx context.Context, link *Link) error
	Get(ctx context.Context, id ID) (*Link, error)

	// Update applies patch atomically and returns the updated link.
	Update(ctx context.Context, id ID, patch Patch) (*Link, error)

	// Delete removes the link together with its whole click log.
	Delete(ctx context.Context, id ID) error

	List(ctx context.Context) ([]Link, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]Link, error)
}

// ClickLog is the append-only event log attached to each link.
type ClickLog interface {
	// Append adds event to the end of the link's log. It must be an add-to-collection
	// primitive: concurrent appends to the same link are all retained, and the cost does
	// not depend on the length of the log. A zero InsertedAt is stamped by the store.
	Append(ctx context.Context, id ID, event ClickEvent) error

	// ReadAll returns a snapshot of the log in arrival order.
	ReadAll(ctx context.Context, id ID) ([]ClickEvent, error)
}

// Owners is the minimal owner registry links reference.
type Owners interface {
	Register(ctx context.Context, owner OwnerID) error
	Exists(ctx context.Context, owner OwnerID) (bool, error)
}
