package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/serroba/link-clicks/internal/links"
)

type memoryLink struct {
	link   links.Link
	seq    uint64
	clicks []links.ClickEvent
}

// MemoryStore is an in-memory implementation of links.Repository, links.ClickLog and links.Owners.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[links.ID]*memoryLink
	owners map[links.OwnerID]struct{}
	seq    uint64
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[links.ID]*memoryLink),
		owners: make(map[links.OwnerID]struct{}),
	}
}

func (m *MemoryStore) Create(_ context.Context, link *links.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.owners[link.OwnerID]; !ok {
		return links.ErrOwnerNotFound
	}

	m.seq++
	m.links[link.ID] = &memoryLink{link: copyLink(*link), seq: m.seq}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, id links.ID) (*links.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.links[id]
	if !ok {
		return nil, links.ErrLinkNotFound
	}

	link := copyLink(rec.link)

	return &link, nil
}

func (m *MemoryStore) Update(_ context.Context, id links.ID, patch links.Patch) (*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.links[id]
	if !ok {
		return nil, links.ErrLinkNotFound
	}

	patch.Apply(&rec.link)
	link := copyLink(rec.link)

	return &link, nil
}

func (m *MemoryStore) Delete(_ context.Context, id links.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return links.ErrLinkNotFound
	}

	delete(m.links, id)

	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]links.Link, error) {
	return m.collect(func(*links.Link) bool { return true }), nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner links.OwnerID) ([]links.Link, error) {
	return m.collect(func(l *links.Link) bool { return l.OwnerID == owner }), nil
}

// collect returns matching links in creation order.
func (m *MemoryStore) collect(match func(*links.Link) bool) []links.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]*memoryLink, 0, len(m.links))

	for _, rec := range m.links {
		if match(&rec.link) {
			recs = append(recs, rec)
		}
	}

	slices.SortFunc(recs, func(a, b *memoryLink) int {
		return cmp.Compare(a.seq, b.seq)
	})

	result := make([]links.Link, 0, len(recs))
	for _, rec := range recs {
		result = append(result, copyLink(rec.link))
	}

	return result
}

// Append adds the event to the end of the link's log under the store lock.
func (m *MemoryStore) Append(_ context.Context, id links.ID, event links.ClickEvent) error {
	if event.InsertedAt.IsZero() {
		event.InsertedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.links[id]
	if !ok {
		return links.ErrLinkNotFound
	}

	rec.clicks = append(rec.clicks, event)

	return nil
}

func (m *MemoryStore) ReadAll(_ context.Context, id links.ID) ([]links.ClickEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.links[id]
	if !ok {
		return nil, links.ErrLinkNotFound
	}

	return append([]links.ClickEvent{}, rec.clicks...), nil
}

func (m *MemoryStore) Register(_ context.Context, owner links.OwnerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owners[owner] = struct{}{}

	return nil
}

func (m *MemoryStore) Exists(_ context.Context, owner links.OwnerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.owners[owner]

	return ok, nil
}

func copyLink(l links.Link) links.Link {
	l.TargetValues = append([]links.TargetValue{}, l.TargetValues...)
	l.Clicks = nil

	return l
}

// Compile-time checks.
var (
	_ links.Repository = (*MemoryStore)(nil)
	_ links.ClickLog   = (*MemoryStore)(nil)
	_ links.Owners     = (*MemoryStore)(nil)
)
