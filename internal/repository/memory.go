package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/marketbay/auction-engine/internal/domain"
)

// MemoryStore keeps auction records in process memory. It backs unit
// tests and standalone runs; the interface contract (copies in, copies
// out) matches the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*domain.Auction
	offerIdx map[uuid.UUID]uuid.UUID // offer id -> auction id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[uuid.UUID]*domain.Auction),
		offerIdx: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *MemoryStore) Create(ctx context.Context, a *domain.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(a)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemoryStore) GetByOffer(ctx context.Context, offerID uuid.UUID) (*domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	auctionID, ok := m.offerIdx[offerID]
	if !ok {
		return nil, ErrNotFound
	}
	a, ok := m.auctions[auctionID]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, a *domain.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.auctions[a.ID]; !ok {
		return ErrNotFound
	}
	m.put(a)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f Filter) ([]*domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Auction
	for _, a := range m.auctions {
		if f.Match(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryStore) Close(ctx context.Context) error { return nil }

// put stores a private copy and refreshes the offer index. Caller
// holds the write lock.
func (m *MemoryStore) put(a *domain.Auction) {
	cp := a.Clone()
	m.auctions[cp.ID] = cp
	for i := range cp.Offers {
		m.offerIdx[cp.Offers[i].ID] = cp.ID
	}
}
