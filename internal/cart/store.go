package cart

import (
	"context"
	"errors"
	"sync"
)

var ErrCartNotFound = errors.New("cart not found")

// Store persists session carts. Keys always include the tenant so one
// tenant's sessions can never read another's carts.
type Store interface {
	Get(ctx context.Context, tenantID, sessionID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, tenantID, sessionID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func storeKey(tenantID, sessionID string) string {
	return tenantID + ":" + sessionID
}

func (s *MemoryStore) Get(_ context.Context, tenantID, sessionID string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[storeKey(tenantID, sessionID)]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	s.carts[storeKey(c.TenantID, c.SessionID)] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, storeKey(tenantID, sessionID))
	return nil
}
