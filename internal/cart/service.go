package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Service wraps a Store with the load-mutate-save cycle. A missing cart is
// treated as an empty one; cart operations themselves never fail on absent
// items.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, tenantID, sessionID string) (*Cart, error) {
	c, err := s.store.Get(ctx, tenantID, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return New(tenantID, sessionID, nil), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type AddItemParams struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
	Modifiers []Modifier
	Note      string
	TableID   *string
}

func (s *Service) AddItem(ctx context.Context, tenantID, sessionID string, p AddItemParams) (*Cart, error) {
	c, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if p.TableID != nil {
		c.TableID = p.TableID
	}
	c.AddItem(p.ProductID, p.UnitPrice, p.Quantity, p.Modifiers, p.Note)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, tenantID, sessionID, itemID string, quantity int) (*Cart, error) {
	c, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(itemID, quantity)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, tenantID, sessionID, itemID string) (*Cart, error) {
	c, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(itemID)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, tenantID, sessionID string) error {
	return s.store.Delete(ctx, tenantID, sessionID)
}
