package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
	"github.com/ekaraca/restaurant_pos/internal/repo"
)

type Service struct {
	DB      *gorm.DB
	Orders  *repo.OrderRepo
	Catalog *repo.ProductRepo
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:      db,
		Orders:  repo.NewOrderRepo(db),
		Catalog: repo.NewProductRepo(db),
	}
}

// Create builds a priced order from the input and persists it atomically:
// order, items, modifier snapshots and stock deduction all commit together
// or not at all.
func (s *Service) Create(ctx context.Context, tenantID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", apperr.ErrInvalidInput)
	}

	productIDs := make([]string, 0, len(in.Items))
	var modifierIDs []string
	for _, it := range in.Items {
		productIDs = append(productIDs, it.ProductID)
		for _, m := range it.Modifiers {
			modifierIDs = append(modifierIDs, m.ModifierID)
		}
	}

	productRows, err := s.Catalog.FindByIDs(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	products := make(map[string]models.Product, len(productRows))
	for _, p := range productRows {
		products[p.ID] = p
	}

	modifierRows, err := s.Catalog.FindModifiersByIDs(ctx, tenantID, modifierIDs)
	if err != nil {
		return nil, err
	}
	modifiers := make(map[string]models.Modifier, len(modifierRows))
	for _, m := range modifierRows {
		modifiers[m.ID] = m
	}

	order, err := buildOrder(tenantID, in, products, modifiers)
	if err != nil {
		return nil, err
	}

	if in.TableID != nil {
		if _, err := s.Catalog.FindTable(ctx, tenantID, *in.TableID); err != nil {
			return nil, err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.nextOrderNumber(tx, tenantID)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		for _, item := range order.Items {
			product := products[item.ProductID]
			if !product.StockTracked {
				continue
			}
			rows, err := s.Catalog.DecrementStock(tx, tenantID, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("%w: insufficient stock for product %s", apperr.ErrInvalidState, product.Name)
			}
			if err := s.Catalog.CreateStockMovement(tx, &models.StockMovement{
				ID:        uuid.NewString(),
				TenantID:  tenantID,
				ProductID: product.ID,
				Type:      "OUT",
				Quantity:  item.Quantity,
				Reason:    "Order " + number,
			}); err != nil {
				return err
			}
		}

		return s.Orders.Create(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// nextOrderNumber allocates the tenant's next ORD-YYYYMMDD-NNNN number,
// restarting the sequence each day. Called inside the creation transaction;
// the composite unique index backs it up under concurrency.
func (s *Service) nextOrderNumber(tx *gorm.DB, tenantID string) (string, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	last, err := s.Orders.LastOrderNumber(tx, tenantID, dayStart)
	if err != nil {
		return "", err
	}

	sequence := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			sequence = n + 1
		}
	}

	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), sequence), nil
}

func (s *Service) Get(ctx context.Context, tenantID, orderID string) (*models.Order, error) {
	return s.Orders.GetByID(ctx, tenantID, orderID)
}

func (s *Service) List(ctx context.Context, tenantID string, f repo.OrderFilter) ([]models.Order, error) {
	return s.Orders.List(ctx, tenantID, f)
}

// UpdateStatus performs one lifecycle transition. The flip is a guarded
// update inside a transaction, so of two racing callers exactly one wins and
// the loser sees the refreshed state as an invalid transition.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, orderID string, to Status) (*models.Order, error) {
	var updated *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.Orders.GetByIDTx(tx, tenantID, orderID)
		if err != nil {
			return err
		}

		from := Status(order.Status)
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: cannot move order from %s to %s", apperr.ErrInvalidTransition, from, to)
		}

		rows, err := s.Orders.UpdateStatusGuard(tx, tenantID, orderID, string(from), string(to))
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: order status changed concurrently", apperr.ErrInvalidTransition)
		}

		updated, err = s.Orders.GetByIDTx(tx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Approve releases a self-service order to the kitchen.
func (s *Service) Approve(ctx context.Context, tenantID, orderID string) (*models.Order, error) {
	return s.UpdateStatus(ctx, tenantID, orderID, StatusPending)
}

// Cancel aborts an order. Paid orders are settled money and must go through
// refund instead, so cancelling them is rejected outright.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID string) (*models.Order, error) {
	order, err := s.Orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if Status(order.Status) == StatusPaid {
		return nil, fmt.Errorf("%w: order is already paid", apperr.ErrInvalidState)
	}
	return s.UpdateStatus(ctx, tenantID, orderID, StatusCancelled)
}

// UpdateDiscount changes the discount of a not-yet-paid order. Items and
// subtotal stay frozen; only discount and the derived final amount move.
func (s *Service) UpdateDiscount(ctx context.Context, tenantID, orderID string, discount decimal.Decimal) (*models.Order, error) {
	var updated *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.Orders.GetByIDTx(tx, tenantID, orderID)
		if err != nil {
			return err
		}

		status := Status(order.Status)
		if status == StatusPaid || status == StatusCancelled {
			return fmt.Errorf("%w: cannot change discount of a %s order", apperr.ErrInvalidState, strings.ToLower(string(status)))
		}
		if discount.IsNegative() {
			return fmt.Errorf("%w: discount cannot be negative", apperr.ErrInvalidInput)
		}
		if discount.GreaterThan(order.Subtotal) {
			return fmt.Errorf("%w: discount %s exceeds subtotal %s", apperr.ErrInvalidInput, discount, order.Subtotal)
		}

		rows, err := s.Orders.UpdateDiscountGuard(tx, tenantID, orderID, string(status), discount, order.Subtotal.Sub(discount))
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: order changed concurrently", apperr.ErrInvalidState)
		}

		updated, err = s.Orders.GetByIDTx(tx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
