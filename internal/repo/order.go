// Package repo contains the gorm repositories. Every query is scoped by
// tenant id; a row owned by another tenant is reported as ErrNotFound, the
// same as a missing row.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
)

type OrderRepo struct {
	DB *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{DB: db}
}

func (r *OrderRepo) Create(tx *gorm.DB, order *models.Order) error {
	if err := tx.Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Order, error) {
	return getOrder(r.DB.WithContext(ctx), tenantID, id)
}

// GetByIDTx reads the order inside an open transaction so status checks and
// the guarded update that follows see the same row.
func (r *OrderRepo) GetByIDTx(tx *gorm.DB, tenantID, id string) (*models.Order, error) {
	return getOrder(tx, tenantID, id)
}

func getOrder(db *gorm.DB, tenantID, id string) (*models.Order, error) {
	var order models.Order
	err := db.
		Preload("Items").
		Preload("Items.Modifiers").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

type OrderFilter struct {
	Statuses []string
	TableID  *string
	From     *time.Time
	To       *time.Time
}

func (r *OrderRepo) List(ctx context.Context, tenantID string, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Items.Modifiers").
		Where("tenant_id = ?", tenantID)

	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.TableID != nil {
		q = q.Where("table_id = ?", *f.TableID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// LastOrderNumber returns the highest order number the tenant has been
// assigned since the given instant, or "" when there is none.
func (r *OrderRepo) LastOrderNumber(tx *gorm.DB, tenantID string, since time.Time) (string, error) {
	var order models.Order
	err := tx.
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Order("order_number DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last order number: %w", err)
	}
	return order.OrderNumber, nil
}

// UpdateStatusGuard flips the status only when the row still holds the
// expected one. Zero rows affected means a concurrent writer got there
// first, or the caller's view was stale; either way the flip did not happen.
func (r *OrderRepo) UpdateStatusGuard(tx *gorm.DB, tenantID, orderID, from, to string) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", orderID, tenantID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// UpdateDiscountGuard rewrites discount and final amount while the order is
// still in the expected (unpaid) status.
func (r *OrderRepo) UpdateDiscountGuard(tx *gorm.DB, tenantID, orderID, fromStatus string, discount, finalAmount decimal.Decimal) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", orderID, tenantID, fromStatus).
		Updates(map[string]interface{}{
			"discount":     discount,
			"final_amount": finalAmount,
		})
	return res.RowsAffected, res.Error
}
