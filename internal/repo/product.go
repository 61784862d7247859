package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
)

// ProductRepo is the order engine's view of the menu catalog: price lookup,
// availability, and stock movements. Menu CRUD itself lives elsewhere.
type ProductRepo struct {
	DB *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{DB: db}
}

func (r *ProductRepo) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Where("id IN ? AND tenant_id = ?", ids, tenantID).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) FindModifiersByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var modifiers []models.Modifier
	err := r.DB.WithContext(ctx).
		Where("id IN ? AND tenant_id = ?", ids, tenantID).
		Find(&modifiers).Error
	if err != nil {
		return nil, fmt.Errorf("find modifiers: %w", err)
	}
	return modifiers, nil
}

func (r *ProductRepo) FindTable(ctx context.Context, tenantID, id string) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.DB.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: table %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	return &table, nil
}

// DecrementStock subtracts quantity from a tracked product, guarded so the
// count can never go negative. Zero rows affected means insufficient stock.
func (r *ProductRepo) DecrementStock(tx *gorm.DB, tenantID, productID string, quantity int) (int64, error) {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND tenant_id = ? AND stock_tracked AND current_stock >= ?", productID, tenantID, quantity).
		Updates(map[string]interface{}{
			"current_stock": gorm.Expr("current_stock - ?", quantity),
			"is_available":  gorm.Expr("current_stock - ? > 0", quantity),
		})
	return res.RowsAffected, res.Error
}

func (r *ProductRepo) CreateStockMovement(tx *gorm.DB, movement *models.StockMovement) error {
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}
