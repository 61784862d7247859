package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
)

type PaymentRepo struct {
	DB *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{DB: db}
}

func (r *PaymentRepo) Create(tx *gorm.DB, payment *models.Payment) error {
	if err := tx.Create(payment).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Payment, error) {
	return getPayment(r.DB.WithContext(ctx), tenantID, id)
}

func (r *PaymentRepo) GetByIDTx(tx *gorm.DB, tenantID, id string) (*models.Payment, error) {
	return getPayment(tx, tenantID, id)
}

func getPayment(db *gorm.DB, tenantID, id string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payment %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &payment, nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, tenantID, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepo) UpdateStatusGuard(tx *gorm.DB, tenantID, paymentID, from, to string) (int64, error) {
	res := tx.Model(&models.Payment{}).
		Where("id = ? AND tenant_id = ? AND status = ?", paymentID, tenantID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
