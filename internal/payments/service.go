// Package payments reconciles money captured against orders: a completed
// payment and the order's flip to PAID are one atomic event, and the amount
// must equal the order's final amount exactly.
package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
	"github.com/ekaraca/restaurant_pos/internal/orders"
	"github.com/ekaraca/restaurant_pos/internal/repo"
)

const (
	StatusCompleted = "COMPLETED"
	StatusRefunded  = "REFUNDED"
)

type Service struct {
	DB       *gorm.DB
	Orders   *repo.OrderRepo
	Payments *repo.PaymentRepo
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:       db,
		Orders:   repo.NewOrderRepo(db),
		Payments: repo.NewPaymentRepo(db),
	}
}

// Process captures a payment for an order. The payment row and the order's
// transition to PAID commit in one transaction; the guarded status update
// makes sure that of two concurrent captures only one succeeds and the other
// fails as already paid.
func (s *Service) Process(ctx context.Context, tenantID, orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", apperr.ErrInvalidInput)
	}

	var payment *models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.Orders.GetByIDTx(tx, tenantID, orderID)
		if err != nil {
			return err
		}

		switch orders.Status(order.Status) {
		case orders.StatusPaid:
			return fmt.Errorf("%w: order is already paid", apperr.ErrInvalidState)
		case orders.StatusCancelled:
			return fmt.Errorf("%w: cannot pay for a cancelled order", apperr.ErrInvalidState)
		}

		if !amount.Equal(order.FinalAmount) {
			return fmt.Errorf("%w: payment %s does not match order amount %s", apperr.ErrAmountMismatch, amount, order.FinalAmount)
		}

		payment = &models.Payment{
			ID:       uuid.NewString(),
			OrderID:  order.ID,
			TenantID: tenantID,
			Amount:   amount,
			Method:   method,
			Status:   StatusCompleted,
		}
		if err := s.Payments.Create(tx, payment); err != nil {
			return err
		}

		rows, err := s.Orders.UpdateStatusGuard(tx, tenantID, orderID, order.Status, string(orders.StatusPaid))
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race to a concurrent capture; roll everything back.
			return fmt.Errorf("%w: order is already paid", apperr.ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund marks a completed payment as refunded. The order deliberately stays
// PAID: a refund is a financial event, it does not reopen the order's
// operational lifecycle.
func (s *Service) Refund(ctx context.Context, tenantID, paymentID string) (*models.Payment, error) {
	var refunded *models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.Payments.GetByIDTx(tx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == StatusRefunded {
			return fmt.Errorf("%w: payment is already refunded", apperr.ErrInvalidState)
		}

		rows, err := s.Payments.UpdateStatusGuard(tx, tenantID, paymentID, StatusCompleted, StatusRefunded)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: payment is already refunded", apperr.ErrInvalidState)
		}

		refunded, err = s.Payments.GetByIDTx(tx, tenantID, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// ListByOrder returns the order's payments oldest first. The order lookup
// doubles as the tenant check.
func (s *Service) ListByOrder(ctx context.Context, tenantID, orderID string) ([]models.Payment, error) {
	if _, err := s.Orders.GetByID(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.Payments.ListByOrder(ctx, tenantID, orderID)
}
