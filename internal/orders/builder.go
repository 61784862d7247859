package orders

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
)

type ModifierInput struct {
	ModifierID string `json:"modifier_id"`
	Quantity   int    `json:"quantity"`
}

type ItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Modifiers []ModifierInput `json:"modifiers,omitempty"`
	Note      string          `json:"note,omitempty"`
}

type CreateOrderInput struct {
	Items     []ItemInput      `json:"items"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
	TableID   *string          `json:"table_id,omitempty"`
	SessionID *string          `json:"session_id,omitempty"`
	Note      string           `json:"note,omitempty"`
	// RequiresApproval marks self-service orders that enter the lifecycle
	// at PENDING_APPROVAL instead of PENDING.
	RequiresApproval bool `json:"-"`
}

// buildOrder prices the requested items against catalog snapshots and
// assembles the immutable order aggregate. It is pure: persistence, order
// numbers and stock are the service's concern.
func buildOrder(
	tenantID string,
	in CreateOrderInput,
	products map[string]models.Product,
	modifiers map[string]models.Modifier,
) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", apperr.ErrInvalidInput)
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))

	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalidInput)
		}

		product, ok := products[it.ProductID]
		if !ok || !product.IsAvailable {
			return nil, fmt.Errorf("%w: product %s is invalid or unavailable", apperr.ErrInvalidInput, it.ProductID)
		}

		itemID := uuid.NewString()
		modifierTotal := decimal.Zero
		itemMods := make([]models.OrderItemModifier, 0, len(it.Modifiers))

		for _, mi := range it.Modifiers {
			if mi.Quantity <= 0 {
				return nil, fmt.Errorf("%w: modifier quantity must be positive", apperr.ErrInvalidInput)
			}
			mod, ok := modifiers[mi.ModifierID]
			if !ok || !mod.IsAvailable {
				return nil, fmt.Errorf("%w: modifier %s is invalid or unavailable", apperr.ErrInvalidInput, mi.ModifierID)
			}
			modifierTotal = modifierTotal.Add(mod.PriceAdjustment.Mul(decimal.NewFromInt(int64(mi.Quantity))))
			itemMods = append(itemMods, models.OrderItemModifier{
				ID:              uuid.NewString(),
				OrderItemID:     itemID,
				ModifierID:      mod.ID,
				DisplayName:     mod.DisplayName,
				PriceAdjustment: mod.PriceAdjustment,
				Quantity:        mi.Quantity,
			})
		}

		lineTotal := product.Price.Add(modifierTotal).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.OrderItem{
			ID:            itemID,
			ProductID:     product.ID,
			Quantity:      it.Quantity,
			UnitPrice:     product.Price,
			ModifierTotal: modifierTotal,
			LineTotal:     lineTotal,
			Note:          it.Note,
			Modifiers:     itemMods,
		})
	}

	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", apperr.ErrInvalidInput)
	}
	if discount.GreaterThan(subtotal) {
		return nil, fmt.Errorf("%w: discount %s exceeds subtotal %s", apperr.ErrInvalidInput, discount, subtotal)
	}

	status := StatusPending
	if in.RequiresApproval {
		status = StatusPendingApproval
	}

	return &models.Order{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Status:      string(status),
		TableID:     in.TableID,
		SessionID:   in.SessionID,
		Subtotal:    subtotal,
		Discount:    discount,
		FinalAmount: subtotal.Sub(discount),
		Note:        in.Note,
		Items:       items,
	}, nil
}
