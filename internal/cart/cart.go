// Package cart implements the session-scoped working cart that feeds order
// creation. A cart belongs to exactly one (tenant, session) pair and is only
// ever mutated through the operations below, so no locking is needed inside
// the aggregate itself.
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Modifier struct {
	ModifierID      string          `json:"modifier_id"`
	DisplayName     string          `json:"display_name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Quantity        int             `json:"quantity"`
}

type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Note      string          `json:"note,omitempty"`
	Modifiers []Modifier      `json:"modifiers,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Cart struct {
	TenantID  string     `json:"tenant_id"`
	SessionID string     `json:"session_id"`
	TableID   *string    `json:"table_id,omitempty"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func New(tenantID, sessionID string, tableID *string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		TenantID:  tenantID,
		SessionID: sessionID,
		TableID:   tableID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func lineTotal(unitPrice decimal.Decimal, modifiers []Modifier, quantity int) decimal.Decimal {
	perUnit := unitPrice
	for _, m := range modifiers {
		perUnit = perUnit.Add(m.PriceAdjustment.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}
	return perUnit.Mul(decimal.NewFromInt(int64(quantity)))
}

// modifierCounts collapses a modifier list into id -> total quantity, which
// is the multiset equality the merge rule is defined over.
func modifierCounts(modifiers []Modifier) map[string]int {
	counts := make(map[string]int, len(modifiers))
	for _, m := range modifiers {
		counts[m.ModifierID] += m.Quantity
	}
	return counts
}

func sameSelection(item LineItem, productID, note string, modifiers []Modifier) bool {
	if item.ProductID != productID || item.Note != note {
		return false
	}
	a, b := modifierCounts(item.Modifiers), modifierCounts(modifiers)
	if len(a) != len(b) {
		return false
	}
	for id, qty := range a {
		if b[id] != qty {
			return false
		}
	}
	return true
}

// AddItem merges into an equivalent line item when one exists, otherwise
// appends a new one. A non-positive quantity is bumped to 1.
func (c *Cart) AddItem(productID string, unitPrice decimal.Decimal, quantity int, modifiers []Modifier, note string) *LineItem {
	if quantity < 1 {
		quantity = 1
	}

	for i := range c.Items {
		if sameSelection(c.Items[i], productID, note, modifiers) {
			c.Items[i].Quantity += quantity
			c.Items[i].LineTotal = lineTotal(c.Items[i].UnitPrice, c.Items[i].Modifiers, c.Items[i].Quantity)
			c.touch()
			return &c.Items[i]
		}
	}

	item := LineItem{
		ID:        uuid.NewString(),
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Note:      note,
		Modifiers: modifiers,
		LineTotal: lineTotal(unitPrice, modifiers, quantity),
	}
	c.Items = append(c.Items, item)
	c.touch()
	return &c.Items[len(c.Items)-1]
}

// UpdateQuantity sets the quantity of an item, removing it when the new
// quantity is zero or negative. Unknown ids are a no-op.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.Items[i].LineTotal = lineTotal(c.Items[i].UnitPrice, c.Items[i].Modifiers, quantity)
			c.touch()
			return
		}
	}
}

func (c *Cart) RemoveItem(itemID string) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
	c.touch()
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal)
	}
	return sum
}

// Total equals Subtotal: discounts are applied at order creation, never in
// the cart.
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
