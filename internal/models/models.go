package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tenant struct {
	ID        string    `gorm:"primaryKey;size:36"       json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null"     json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string `gorm:"primaryKey;size:36"             json:"id"`
	TenantID     string `gorm:"index;size:36;not null"         json:"tenant_id"`
	Username     string `gorm:"uniqueIndex;not null"           json:"username"`
	PasswordHash string `gorm:"not null"                       json:"-"`
	Role         string `gorm:"not null;default:staff"         json:"role"`
}

type Product struct {
	ID           string          `gorm:"primaryKey;size:36"       json:"id"`
	TenantID     string          `gorm:"index;size:36;not null"   json:"tenant_id"`
	Name         string          `gorm:"not null"                 json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)"       json:"price"`
	IsAvailable  bool            `gorm:"default:true"             json:"is_available"`
	StockTracked bool            `gorm:"default:false"            json:"stock_tracked"`
	CurrentStock int             `gorm:"default:0"                json:"current_stock"`
}

type Modifier struct {
	ID              string          `gorm:"primaryKey;size:36"       json:"id"`
	TenantID        string          `gorm:"index;size:36;not null"   json:"tenant_id"`
	DisplayName     string          `gorm:"not null"                 json:"display_name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2)"       json:"price_adjustment"`
	IsAvailable     bool            `gorm:"default:true"             json:"is_available"`
}

type DiningTable struct {
	ID       string `gorm:"primaryKey;size:36"       json:"id"`
	TenantID string `gorm:"index;size:36;not null"   json:"tenant_id"`
	Number   string `gorm:"not null"                 json:"number"`
	Section  string `json:"section"`
}

// StockMovement records every stock change so counts stay auditable.
type StockMovement struct {
	ID        string    `gorm:"primaryKey;size:36"       json:"id"`
	TenantID  string    `gorm:"index;size:36;not null"   json:"tenant_id"`
	ProductID string    `gorm:"index;size:36;not null"   json:"product_id"`
	Type      string    `gorm:"not null"                 json:"type"`
	Quantity  int       `gorm:"not null"                 json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID          string          `gorm:"primaryKey;size:36"                                        json:"id"`
	TenantID    string          `gorm:"size:36;not null;uniqueIndex:idx_orders_tenant_number"     json:"tenant_id"`
	OrderNumber string          `gorm:"not null;uniqueIndex:idx_orders_tenant_number"             json:"order_number"`
	Status      string          `gorm:"not null"                                                  json:"status"`
	TableID     *string         `gorm:"size:36"                                                   json:"table_id,omitempty"`
	SessionID   *string         `gorm:"size:36"                                                   json:"session_id,omitempty"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2)"                                        json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2)"                                        json:"discount"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(12,2)"                                        json:"final_amount"`
	Note        string          `json:"note"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"                                        json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID            string              `gorm:"primaryKey;size:36"       json:"id"`
	OrderID       string              `gorm:"index;size:36;not null"   json:"order_id"`
	ProductID     string              `gorm:"size:36;not null"         json:"product_id"`
	Quantity      int                 `gorm:"not null"                 json:"quantity"`
	UnitPrice     decimal.Decimal     `gorm:"type:decimal(12,2)"       json:"unit_price"`
	ModifierTotal decimal.Decimal     `gorm:"type:decimal(12,2)"       json:"modifier_total"`
	LineTotal     decimal.Decimal     `gorm:"type:decimal(12,2)"       json:"line_total"`
	Note          string              `json:"note"`
	Modifiers     []OrderItemModifier `gorm:"foreignKey:OrderItemID"   json:"modifiers"`
}

// OrderItemModifier is a snapshot: the adjustment is copied from the catalog
// at order time so later menu edits never change a priced order.
type OrderItemModifier struct {
	ID              string          `gorm:"primaryKey;size:36"       json:"id"`
	OrderItemID     string          `gorm:"index;size:36;not null"   json:"order_item_id"`
	ModifierID      string          `gorm:"size:36;not null"         json:"modifier_id"`
	DisplayName     string          `json:"display_name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2)"       json:"price_adjustment"`
	Quantity        int             `gorm:"not null"                 json:"quantity"`
}

type Payment struct {
	ID            string          `gorm:"primaryKey;size:36"       json:"id"`
	OrderID       string          `gorm:"index;size:36;not null"   json:"order_id"`
	TenantID      string          `gorm:"index;size:36;not null"   json:"tenant_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)"       json:"amount"`
	Method        string          `gorm:"not null"                 json:"method"`
	Status        string          `gorm:"not null"                 json:"status"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
