package orders

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/models"
	"github.com/ekaraca/restaurant_pos/internal/repo"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Modifier{}, &models.DiningTable{},
		&models.StockMovement{}, &models.Order{}, &models.OrderItem{},
		&models.OrderItemModifier{}, &models.Payment{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        name,
		Price:       d(price),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedTrackedProduct(t *testing.T, db *gorm.DB, tenantID, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Name:         name,
		Price:        d(price),
		IsAvailable:  true,
		StockTracked: true,
		CurrentStock: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedModifier(t *testing.T, db *gorm.DB, tenantID, name, adjustment string) models.Modifier {
	t.Helper()
	m := models.Modifier{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		DisplayName:     name,
		PriceAdjustment: d(adjustment),
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func TestCreate_PricesItemsAndTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	burger := seedProduct(t, db, "tenant-1", "Burger", "100.00")
	cheese := seedModifier(t, db, "tenant-1", "Extra cheese", "5.00")
	discount := d("20.00")

	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items: []ItemInput{{
			ProductID: burger.ID,
			Quantity:  2,
			Modifiers: []ModifierInput{{ModifierID: cheese.ID, Quantity: 2}},
			Note:      "well done",
		}},
		Discount: &discount,
	})
	require.NoError(t, err)

	// (100 + 5*2) * 2 = 220, minus 20 discount.
	assert.Equal(t, string(StatusPending), order.Status)
	assert.True(t, order.Subtotal.Equal(d("220.00")), "subtotal = %s", order.Subtotal)
	assert.True(t, order.Discount.Equal(d("20.00")))
	assert.True(t, order.FinalAmount.Equal(d("200.00")), "final = %s", order.FinalAmount)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, item.UnitPrice.Equal(d("100.00")))
	assert.True(t, item.ModifierTotal.Equal(d("10.00")))
	assert.True(t, item.LineTotal.Equal(d("220.00")))
	assert.Equal(t, "well done", item.Note)

	require.Len(t, item.Modifiers, 1)
	assert.Equal(t, cheese.ID, item.Modifiers[0].ModifierID)
	assert.True(t, item.Modifiers[0].PriceAdjustment.Equal(d("5.00")))

	loaded, err := svc.Get(ctx, "tenant-1", order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.Len(t, loaded.Items[0].Modifiers, 1)
	assert.True(t, loaded.FinalAmount.Equal(d("200.00")))
}

func TestCreate_SelfServiceEntersPendingApproval(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	session := "session-1"

	order, err := svc.Create(context.Background(), "tenant-1", CreateOrderInput{
		Items:            []ItemInput{{ProductID: p.ID, Quantity: 1}},
		SessionID:        &session,
		RequiresApproval: true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusPendingApproval), order.Status)
	require.NotNil(t, order.SessionID)
	assert.Equal(t, "session-1", *order.SessionID)
}

func TestCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	hidden := seedProduct(t, db, "tenant-1", "Off menu", "9.00")
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).
		Update("is_available", false).Error)

	_, err := svc.Create(ctx, "tenant-1", CreateOrderInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: p.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: "missing", Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: hidden.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput, "unavailable product must be rejected")

	negative := d("-1.00")
	_, err = svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items:    []ItemInput{{ProductID: p.ID, Quantity: 1}},
		Discount: &negative,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	tooBig := d("100.00")
	_, err = svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items:    []ItemInput{{ProductID: p.ID, Quantity: 1}},
		Discount: &tooBig,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreate_ForeignTenantProductInvisible(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")

	_, err := svc.Create(context.Background(), "tenant-2", CreateOrderInput{
		Items: []ItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreate_UnknownTableRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	tableID := "no-such-table"

	_, err := svc.Create(context.Background(), "tenant-1", CreateOrderInput{
		Items:   []ItemInput{{ProductID: p.ID, Quantity: 1}},
		TableID: &tableID,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_DeductsTrackedStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedTrackedProduct(t, db, "tenant-1", "Cake slice", "6.00", 5)

	_, err := svc.Create(context.Background(), "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	var after models.Product
	require.NoError(t, db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, 2, after.CurrentStock)
	assert.True(t, after.IsAvailable)

	var movements []models.StockMovement
	require.NoError(t, db.Find(&movements, "product_id = ?", p.ID).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, "OUT", movements[0].Type)
	assert.Equal(t, 3, movements[0].Quantity)
}

func TestCreate_LastUnitMarksUnavailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedTrackedProduct(t, db, "tenant-1", "Cake slice", "6.00", 2)

	_, err := svc.Create(context.Background(), "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	var after models.Product
	require.NoError(t, db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, 0, after.CurrentStock)
	assert.False(t, after.IsAvailable)
}

func TestCreate_InsufficientStockRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	tea := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	cake := seedTrackedProduct(t, db, "tenant-1", "Cake slice", "6.00", 1)

	_, err := svc.Create(context.Background(), "tenant-1", CreateOrderInput{
		Items: []ItemInput{
			{ProductID: tea.ID, Quantity: 1},
			{ProductID: cake.ID, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	var orderCount, movementCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, movementCount)

	var after models.Product
	require.NoError(t, db.First(&after, "id = ?", cake.ID).Error)
	assert.Equal(t, 1, after.CurrentStock, "stock must be untouched after rollback")
}

func TestCreate_OrderNumbersSequencePerTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p1 := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	p2 := seedProduct(t, db, "tenant-2", "Coffee", "4.00")

	first, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p1.ID, Quantity: 1}}})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p1.ID, Quantity: 1}}})
	require.NoError(t, err)
	other, err := svc.Create(ctx, "tenant-2", CreateOrderInput{Items: []ItemInput{{ProductID: p2.ID, Quantity: 1}}})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{8}-0001$`, first.OrderNumber)
	assert.Regexp(t, `^ORD-\d{8}-0002$`, second.OrderNumber)
	assert.Regexp(t, `^ORD-\d{8}-0001$`, other.OrderNumber, "sequences are per tenant")
}

func TestGet_ForeignTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "tenant-2", order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, "tenant-2", order.ID, StatusPreparing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Cancel(ctx, "tenant-2", order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_FiltersByStatusAndTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	table := models.DiningTable{ID: uuid.NewString(), TenantID: "tenant-1", Number: "4"}
	require.NoError(t, db.Create(&table).Error)

	atTable, err := svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items:   []ItemInput{{ProductID: p.ID, Quantity: 1}},
		TableID: &table.ID,
	})
	require.NoError(t, err)
	walkIn, err := svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items: []ItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, "tenant-1", walkIn.ID, StatusPreparing)
	require.NoError(t, err)

	list, err := svc.List(ctx, "tenant-1", repo.OrderFilter{Statuses: []string{string(StatusPreparing)}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, walkIn.ID, list[0].ID)

	list, err = svc.List(ctx, "tenant-1", repo.OrderFilter{TableID: &table.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, atTable.ID, list[0].ID)

	list, err = svc.List(ctx, "tenant-2", repo.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateStatus_WalksTheLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	for _, next := range []Status{StatusPreparing, StatusReady, StatusServed, StatusPaid} {
		order, err = svc.UpdateStatus(ctx, "tenant-1", order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, string(next), order.Status)
	}
}

func TestUpdateStatus_RejectsSkips(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, "tenant-1", order.ID, StatusReady)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	unchanged, err := svc.Get(ctx, "tenant-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPending), unchanged.Status)
}

func TestApprove(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{
		Items:            []ItemInput{{ProductID: p.ID, Quantity: 1}},
		RequiresApproval: true,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, "tenant-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPending), approved.Status)

	_, err = svc.Approve(ctx, "tenant-1", order.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "double approval must fail")
}

func TestCancel(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, "tenant-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), cancelled.Status)

	_, err = svc.Cancel(ctx, "tenant-1", order.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestCancel_PaidOrderIsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Tea", "3.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", string(StatusPaid)).Error)

	_, err = svc.Cancel(ctx, "tenant-1", order.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	still, err := svc.Get(ctx, "tenant-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPaid), still.Status)
}

func TestUpdateDiscount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "tenant-1", "Burger", "100.00")
	order, err := svc.Create(ctx, "tenant-1", CreateOrderInput{Items: []ItemInput{{ProductID: p.ID, Quantity: 2}}})
	require.NoError(t, err)

	updated, err := svc.UpdateDiscount(ctx, "tenant-1", order.ID, d("50.00"))
	require.NoError(t, err)
	assert.True(t, updated.Subtotal.Equal(d("200.00")), "subtotal stays frozen")
	assert.True(t, updated.Discount.Equal(d("50.00")))
	assert.True(t, updated.FinalAmount.Equal(d("150.00")))

	_, err = svc.UpdateDiscount(ctx, "tenant-1", order.ID, d("-1.00"))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.UpdateDiscount(ctx, "tenant-1", order.ID, d("200.01"))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", string(StatusPaid)).Error)
	_, err = svc.UpdateDiscount(ctx, "tenant-1", order.ID, d("10.00"))
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}
