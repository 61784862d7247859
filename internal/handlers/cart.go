package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/cart"
	"github.com/ekaraca/restaurant_pos/internal/events"
	"github.com/ekaraca/restaurant_pos/internal/orders"
	"github.com/ekaraca/restaurant_pos/internal/repo"
)

// CartHandler serves the customer self-service cart. No login: the caller is
// identified by the tenant in the path and the session token it generated,
// so one session can never touch another session's cart.
type CartHandler struct {
	Carts    *cart.Service
	Catalog  *repo.ProductRepo
	Orders   *orders.Service
	Producer *events.Producer
}

func sessionID(c echo.Context) (string, error) {
	sid := c.Request().Header.Get("X-Session-ID")
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "X-Session-ID header is required")
	}
	return sid, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	crt, err := h.Carts.Get(c.Request().Context(), c.Param("tenantID"), sid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	tenantID := c.Param("tenantID")

	var req struct {
		ProductID string                 `json:"product_id"`
		Quantity  int                    `json:"quantity"`
		Modifiers []orders.ModifierInput `json:"modifiers"`
		Note      string                 `json:"note"`
		TableID   *string                `json:"table_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	// Prices always come from the catalog, never from the client.
	products, err := h.Catalog.FindByIDs(ctx, tenantID, []string{req.ProductID})
	if err != nil {
		return httpError(err)
	}
	if len(products) == 0 || !products[0].IsAvailable {
		return httpError(fmt.Errorf("%w: product %s", apperr.ErrNotFound, req.ProductID))
	}
	product := products[0]

	modifierIDs := make([]string, 0, len(req.Modifiers))
	for _, m := range req.Modifiers {
		modifierIDs = append(modifierIDs, m.ModifierID)
	}
	modifierRows, err := h.Catalog.FindModifiersByIDs(ctx, tenantID, modifierIDs)
	if err != nil {
		return httpError(err)
	}
	byID := make(map[string]int, len(modifierRows))
	for i, m := range modifierRows {
		byID[m.ID] = i
	}

	cartMods := make([]cart.Modifier, 0, len(req.Modifiers))
	for _, m := range req.Modifiers {
		idx, ok := byID[m.ModifierID]
		if !ok || !modifierRows[idx].IsAvailable {
			return httpError(fmt.Errorf("%w: modifier %s", apperr.ErrNotFound, m.ModifierID))
		}
		qty := m.Quantity
		if qty < 1 {
			qty = 1
		}
		cartMods = append(cartMods, cart.Modifier{
			ModifierID:      modifierRows[idx].ID,
			DisplayName:     modifierRows[idx].DisplayName,
			PriceAdjustment: modifierRows[idx].PriceAdjustment,
			Quantity:        qty,
		})
	}

	crt, err := h.Carts.AddItem(ctx, tenantID, sid, cart.AddItemParams{
		ProductID: product.ID,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		Modifiers: cartMods,
		Note:      req.Note,
		TableID:   req.TableID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	crt, err := h.Carts.UpdateQuantity(c.Request().Context(), c.Param("tenantID"), sid, c.Param("itemID"), req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	crt, err := h.Carts.RemoveItem(c.Request().Context(), c.Param("tenantID"), sid, c.Param("itemID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := h.Carts.Clear(c.Request().Context(), c.Param("tenantID"), sid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout turns the session cart into a self-service order awaiting staff
// approval. The cart is cleared only after the order is durably created.
func (h *CartHandler) Checkout(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	tenantID := c.Param("tenantID")

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	crt, err := h.Carts.Get(ctx, tenantID, sid)
	if err != nil {
		return httpError(err)
	}

	input := orders.CreateOrderInput{
		TableID:          crt.TableID,
		SessionID:        &sid,
		Note:             req.Note,
		RequiresApproval: true,
	}
	for _, item := range crt.Items {
		ii := orders.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Note:      item.Note,
		}
		for _, m := range item.Modifiers {
			ii.Modifiers = append(ii.Modifiers, orders.ModifierInput{
				ModifierID: m.ModifierID,
				Quantity:   m.Quantity,
			})
		}
		input.Items = append(input.Items, ii)
	}

	order, err := h.Orders.Create(ctx, tenantID, input)
	if err != nil {
		return httpError(err)
	}

	if err := h.Carts.Clear(ctx, tenantID, sid); err != nil {
		c.Logger().Errorf("clear cart after checkout: %v", err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, order.ID, map[string]interface{}{
		"type":         "order_created",
		"tenant_id":    tenantID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"final_amount": order.FinalAmount,
	})

	return c.JSON(http.StatusCreated, order)
}
